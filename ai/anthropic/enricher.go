// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package anthropic implements ai.Enricher against the Anthropic messages
// API. Rate-limit responses are retried with a fixed cool-down up to a
// configured attempt cap; below the cap a throttle never surfaces as an
// error.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/distill/ai"
	"github.com/poiesic/distill/core"
)

const (
	messagesPath = "/v1/messages"
	apiVersion   = "2023-06-01"
)

// Enricher implements ai.Enricher over the Anthropic messages endpoint.
// A single Enricher shares one HTTP client across all concurrent calls.
type Enricher struct {
	config *ai.Config
	client *http.Client
	logger *slog.Logger
}

// messageRequest is the wire shape of a messages API call.
type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messageResponse is the subset of the response shape the pipeline consumes.
type messageResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Text string `json:"text"`
}

// newEnricher is an internal constructor that returns the concrete type.
func newEnricher(config *ai.Config) (*Enricher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Enricher{
		config: config,
		client: &http.Client{Timeout: 2 * time.Minute},
		logger: slog.Default().With("component", "anthropic-enricher"),
	}, nil
}

// NewEnricher creates an enrichment client from the provided configuration.
//
// Returns the ai.Enricher interface to enforce abstraction.
func NewEnricher(config *ai.Config) (ai.Enricher, error) {
	return newEnricher(config)
}

// Enrich issues one messages API call for the request and parses the
// response payload as JSON. Rate-limit responses are retried after the
// configured cool-down, up to MaxAttempts; exhausting the cap yields
// ai.ErrThrottled. A response without a content block, or whose text is not
// valid JSON, yields ai.ErrMalformedResponse.
func (e *Enricher) Enrich(ctx context.Context, req *ai.Request) (core.Result, error) {
	body, err := json.Marshal(messageRequest{
		Model:     e.config.Model,
		MaxTokens: e.config.MaxTokens,
		Messages:  []message{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request %s: %w", req.ID, err)
	}

	for attempt := 1; attempt <= e.config.MaxAttempts; attempt++ {
		status, payload, err := e.post(ctx, body)
		if err != nil {
			return nil, fmt.Errorf("request %s failed: %w", req.ID, err)
		}

		if status == http.StatusTooManyRequests {
			e.logger.Warn("rate limited, cooling down",
				"id", req.ID,
				"attempt", attempt,
				"delay", e.config.ThrottleDelay)
			if attempt == e.config.MaxAttempts {
				break
			}
			if err := sleep(ctx, e.config.ThrottleDelay); err != nil {
				return nil, err
			}
			continue
		}

		if status != http.StatusOK {
			return nil, fmt.Errorf("request %s failed: service returned status %d", req.ID, status)
		}

		return e.parse(req.ID, payload)
	}

	return nil, fmt.Errorf("request %s: %w", req.ID, ai.ErrThrottled)
}

// post sends one HTTP call and returns the status code and response body.
func (e *Enricher) post(ctx context.Context, body []byte) (int, []byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.config.BaseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	httpReq.Header.Set("x-api-key", e.config.APIKey)
	httpReq.Header.Set("anthropic-version", apiVersion)
	httpReq.Header.Set("content-type", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, payload, nil
}

// parse extracts the first content block and decodes it as a JSON object.
func (e *Enricher) parse(id string, payload []byte) (core.Result, error) {
	var resp messageResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		e.logger.Error("error decoding service response", "id", id, "err", err)
		return nil, fmt.Errorf("%w: %w", ai.ErrMalformedResponse, err)
	}

	if len(resp.Content) == 0 {
		e.logger.Error("response missing content field", "id", id)
		return nil, fmt.Errorf("%w: no content blocks", ai.ErrMalformedResponse)
	}

	text := sanitizeJSON(resp.Content[0].Text)

	var result core.Result
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		e.logger.Error("error parsing extracted fields",
			"id", id,
			"response", text,
			"err", err)
		return nil, fmt.Errorf("%w: %w", ai.ErrMalformedResponse, err)
	}

	return result, nil
}

// sleep waits for d or until the context is canceled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
