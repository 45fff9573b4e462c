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


// Package schema loads the declarative extraction schema that drives the
// enrichment pipeline. A schema describes the extraction task (system prompt)
// and the expected output shape (output format). The output format is a
// textual hint forwarded to the enrichment service; it is never enforced
// against the service's responses.
package schema

import (
	"encoding/json"
	"fmt"
	"os"
)

// Schema is the declarative description of an extraction task.
// It is loaded once at startup and shared read-only by all concurrent
// dispatches.
type Schema struct {
	// SystemPrompt is the instruction text describing the extraction task.
	SystemPrompt string `json:"system_prompt"`

	// OutputFormat maps field names to field descriptors. It is rendered
	// verbatim into the prompt as a shape hint.
	OutputFormat map[string]any `json:"output_format"`
}

// Load reads and parses a schema from a UTF-8 JSON file.
// A missing file, malformed JSON, or missing required key is fatal to the
// run and reported as an error here.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// Validate checks that the schema carries both required keys.
// The contents of OutputFormat are not validated; the shape is an
// illustrative hint, not a contract.
func (s *Schema) Validate() error {
	if s.SystemPrompt == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSchema, ErrMissingSystemPrompt)
	}
	if len(s.OutputFormat) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSchema, ErrMissingOutputFormat)
	}
	return nil
}

// FormatHint renders the output format as indented JSON for embedding in
// prompts. Rendering is deterministic: encoding/json sorts map keys.
func (s *Schema) FormatHint() string {
	hint, err := json.MarshalIndent(s.OutputFormat, "", "  ")
	if err != nil {
		// OutputFormat came from json.Unmarshal, so it is always marshalable.
		return "{}"
	}
	return string(hint)
}
