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


// Package pipeline orchestrates the enrichment of transcript records.
//
// Records are processed in fixed-size batches: every record of a batch is
// dispatched concurrently through a bounded worker pool, the orchestrator
// joins the whole batch, then pauses briefly before the next one. Batches
// never overlap, so the batch size caps global in-flight concurrency.
// Failures stay local to their record and are collected in the run Report.
package pipeline

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/distill/ai"
	"github.com/poiesic/distill/core"
	"github.com/poiesic/distill/schema"
)

// Config holds tuning parameters for a pipeline run. The defaults mirror the
// service's observed tolerance but carry no measured rationale; override
// them freely.
type Config struct {
	// BatchSize is the number of records dispatched concurrently per batch.
	BatchSize int

	// BatchDelay is the pause between batches, independent of the
	// client's own throttle handling.
	BatchDelay time.Duration

	// ReportInterval is how often to report progress (number of records).
	ReportInterval int
}

// DefaultConfig returns a Config with the stock tuning values.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      5,
		BatchDelay:     500 * time.Millisecond,
		ReportInterval: 5,
	}
}

// Materializer persists enrichment results. The pipeline calls WriteResult
// for each successful record as it completes and WriteCSV once after all
// batches are done.
type Materializer interface {
	WriteResult(id string, result core.Result) error
	WriteCSV(stem string, results []core.Result) error
}

// Pipeline drives batched, concurrent enrichment of records.
type Pipeline struct {
	dispatcher   *dispatcher
	materializer Materializer
	pool         *ants.Pool
	config       *Config
	progress     io.Writer
	logger       *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithConfig replaces the default tuning parameters.
func WithConfig(config *Config) Option {
	return func(p *Pipeline) error {
		if config == nil {
			config = DefaultConfig()
		}
		if config.BatchSize < 1 {
			config.BatchSize = 1
		}
		if config.BatchDelay < 0 {
			config.BatchDelay = 0
		}
		p.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		p.dispatcher.logger = logger
		return nil
	}
}

// WithProgress sets the writer progress is reported to.
// Default is io.Discard.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		if w == nil {
			w = io.Discard
		}
		p.progress = w
		return nil
	}
}

// NewPipeline creates a pipeline over the given enricher, schema, and
// materializer.
func NewPipeline(enricher ai.Enricher, sch *schema.Schema, materializer Materializer, opts ...Option) (*Pipeline, error) {
	if enricher == nil {
		return nil, ErrEnricherRequired
	}
	if sch == nil {
		return nil, ErrSchemaRequired
	}
	if materializer == nil {
		return nil, ErrMaterializerRequired
	}

	logger := slog.Default().With("component", "pipeline")

	p := &Pipeline{
		dispatcher: &dispatcher{
			enricher: enricher,
			schema:   sch,
			logger:   logger,
		},
		materializer: materializer,
		config:       DefaultConfig(),
		progress:     io.Discard,
		logger:       logger,
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	// The pool is sized to the batch: batches never overlap, so nothing
	// larger is ever runnable at once.
	pool, err := ants.NewPool(p.config.BatchSize)
	if err != nil {
		return nil, err
	}
	p.pool = pool

	return p, nil
}

// Run enriches all records and persists the results. stem names the
// consolidated export (<stem>_formatted.csv).
//
// Per-record failures never interrupt the run; they are logged and recorded
// in the returned Report. Run returns an error only for setup-level
// failures (context cancellation, export write failure). The Report is
// returned even alongside an error, covering whatever completed.
func (p *Pipeline) Run(ctx context.Context, stem string, records []core.Record) (*Report, error) {
	report := &Report{Found: len(records)}

	tracker := NewProgressTracker(p.progress, len(records), p.config.ReportInterval)
	tracker.Start()

	outcomes := make(chan Outcome, p.config.BatchSize)
	processed := 0

	for start := 0; start < len(records); start += p.config.BatchSize {
		end := min(start+p.config.BatchSize, len(records))
		batch := records[start:end]

		for _, rec := range batch {
			if err := p.pool.Submit(func() {
				outcomes <- p.dispatcher.dispatch(ctx, rec)
			}); err != nil {
				outcomes <- Outcome{ID: core.RecordID(rec), Status: StatusServiceError, Err: err}
			}
		}

		// Join the whole batch before advancing. All accumulator and
		// materializer mutation happens here, on this goroutine.
		for range batch {
			report.add(p.persist(<-outcomes))
		}

		processed += len(batch)
		tracker.Update(processed)

		if err := ctx.Err(); err != nil {
			return report, err
		}

		if end < len(records) && p.config.BatchDelay > 0 {
			if err := sleep(ctx, p.config.BatchDelay); err != nil {
				return report, err
			}
		}
	}

	tracker.Finish()

	if err := p.materializer.WriteCSV(stem, report.Results); err != nil {
		return report, err
	}

	p.logger.Info("run complete",
		"records", report.Found,
		"succeeded", report.Succeeded,
		"elapsed", tracker.Elapsed().Round(time.Millisecond))

	return report, nil
}

// persist writes a successful outcome's result file. A write failure
// reclassifies the outcome so the record is dropped from the export but
// stays visible in the report.
func (p *Pipeline) persist(o Outcome) Outcome {
	if o.Status != StatusSuccess {
		return o
	}
	if err := p.materializer.WriteResult(o.ID, o.Result); err != nil {
		p.logger.Error("error writing result file", "id", o.ID, "err", err)
		return Outcome{ID: o.ID, Status: StatusWriteError, Err: err}
	}
	return o
}

// Release releases the worker pool. The pipeline should not be used after
// calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
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
