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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/distill/ai"
	"github.com/poiesic/distill/ai/anthropic"
	"github.com/poiesic/distill/export"
	"github.com/poiesic/distill/pipeline"
	"github.com/poiesic/distill/schema"
	"github.com/poiesic/distill/split"
)

func main() {
	app := &cli.App{
		Name:  "distill",
		Usage: "Schema-driven structured extraction from chat transcripts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "process",
				Usage:     "Split a transcript and enrich every record against a schema",
				ArgsUsage: "INPUT_FILE SCHEMA_FILE",
				Action:    processCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "api-key",
						Usage:    "Enrichment service API key",
						EnvVars:  []string{"ANTHROPIC_API_KEY"},
						Required: true,
					},
					&cli.StringFlag{
						Name:  "output-dir",
						Usage: "Output directory (default: formatted_data_<input name>)",
					},
					&cli.StringFlag{
						Name:  "base-url",
						Usage: "Enrichment service base URL",
						Value: "https://api.anthropic.com",
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "Model identifier",
						Value: "claude-3-sonnet-20240229",
					},
					&cli.IntFlag{
						Name:  "max-tokens",
						Usage: "Response token cap per request",
						Value: 1024,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to enrich concurrently per batch",
						Value: 5,
					},
					&cli.DurationFlag{
						Name:  "batch-delay",
						Usage: "Pause between batches",
						Value: 500 * time.Millisecond,
					},
					&cli.IntFlag{
						Name:  "max-attempts",
						Usage: "Maximum attempts for a rate-limited request",
						Value: 10,
					},
					&cli.DurationFlag{
						Name:  "throttle-delay",
						Usage: "Cool-down after a rate-limit response",
						Value: 20 * time.Second,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N records",
						Value: 5,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func processCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() != 2 {
		return fmt.Errorf("expected INPUT_FILE and SCHEMA_FILE arguments")
	}
	inputPath := c.Args().Get(0)
	schemaPath := c.Args().Get(1)

	// Setup failures are fatal; everything past this point is absorbed
	// per record.
	text, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	sch, err := schema.Load(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to load schema: %w", err)
	}

	records, dropped := split.Records(string(text))
	fmt.Fprintf(os.Stderr, "Found %d messages to process\n", len(records))

	aiConfig := ai.NewConfig(
		ai.WithAPIKey(c.String("api-key")),
		ai.WithBaseURL(c.String("base-url")),
		ai.WithModel(c.String("model")),
		ai.WithMaxTokens(c.Int("max-tokens")),
		ai.WithMaxAttempts(c.Int("max-attempts")),
		ai.WithThrottleDelay(c.Duration("throttle-delay")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid enrichment configuration: %w", err)
	}

	enricher, err := anthropic.NewEnricher(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create enricher: %w", err)
	}

	outputDir := c.String("output-dir")
	if outputDir == "" {
		outputDir = export.DirFor(inputPath)
	}
	materializer, err := export.NewMaterializer(outputDir)
	if err != nil {
		return err
	}

	pipeConfig := &pipeline.Config{
		BatchSize:      c.Int("batch-size"),
		BatchDelay:     c.Duration("batch-delay"),
		ReportInterval: c.Int("report-interval"),
	}
	if pipeConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}

	p, err := pipeline.NewPipeline(enricher, sch, materializer,
		pipeline.WithConfig(pipeConfig),
		pipeline.WithProgress(os.Stderr),
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer p.Release()

	report, err := p.Run(ctx, export.Stem(inputPath), records)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	report.DroppedMarkers = dropped

	fmt.Fprintln(os.Stderr, report.Summary())
	fmt.Fprintf(os.Stderr, "Processed data saved in %s/\n", materializer.Dir())

	return nil
}

// setup loads a local .env if present, then configures logging.
func setup(c *cli.Context) error {
	// Missing .env is fine; flags and the environment still apply.
	_ = godotenv.Load()
	return setupLogger(c)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
