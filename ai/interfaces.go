package ai

import (
	"context"

	"github.com/poiesic/distill/core"
)

// Enricher converts a record's payload into structured fields according to a
// schema hint. Implementations must be thread-safe for concurrent use.
type Enricher interface {
	// Enrich sends one request to the enrichment service and returns the
	// extracted fields. Throttling below the configured attempt cap is
	// handled transparently. A response whose payload is missing or not
	// valid JSON yields ErrMalformedResponse; provenance stamping is the
	// caller's responsibility.
	Enrich(ctx context.Context, req *Request) (core.Result, error)
}

// Request is a single unit of work for an Enricher.
type Request struct {
	// ID deterministically identifies the source record. It is carried
	// through for log traceability and result file naming.
	ID string

	// Prompt is the full text sent to the service: the schema's
	// instructions, the expected output shape, and the record payload.
	Prompt string
}
