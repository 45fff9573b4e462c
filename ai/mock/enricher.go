package mock

import (
	"context"
	"sync"

	"github.com/poiesic/distill/ai"
	"github.com/poiesic/distill/core"
)

// Enricher is a test double for ai.Enricher.
// It allows custom behavior injection via function fields and is safe for
// concurrent use, matching the contract of production enrichers.
type Enricher struct {
	// EnrichFunc is called by Enrich if set.
	// If nil, Enrich returns a single-field result echoing the request ID.
	EnrichFunc func(ctx context.Context, req *ai.Request) (core.Result, error)

	mu        sync.Mutex
	callCount int
}

// NewEnricher creates a mock enricher with default behavior.
// Note: returns the concrete type to allow test assertions.
func NewEnricher() *Enricher {
	return &Enricher{}
}

// Enrich records the call and delegates to EnrichFunc when set.
func (m *Enricher) Enrich(ctx context.Context, req *ai.Request) (core.Result, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.EnrichFunc != nil {
		return m.EnrichFunc(ctx, req)
	}

	return core.Result{"request_id": req.ID}, nil
}

// CallCount returns the number of times Enrich was called.
func (m *Enricher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *Enricher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.EnrichFunc = nil
}
