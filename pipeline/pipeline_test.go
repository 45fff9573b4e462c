package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/distill/ai"
	"github.com/poiesic/distill/ai/mock"
	"github.com/poiesic/distill/core"
	"github.com/poiesic/distill/schema"
)

// memMaterializer captures writes in memory for assertions.
type memMaterializer struct {
	mu            sync.Mutex
	written       map[string]core.Result
	csvStem       string
	csvResults    []core.Result
	csvCalls      int
	failResultIDs map[string]bool
}

func newMemMaterializer() *memMaterializer {
	return &memMaterializer{
		written:       make(map[string]core.Result),
		failResultIDs: make(map[string]bool),
	}
}

func (m *memMaterializer) WriteResult(id string, result core.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failResultIDs[id] {
		return errors.New("disk full")
	}
	m.written[id] = result
	return nil
}

func (m *memMaterializer) WriteCSV(stem string, results []core.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.csvStem = stem
	m.csvResults = results
	m.csvCalls++
	return nil
}

func testSchema() *schema.Schema {
	return &schema.Schema{
		SystemPrompt: "Extract sentiment.",
		OutputFormat: map[string]any{"sentiment": "string"},
	}
}

func testRecords(n int) []core.Record {
	records := make([]core.Record, n)
	for i := range records {
		records[i] = core.Record{
			Date:    "01/01/2024",
			Time:    fmt.Sprintf("10:%02d:00", i),
			Message: fmt.Sprintf("message %d", i),
		}
	}
	return records
}

func TestNewPipeline_RequiredDependencies(t *testing.T) {
	sch := testSchema()
	mat := newMemMaterializer()
	enricher := mock.NewEnricher()

	_, err := NewPipeline(nil, sch, mat)
	assert.ErrorIs(t, err, ErrEnricherRequired)

	_, err = NewPipeline(enricher, nil, mat)
	assert.ErrorIs(t, err, ErrSchemaRequired)

	_, err = NewPipeline(enricher, sch, nil)
	assert.ErrorIs(t, err, ErrMaterializerRequired)
}

func TestRun_EnrichesAllRecords(t *testing.T) {
	enricher := mock.NewEnricher()
	enricher.EnrichFunc = func(ctx context.Context, req *ai.Request) (core.Result, error) {
		return core.Result{"sentiment": "neutral"}, nil
	}
	mat := newMemMaterializer()

	p, err := NewPipeline(enricher, testSchema(), mat)
	require.NoError(t, err)
	defer p.Release()

	records := testRecords(7)
	report, err := p.Run(context.Background(), "chat", records)
	require.NoError(t, err)

	assert.Equal(t, 7, report.Found)
	assert.Equal(t, 7, report.Succeeded)
	assert.Equal(t, 7, enricher.CallCount())
	assert.Len(t, mat.written, 7)
	assert.Equal(t, 1, mat.csvCalls)
	assert.Equal(t, "chat", mat.csvStem)
	assert.Len(t, mat.csvResults, 7)
}

func TestRun_StampsProvenance(t *testing.T) {
	enricher := mock.NewEnricher()
	enricher.EnrichFunc = func(ctx context.Context, req *ai.Request) (core.Result, error) {
		// Service tries to lie about provenance.
		return core.Result{
			"sentiment":        "neutral",
			"date":             "99/99/9999",
			"original_message": "forged",
		}, nil
	}
	mat := newMemMaterializer()

	p, err := NewPipeline(enricher, testSchema(), mat)
	require.NoError(t, err)
	defer p.Release()

	rec := core.Record{Date: "01/01/2024", Time: "10:00:00", Message: "hello world"}
	report, err := p.Run(context.Background(), "chat", []core.Record{rec})
	require.NoError(t, err)

	require.Equal(t, 1, report.Succeeded)
	result := mat.written[core.RecordID(rec)]
	require.NotNil(t, result)
	assert.Equal(t, "01/01/2024", result["date"])
	assert.Equal(t, "10:00:00", result["time"])
	assert.Equal(t, "hello world", result["original_message"])
	assert.Equal(t, "neutral", result["sentiment"])
}

func TestRun_FailureIsolation(t *testing.T) {
	enricher := mock.NewEnricher()
	enricher.EnrichFunc = func(ctx context.Context, req *ai.Request) (core.Result, error) {
		if strings.Contains(req.Prompt, "message 2") {
			return nil, fmt.Errorf("%w: no content blocks", ai.ErrMalformedResponse)
		}
		if strings.Contains(req.Prompt, "message 4") {
			return nil, errors.New("connection reset")
		}
		return core.Result{"sentiment": "neutral"}, nil
	}
	mat := newMemMaterializer()

	p, err := NewPipeline(enricher, testSchema(), mat)
	require.NoError(t, err)
	defer p.Release()

	report, err := p.Run(context.Background(), "chat", testRecords(6))
	require.NoError(t, err, "per-record failures must not abort the run")

	assert.Equal(t, 4, report.Succeeded)
	assert.Equal(t, 1, report.ParseErrors)
	assert.Equal(t, 1, report.ServiceErrors)
	assert.Len(t, mat.csvResults, 4, "failed records are dropped from the export")
	assert.Len(t, report.Outcomes, 6, "every record has a visible outcome")
}

func TestRun_WriteFailureDropsRecord(t *testing.T) {
	enricher := mock.NewEnricher()
	mat := newMemMaterializer()

	records := testRecords(3)
	badID := core.RecordID(records[1])
	mat.failResultIDs[badID] = true

	p, err := NewPipeline(enricher, testSchema(), mat)
	require.NoError(t, err)
	defer p.Release()

	report, err := p.Run(context.Background(), "chat", records)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.WriteErrors)
	assert.Len(t, report.Results, 2)
}

func TestRun_ConcurrencyCappedAtBatchSize(t *testing.T) {
	var inFlight, peak atomic.Int32

	enricher := mock.NewEnricher()
	enricher.EnrichFunc = func(ctx context.Context, req *ai.Request) (core.Result, error) {
		cur := inFlight.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return core.Result{"ok": true}, nil
	}
	mat := newMemMaterializer()

	p, err := NewPipeline(enricher, testSchema(), mat,
		WithConfig(&Config{BatchSize: 3, BatchDelay: 0, ReportInterval: 1}))
	require.NoError(t, err)
	defer p.Release()

	report, err := p.Run(context.Background(), "chat", testRecords(10))
	require.NoError(t, err)

	assert.Equal(t, 10, report.Succeeded)
	assert.LessOrEqual(t, peak.Load(), int32(3), "in-flight calls must never exceed the batch size")
	assert.GreaterOrEqual(t, peak.Load(), int32(2), "records within a batch run concurrently")
}

func TestRun_InterBatchDelay(t *testing.T) {
	enricher := mock.NewEnricher()
	mat := newMemMaterializer()

	p, err := NewPipeline(enricher, testSchema(), mat,
		WithConfig(&Config{BatchSize: 2, BatchDelay: 40 * time.Millisecond, ReportInterval: 1}))
	require.NoError(t, err)
	defer p.Release()

	start := time.Now()
	_, err = p.Run(context.Background(), "chat", testRecords(6))
	require.NoError(t, err)

	// 3 batches, 2 inter-batch pauses.
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestRun_NoRecords(t *testing.T) {
	enricher := mock.NewEnricher()
	mat := newMemMaterializer()

	p, err := NewPipeline(enricher, testSchema(), mat)
	require.NoError(t, err)
	defer p.Release()

	report, err := p.Run(context.Background(), "chat", nil)
	require.NoError(t, err)

	assert.Zero(t, report.Found)
	assert.Zero(t, enricher.CallCount())
	assert.Equal(t, 1, mat.csvCalls, "the export is written even for an empty run")
}

func TestRun_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	enricher := mock.NewEnricher()
	enricher.EnrichFunc = func(_ context.Context, req *ai.Request) (core.Result, error) {
		cancel()
		return core.Result{"ok": true}, nil
	}
	mat := newMemMaterializer()

	p, err := NewPipeline(enricher, testSchema(), mat,
		WithConfig(&Config{BatchSize: 2, BatchDelay: time.Minute, ReportInterval: 1}))
	require.NoError(t, err)
	defer p.Release()

	report, err := p.Run(ctx, "chat", testRecords(8))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, report.Found-report.Succeeded, 8, "the first batch still completed")
	assert.Zero(t, mat.csvCalls, "no export is written for an aborted run")
}

func TestReport_Summary(t *testing.T) {
	r := &Report{Found: 5, DroppedMarkers: 1}
	r.add(Outcome{ID: "a", Status: StatusSuccess, Result: core.Result{}})
	r.add(Outcome{ID: "b", Status: StatusParseError, Err: errors.New("bad json")})

	s := r.Summary()
	assert.Contains(t, s, "5 records")
	assert.Contains(t, s, "1 succeeded")
	assert.Contains(t, s, "1 parse errors")
	assert.Contains(t, s, "1 markers dropped")
}
