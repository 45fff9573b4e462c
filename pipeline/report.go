package pipeline

import (
	"fmt"

	"github.com/poiesic/distill/core"
)

// Status classifies the outcome of dispatching one record.
type Status int

const (
	// StatusSuccess means the record was enriched and persisted.
	StatusSuccess Status = iota + 1
	// StatusParseError means the service response was missing its content
	// field or was not valid JSON.
	StatusParseError
	// StatusServiceError means the call failed at the transport level or
	// the throttle cap was exhausted.
	StatusServiceError
	// StatusWriteError means enrichment succeeded but the per-record file
	// could not be written.
	StatusWriteError
)

// String returns a human-readable status label.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusParseError:
		return "parse error"
	case StatusServiceError:
		return "service error"
	case StatusWriteError:
		return "write error"
	default:
		return "unknown"
	}
}

// Outcome is the discriminated result of dispatching one record. Failed
// records are dropped from the export but remain visible here.
type Outcome struct {
	ID     string
	Status Status
	Result core.Result // nil unless Status is StatusSuccess
	Err    error       // nil when Status is StatusSuccess
}

// Report accounts for every record of one pipeline run. Failures stay local
// to their record; the report makes them observable without affecting the
// run's output.
type Report struct {
	// Found is the number of records produced by the splitter.
	Found int
	// DroppedMarkers counts timestamp markers that failed to parse and
	// were excluded before dispatch.
	DroppedMarkers int

	Succeeded     int
	ParseErrors   int
	ServiceErrors int
	WriteErrors   int

	// Outcomes holds one entry per dispatched record in completion order.
	Outcomes []Outcome

	// Results accumulates successful results in completion order; this is
	// the data set behind the consolidated export.
	Results []core.Result
}

// add records one outcome and updates the counters.
func (r *Report) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case StatusSuccess:
		r.Succeeded++
		r.Results = append(r.Results, o.Result)
	case StatusParseError:
		r.ParseErrors++
	case StatusServiceError:
		r.ServiceErrors++
	case StatusWriteError:
		r.WriteErrors++
	}
}

// Summary renders a one-line human-readable account of the run.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d records: %d succeeded, %d parse errors, %d service errors, %d write errors, %d markers dropped",
		r.Found, r.Succeeded, r.ParseErrors, r.ServiceErrors, r.WriteErrors, r.DroppedMarkers)
}
