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


package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/distill/ai"
	"github.com/poiesic/distill/core"
	"github.com/poiesic/distill/schema"
)

// dispatcher turns one record into one outcome. It never lets an error
// escape: every failure is classified, logged with the record's id, and
// converted into a non-success outcome so the batch keeps going.
type dispatcher struct {
	enricher ai.Enricher
	schema   *schema.Schema
	logger   *slog.Logger
}

// dispatch builds the enrichment request for rec, calls the service, and
// stamps provenance onto a successful result.
func (d *dispatcher) dispatch(ctx context.Context, rec core.Record) Outcome {
	req := ai.NewRequest(d.schema, rec)

	result, err := d.enricher.Enrich(ctx, req)
	if err != nil {
		status := StatusServiceError
		if errors.Is(err, ai.ErrMalformedResponse) {
			status = StatusParseError
		}
		d.logger.Error("error processing message", "id", req.ID, "err", err)
		return Outcome{ID: req.ID, Status: status, Err: err}
	}

	// The service cannot be trusted with provenance; always restore it
	// from the source record.
	result.StampProvenance(rec)

	return Outcome{ID: req.ID, Status: StatusSuccess, Result: result}
}
