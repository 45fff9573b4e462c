package ai

import (
	"fmt"

	"github.com/poiesic/distill/core"
	"github.com/poiesic/distill/schema"
)

// promptTemplate composes the enrichment prompt. The output format is an
// illustrative hint for the service, not a locally enforced contract.
const promptTemplate = `%s

Expected output format:
%s

Return ONLY the JSON object matching this format, with no additional text.

Message to analyze:
%s`

// NewRequest builds the enrichment request for one record. The request ID is
// derived deterministically from the record, so re-runs on identical input
// produce identical identifiers.
func NewRequest(sch *schema.Schema, rec core.Record) *Request {
	return &Request{
		ID:     core.RecordID(rec),
		Prompt: fmt.Sprintf(promptTemplate, sch.SystemPrompt, sch.FormatHint(), rec.Message),
	}
}
