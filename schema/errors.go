package schema

import "errors"

var (
	// ErrInvalidSchema indicates the schema file could not be parsed or
	// failed validation.
	ErrInvalidSchema = errors.New("invalid schema")

	// ErrMissingSystemPrompt is returned when the system_prompt key is
	// absent or empty.
	ErrMissingSystemPrompt = errors.New("system_prompt is required")

	// ErrMissingOutputFormat is returned when the output_format key is
	// absent or empty.
	ErrMissingOutputFormat = errors.New("output_format is required")
)
