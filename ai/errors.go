package ai

import "errors"

var (
	// ErrMalformedResponse indicates the service responded without the
	// expected content field, or with content that is not valid JSON.
	ErrMalformedResponse = errors.New("malformed enrichment response")

	// ErrThrottled indicates the service was still rate limiting after the
	// configured maximum number of attempts.
	ErrThrottled = errors.New("rate limited after maximum attempts")
)
