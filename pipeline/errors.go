package pipeline

import "errors"

var (
	// ErrEnricherRequired is returned when an enricher is not provided.
	ErrEnricherRequired = errors.New("enricher required")

	// ErrSchemaRequired is returned when a schema is not provided.
	ErrSchemaRequired = errors.New("schema required")

	// ErrMaterializerRequired is returned when a materializer is not provided.
	ErrMaterializerRequired = errors.New("materializer required")
)
