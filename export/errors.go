package export

import "errors"

var (
	// ErrOutputDirRequired is returned when no output directory is provided.
	ErrOutputDirRequired = errors.New("output directory required")
)
