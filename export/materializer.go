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


// Package export persists enrichment results. Each successful result is
// written as an individual JSON file, and all results of a run are
// consolidated into a single CSV export.
package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/distill/core"
)

// Materializer writes per-record files and the consolidated export into a
// single output directory. Writes are only ever issued from the pipeline's
// orchestrating goroutine, so no locking is needed.
type Materializer struct {
	dir    string
	logger *slog.Logger
}

// DirFor derives the output directory name from the input file's base name,
// matching the convention formatted_data_<stem>.
func DirFor(inputPath string) string {
	return "formatted_data_" + Stem(inputPath)
}

// Stem returns the input file's base name without its extension.
func Stem(inputPath string) string {
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// NewMaterializer creates the output directory and returns a materializer
// rooted in it. Failure to create the directory is fatal to the run.
func NewMaterializer(dir string) (*Materializer, error) {
	if dir == "" {
		return nil, ErrOutputDirRequired
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Materializer{
		dir:    dir,
		logger: slog.Default().With("component", "materializer"),
	}, nil
}

// Dir returns the output directory path.
func (m *Materializer) Dir() string {
	return m.dir
}

// WriteResult persists one result as message_<id>.json with its original
// formatting retained. A result with an ID seen earlier in the run
// overwrites the earlier file.
func (m *Materializer) WriteResult(id string, result core.Result) error {
	path := filepath.Join(m.dir, "message_"+id+".json")

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode result %s: %w", id, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	m.logger.Debug("wrote result file", "id", id, "path", path)
	return nil
}
