package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/poiesic/distill/core"
)

// utf8BOM prefixes the CSV so spreadsheet tools detect UTF-8 (the original
// export used utf-8-sig).
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var whitespaceRun = regexp.MustCompile(`\s+`)

// WriteCSV writes the consolidated export as <stem>_formatted.csv in the
// output directory. The column set is the union of keys across all results,
// in sorted order so re-runs produce identical headers; results missing a
// key get a blank cell. Values are normalized to a single line (newlines and
// whitespace runs collapsed, lists joined with commas). Normalization
// applies to the CSV only, never to the per-record files.
func (m *Materializer) WriteCSV(stem string, results []core.Result) error {
	path := filepath.Join(m.dir, stem+"_formatted.csv")

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	columns := unionColumns(results)
	if len(columns) == 0 {
		// Nothing succeeded; leave the export empty rather than writing a
		// bare newline.
		return f.Close()
	}

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := make([]string, len(columns))
	for _, result := range results {
		for i, col := range columns {
			value, ok := result[col]
			if !ok {
				row[i] = ""
				continue
			}
			row[i] = cellValue(value)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}

	m.logger.Debug("wrote consolidated export", "path", path, "rows", len(results), "columns", len(columns))
	return nil
}

// unionColumns collects every key present across the results, sorted.
func unionColumns(results []core.Result) []string {
	seen := make(map[string]struct{})
	for _, result := range results {
		for key := range result {
			seen[key] = struct{}{}
		}
	}

	columns := make([]string, 0, len(seen))
	for key := range seen {
		columns = append(columns, key)
	}
	sort.Strings(columns)
	return columns
}

// CleanText collapses newlines and runs of whitespace into single spaces and
// trims the result, keeping every value on a single CSV line.
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// cellValue renders one extracted value as a CSV cell.
func cellValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return CleanText(value)
	case []any:
		parts := make([]string, len(value))
		for i, item := range value {
			if s, ok := item.(string); ok {
				parts[i] = CleanText(s)
			} else {
				parts[i] = fmt.Sprint(item)
			}
		}
		return strings.Join(parts, ",")
	case float64, bool:
		return fmt.Sprint(value)
	default:
		// Nested objects and anything else: compact JSON.
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprint(value)
		}
		return CleanText(string(encoded))
	}
}
