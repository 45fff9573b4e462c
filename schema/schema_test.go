package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSchemaFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_ValidSchema(t *testing.T) {
	path := writeSchemaFile(t, `{
		"system_prompt": "Extract sentiment from chat messages.",
		"output_format": {
			"sentiment": "positive, neutral, or negative",
			"topics": "list of topics mentioned"
		}
	}`)

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Extract sentiment from chat messages.", s.SystemPrompt)
	assert.Len(t, s.OutputFormat, 2)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := writeSchemaFile(t, `{not json`)

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestLoad_MissingSystemPrompt(t *testing.T) {
	path := writeSchemaFile(t, `{"output_format": {"sentiment": "string"}}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingSystemPrompt)
}

func TestLoad_MissingOutputFormat(t *testing.T) {
	path := writeSchemaFile(t, `{"system_prompt": "extract things"}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingOutputFormat)
}

func TestFormatHint_RendersIndentedJSON(t *testing.T) {
	s := &Schema{
		SystemPrompt: "extract",
		OutputFormat: map[string]any{"sentiment": "string"},
	}

	hint := s.FormatHint()

	assert.Contains(t, hint, `"sentiment"`)
	assert.Contains(t, hint, "\n", "hint should be indented across lines")
}
