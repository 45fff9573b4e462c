package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordID_Deterministic(t *testing.T) {
	rec := Record{Date: "01/01/2024", Time: "10:00:00", Message: "hello world"}

	first := RecordID(rec)
	second := RecordID(rec)

	assert.Equal(t, first, second, "identical records must produce identical IDs")
}

func TestRecordID_FilenameSafe(t *testing.T) {
	rec := Record{Date: "01/01/2024", Time: "10:00:00", Message: "hello"}

	id := RecordID(rec)

	assert.NotContains(t, id, "/")
	assert.NotContains(t, id, ":")
	assert.True(t, strings.HasPrefix(id, "01-01-2024_10-00-00_"))
}

func TestRecordID_MessageSensitive(t *testing.T) {
	a := Record{Date: "01/01/2024", Time: "10:00:00", Message: "hello"}
	b := Record{Date: "01/01/2024", Time: "10:00:00", Message: "goodbye"}

	assert.NotEqual(t, RecordID(a), RecordID(b), "different messages must hash differently")
}

func TestStampProvenance_OverwritesServiceValues(t *testing.T) {
	rec := Record{Date: "01/01/2024", Time: "10:00:00", Message: "hello world"}
	result := Result{
		"sentiment":        "neutral",
		KeyDate:            "99/99/9999",
		KeyTime:            "lies",
		KeyOriginalMessage: "not what was sent",
	}

	result.StampProvenance(rec)

	assert.Equal(t, "01/01/2024", result[KeyDate])
	assert.Equal(t, "10:00:00", result[KeyTime])
	assert.Equal(t, "hello world", result[KeyOriginalMessage])
	assert.Equal(t, "neutral", result["sentiment"])
}

func TestValidateRecord(t *testing.T) {
	tests := []struct {
		name    string
		rec     *Record
		wantErr error
	}{
		{
			name: "valid record",
			rec:  &Record{Date: "31/12/2024", Time: "23:59:59", Message: "bye"},
		},
		{
			name: "empty message is valid",
			rec:  &Record{Date: "01/01/2024", Time: "10:00:00"},
		},
		{
			name:    "nil record",
			rec:     nil,
			wantErr: ErrInvalidRecord,
		},
		{
			name:    "month out of range",
			rec:     &Record{Date: "01/13/2024", Time: "10:00:00"},
			wantErr: ErrInvalidDate,
		},
		{
			name:    "hour out of range",
			rec:     &Record{Date: "01/01/2024", Time: "25:00:00"},
			wantErr: ErrInvalidTime,
		},
		{
			name:    "wrong date shape",
			rec:     &Record{Date: "2024-01-01", Time: "10:00:00"},
			wantErr: ErrInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecord(tt.rec)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}
}
