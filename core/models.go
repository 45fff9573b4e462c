package core

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// DateLayout and TimeLayout are the timestamp formats used by transcript
// markers, e.g. [01/01/2024, 10:00:00].
const (
	DateLayout = "02/01/2006"
	TimeLayout = "15:04:05"
)

// Record represents a single timestamped entry extracted from a transcript.
// Records are immutable once created by the splitter.
type Record struct {
	Date    string // DD/MM/YYYY as it appeared in the marker
	Time    string // HH:MM:SS as it appeared in the marker
	Message string // free text up to the next marker, trimmed
}

// Result holds the structured fields extracted from one record by the
// enrichment service. The reserved provenance keys (date, time,
// original_message) are always force-set from the source record after
// extraction, so the service cannot corrupt them.
type Result map[string]any

// Reserved provenance keys stamped onto every successful Result.
const (
	KeyDate            = "date"
	KeyTime            = "time"
	KeyOriginalMessage = "original_message"
)

// StampProvenance overwrites the reserved keys with the source record's
// metadata. Any values the enrichment service returned for those keys are
// discarded.
func (r Result) StampProvenance(rec Record) {
	r[KeyDate] = rec.Date
	r[KeyTime] = rec.Time
	r[KeyOriginalMessage] = rec.Message
}

// RecordID generates a deterministic identifier for a record from its date,
// time, and a BLAKE2b hash of its message. Identical records produce
// identical IDs across runs; a later record with the same ID overwrites an
// earlier one. The date and time components are made filename-safe.
func RecordID(rec Record) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(rec.Message))
	sum := h.Sum(nil)
	digest := binary.LittleEndian.Uint64(sum)

	safeDate := strings.ReplaceAll(rec.Date, "/", "-")
	safeTime := strings.ReplaceAll(rec.Time, ":", "-")
	return safeDate + "_" + safeTime + "_" + strconv.FormatUint(digest, 10)
}
