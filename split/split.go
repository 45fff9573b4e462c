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


// Package split turns raw transcript text into ordered records.
//
// A record starts at a timestamp marker of the form [DD/MM/YYYY, HH:MM:SS]
// and runs up to (not including) the next marker or end of input. Markers
// that match the shape but do not parse as a real date/time are dropped;
// the drop count is reported so runs can account for them.
package split

import (
	"regexp"
	"strings"
	"time"

	"github.com/poiesic/distill/core"
)

// markerPattern matches the leading timestamp marker of a record and
// captures the date and time components.
var markerPattern = regexp.MustCompile(`\[(\d{2}/\d{2}/\d{4}), (\d{2}:\d{2}:\d{2})\]`)

// Records splits raw transcript text into records in input order.
// It returns the records together with the number of markers that matched
// the timestamp shape but failed date/time parsing (e.g. month 13). Those
// entries are excluded from the result.
func Records(text string) ([]core.Record, int) {
	locations := markerPattern.FindAllStringSubmatchIndex(text, -1)
	if len(locations) == 0 {
		return nil, 0
	}

	records := make([]core.Record, 0, len(locations))
	dropped := 0

	for i, loc := range locations {
		date := text[loc[2]:loc[3]]
		tm := text[loc[4]:loc[5]]

		// Payload runs from the end of this marker to the start of the next.
		end := len(text)
		if i+1 < len(locations) {
			end = locations[i+1][0]
		}
		message := strings.TrimSpace(text[loc[1]:end])

		if !validTimestamp(date, tm) {
			dropped++
			continue
		}

		records = append(records, core.Record{
			Date:    date,
			Time:    tm,
			Message: message,
		})
	}

	return records, dropped
}

// validTimestamp reports whether the captured date and time components parse
// under the transcript layouts.
func validTimestamp(date, tm string) bool {
	if _, err := time.Parse(core.DateLayout, date); err != nil {
		return false
	}
	if _, err := time.Parse(core.TimeLayout, tm); err != nil {
		return false
	}
	return true
}
