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


package core

import (
	"fmt"
	"time"
)

// ValidateRecord validates a Record according to domain rules.
//
// Validation rules:
//   - Date must parse as DD/MM/YYYY
//   - Time must parse as HH:MM:SS
//
// NOT validated:
//   - Message (empty messages are legal transcript entries)
func ValidateRecord(rec *Record) error {
	if rec == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if _, err := time.Parse(DateLayout, rec.Date); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrInvalidDate)
	}

	if _, err := time.Parse(TimeLayout, rec.Time); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrInvalidTime)
	}

	return nil
}
