// SPDX-License-Identifier: Apache-2.0

package analytics

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrMalformedField    = errors.New("malformed field")
	ErrUnknownTag        = errors.New("unknown schema tag")
	ErrUnknownConvention = errors.New("unknown convention")
	ErrExtractorPanic    = errors.New("extractor panicked")
	ErrNoExtractor       = errors.New("no extractor registered")
)

// ExtractionError reports a document that matched a schema but could not be
// reshaped into its view model.
type ExtractionError struct {
	Tag   Tag
	Field string
	Err   error
}

func (e *ExtractionError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("extract %s: %v", e.Tag, e.Err)
	}
	return fmt.Sprintf("extract %s: field %q: %v", e.Tag, e.Field, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Malformed builds an ExtractionError for a field holding the wrong JSON type.
func Malformed(tag Tag, field, want string, got any) *ExtractionError {
	return &ExtractionError{
		Tag:   tag,
		Field: field,
		Err:   fmt.Errorf("%w: want %s, got %s", ErrMalformedField, want, KindOf(got)),
	}
}

func quote(s string) string { return strconv.Quote(s) }
