package model

import (
	"encoding/json"
	"fmt"
)

// Span is a half-open character range [Start, End) into the original answer.
// It serializes as a two-element JSON array to match the context bundle format.
type Span struct {
	Start int
	End   int
}

// MarshalJSON encodes the span as [start, end].
func (s Span) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{s.Start, s.End})
}

// UnmarshalJSON decodes a [start, end] array.
func (s *Span) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("span must be a [start, end] array: %w", err)
	}
	s.Start = pair[0]
	s.End = pair[1]
	return nil
}

// Claim is an atomic assertion extracted from an answer.
//
// Claims are value types: two claims with identical fields are equal and
// interchangeable as map keys. The span is best-effort when the claim text
// could not be located verbatim in the answer (it then falls back to the
// owning sentence's start offset).
type Claim struct {
	Text       string `json:"text"`
	Span       Span   `json:"span"`
	Normalized string `json:"normalized,omitempty"`
}

// QueryText returns the normalized text when available, the raw text otherwise.
func (c Claim) QueryText() string {
	if c.Normalized != "" {
		return c.Normalized
	}
	return c.Text
}
