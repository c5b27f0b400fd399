package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidContext marks a malformed context bundle. Callers get it wrapped
// with a description of what exactly is wrong.
var ErrInvalidContext = errors.New("invalid context bundle")

// Passage is a single retrieved text passage. Immutable once created; owned
// by the caller for the duration of one evaluation.
type Passage struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Context is the retrieval context an answer is evaluated against. Passage
// order is the indexing order and carries no semantic meaning.
type Context struct {
	Passages []Passage `json:"passages"`
}

// ParseContext decodes and validates a context bundle of the form
// {"passages": [{"id": "...", "text": "..."}]}. Validation failures are
// input errors: they surface before any pipeline stage runs.
func ParseContext(data []byte) (*Context, error) {
	var raw struct {
		Passages *[]Passage `json:"passages"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContext, err)
	}
	if raw.Passages == nil {
		return nil, fmt.Errorf("%w: missing required field %q", ErrInvalidContext, "passages")
	}

	ctx := &Context{Passages: *raw.Passages}
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	return ctx, nil
}

// Validate checks passage ids: every passage needs a non-blank id, unique
// within the context. An empty passage list is valid.
func (c *Context) Validate() error {
	seen := make(map[string]bool, len(c.Passages))
	for i, p := range c.Passages {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return fmt.Errorf("%w: passage %d has an empty id", ErrInvalidContext, i)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate passage id %q", ErrInvalidContext, p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}
