// Package query provides a small parameterized-query value and the
// placeholder-style strategies for the two backing stores. The attribution
// and pivot logic builds queries through this package and never encodes a
// specific placeholder convention itself.
package query

import (
	"strconv"
	"strings"
)

// Query is SQL text plus its positional parameters.
type Query struct {
	Text   string
	Params []any
}

// Truncated returns the query text cut to max runes, for log lines. Failed
// queries are logged truncated rather than in full.
func (q Query) Truncated(max int) string {
	if max <= 0 || len(q.Text) <= max {
		return q.Text
	}
	return q.Text[:max] + "..."
}

// PlaceholderStyle renders the n-th (1-based) parameter placeholder.
type PlaceholderStyle interface {
	Placeholder(n int) string
}

// DollarStyle renders $1, $2, ... (PostgreSQL).
type DollarStyle struct{}

func (DollarStyle) Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// QuestionStyle renders ? for every parameter (ClickHouse).
type QuestionStyle struct{}

func (QuestionStyle) Placeholder(int) string {
	return "?"
}

// Builder accumulates SQL text and parameters with the injected style.
type Builder struct {
	style  PlaceholderStyle
	sb     strings.Builder
	params []any
}

// NewBuilder creates a builder using the given placeholder style.
func NewBuilder(style PlaceholderStyle) *Builder {
	return &Builder{style: style}
}

// Write appends a raw SQL fragment.
func (b *Builder) Write(fragment string) *Builder {
	b.sb.WriteString(fragment)
	return b
}

// WriteParam appends the next placeholder and records its value.
func (b *Builder) WriteParam(value any) *Builder {
	b.params = append(b.params, value)
	b.sb.WriteString(b.style.Placeholder(len(b.params)))
	return b
}

// Query returns the accumulated query.
func (b *Builder) Query() Query {
	return Query{Text: b.sb.String(), Params: b.params}
}
