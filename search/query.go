// Package search implements the search engine of a schema explorer.
//
// Match builds bucketed results from a schema and a query. Controller debounces
// input events and reports query changes.
package search

import (
	"errors"
	"fmt"
)

// Query is the full search state sent to the owner on every change.
type Query struct {
	SearchText        string `json:"searchText"`
	ShowQueries       bool   `json:"showQueries"`
	ShowMutations     bool   `json:"showMutations"`
	ShowSubscriptions bool   `json:"showSubscriptions"`
	ShowOthers        bool   `json:"showOthers"`
}

// NewQuery returns an empty query that shows every category.
func NewQuery() Query {
	return Query{
		ShowQueries:       true,
		ShowMutations:     true,
		ShowSubscriptions: true,
		ShowOthers:        true,
	}
}

// Visible reports whether results of c are shown.
func (q Query) Visible(c Category) bool {
	switch c {
	case CategoryQuery:
		return q.ShowQueries
	case CategoryMutation:
		return q.ShowMutations
	case CategorySubscription:
		return q.ShowSubscriptions
	default:
		return q.ShowOthers
	}
}

// with returns a copy of q with one field replaced.
func (q Query) with(f Field, text string, checked bool) Query {
	switch f {
	case FieldSearchText:
		q.SearchText = text
	case FieldShowQueries:
		q.ShowQueries = checked
	case FieldShowMutations:
		q.ShowMutations = checked
	case FieldShowSubscriptions:
		q.ShowSubscriptions = checked
	case FieldShowOthers:
		q.ShowOthers = checked
	}

	return q
}

// Field names one slot of Query as it appears in input events.
type Field string

const (
	FieldSearchText        Field = "searchText"
	FieldShowQueries       Field = "showQueries"
	FieldShowMutations     Field = "showMutations"
	FieldShowSubscriptions Field = "showSubscriptions"
	FieldShowOthers        Field = "showOthers"
)

var ErrUnknownField = errors.New("unknown search field")

// ParseField converts an event field name into a Field.
func ParseField(name string) (Field, error) {
	switch f := Field(name); f {
	case FieldSearchText, FieldShowQueries, FieldShowMutations, FieldShowSubscriptions, FieldShowOthers:
		return f, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// IsCheckbox reports whether the field carries a boolean flag.
func (f Field) IsCheckbox() bool {
	switch f {
	case FieldShowQueries, FieldShowMutations, FieldShowSubscriptions, FieldShowOthers:
		return true
	}

	return false
}

// Signal is what the controller hands to the owner. Reset is set by a clear
// action, in which case Query is the zero value and must not be used as a filter.
type Signal struct {
	Query Query
	Reset bool
}
