// Package render writes search layouts for terminals and machines.
package render

import (
	"fmt"
	"io"

	"github.com/gqlgo/gqlsearch/search"
)

const NoResults = "No results found."

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat accepts an empty string as text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}

	return "", fmt.Errorf("unknown output format %q (want text or json)", s)
}

// Layout writes l in the given format.
func Layout(w io.Writer, format Format, l search.Layout) error {
	switch format {
	case FormatJSON:
		return JSON(w, l)
	default:
		return NewText(w).Layout(l)
	}
}
