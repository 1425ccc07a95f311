package search

import (
	"github.com/vektah/gqlparser/v2/ast"
)

// OtherResultsTitle labels the group that follows the within type's own fields.
const OtherResultsTitle = "other results"

// Group is a run of matches shown together. Types are shown before Fields.
type Group struct {
	Title  string
	Types  []TypeMatch
	Fields []FieldMatch
}

func (g Group) empty() bool {
	return len(g.Types) == 0 && len(g.Fields) == 0
}

// Layout is the display order of a Result. No groups means no results.
type Layout struct {
	Groups []Group
}

func (l Layout) Empty() bool {
	return len(l.Groups) == 0
}

// Layout orders the result for display. With a within type and other matches,
// the within fields are followed by an "other results" group. Otherwise within
// fields, types and other fields form one list.
func (r *Result) Layout(within *ast.Definition) Layout {
	if r.Total() == 0 {
		return Layout{}
	}

	others := len(r.TypeMatches) + len(r.OtherFieldMatches)

	var groups []Group
	if within != nil && others > 0 {
		groups = []Group{
			{Fields: r.WithinFieldMatches},
			{Title: OtherResultsTitle, Types: r.TypeMatches, Fields: r.OtherFieldMatches},
		}
	} else {
		groups = []Group{
			{Fields: r.WithinFieldMatches},
			{Types: r.TypeMatches, Fields: r.OtherFieldMatches},
		}
	}

	var layout Layout
	for _, g := range groups {
		if g.empty() {
			continue
		}
		layout.Groups = append(layout.Groups, g)
	}

	return layout
}
