package search

import (
	"maps"
	"slices"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/vektah/gqlparser/v2/ast"
)

// MaxMatches stops the search. It is checked before each type is visited, so
// the last type may push the total past it.
const MaxMatches = 100

type TypeMatch struct {
	Type     *ast.Definition
	TypeName string
}

// FieldMatch is a field matched by its own name (MatchingArgs nil) or by one
// or more of its arguments (MatchingArgs sorted by name, never empty).
type FieldMatch struct {
	Type         *ast.Definition
	Field        *ast.FieldDefinition
	WithinType   *ast.Definition
	MatchingArgs ast.ArgumentDefinitionList
}

type Result struct {
	TypeMatches        []TypeMatch
	WithinFieldMatches []FieldMatch
	OtherFieldMatches  []FieldMatch
}

// Total returns the number of matches over all buckets.
func (r *Result) Total() int {
	return len(r.TypeMatches) + len(r.WithinFieldMatches) + len(r.OtherFieldMatches)
}

// Match walks the schema's types by name and collects the types and fields
// matching q.
//
// A non-nil within is visited first, so its own fields are always evaluated
// before the cap is reached. The schema is not modified.
func Match(schema *ast.Schema, within *ast.Definition, q Query) *Result {
	result := &Result{}
	if schema == nil {
		return result
	}

	typeNames := slices.Sorted(maps.Keys(schema.Types))
	if within != nil {
		typeNames = slices.DeleteFunc(typeNames, func(name string) bool { return name == within.Name })
		typeNames = slices.Insert(typeNames, 0, within.Name)
	}

	isMatch := newMatcher(q.SearchText)

	for _, typeName := range typeNames {
		if result.Total() >= MaxMatches {
			break
		}

		def := schema.Types[typeName]
		if def == nil {
			// within is not part of this schema
			if within == nil || typeName != within.Name {
				continue
			}
			def = within
		}

		if !q.Visible(Categorize(schema, def)) {
			continue
		}

		if def != within && isMatch(typeName) {
			result.TypeMatches = append(result.TypeMatches, TypeMatch{Type: def, TypeName: typeName})
		}

		for _, field := range sortedFields(def) {
			var matchingArgs ast.ArgumentDefinitionList

			if !isMatch(field.Name) {
				if len(field.Arguments) == 0 {
					continue
				}

				matchingArgs = matchArguments(field.Arguments, isMatch)
				if len(matchingArgs) == 0 {
					continue
				}
			}

			m := FieldMatch{Type: def, Field: field, WithinType: within, MatchingArgs: matchingArgs}
			if def == within {
				result.WithinFieldMatches = append(result.WithinFieldMatches, m)
			} else {
				result.OtherFieldMatches = append(result.OtherFieldMatches, m)
			}
		}
	}

	return result
}

// sortedFields returns the explorable fields of def ordered by name. The
// __schema and __type meta fields gqlparser adds to the query root are left out.
func sortedFields(def *ast.Definition) ast.FieldList {
	fields := make(ast.FieldList, 0, len(def.Fields))
	for _, f := range def.Fields {
		if strings.HasPrefix(f.Name, "__") {
			continue
		}
		fields = append(fields, f)
	}

	slices.SortStableFunc(fields, func(a, b *ast.FieldDefinition) int {
		return strings.Compare(a.Name, b.Name)
	})

	return fields
}

func matchArguments(args ast.ArgumentDefinitionList, isMatch func(string) bool) ast.ArgumentDefinitionList {
	var matched ast.ArgumentDefinitionList
	for _, arg := range args {
		if isMatch(arg.Name) {
			matched = append(matched, arg)
		}
	}

	slices.SortStableFunc(matched, func(a, b *ast.ArgumentDefinition) int {
		return strings.Compare(a.Name, b.Name)
	})

	return matched
}

// IsMatch reports whether candidate contains query, ignoring case. Every rune
// of query outside [_0-9A-Za-z] is escaped; if the pattern cannot be used a
// plain substring search is done instead.
func IsMatch(candidate, query string) bool {
	return newMatcher(query)(candidate)
}

// newMatcher compiles query once so a single Match call does not recompile
// it for every candidate.
func newMatcher(query string) func(string) bool {
	fallback := func(candidate string) bool {
		return strings.Contains(strings.ToLower(candidate), strings.ToLower(query))
	}

	re, err := regexp2.Compile(escapePattern(query), regexp2.IgnoreCase|regexp2.ECMAScript)
	if err != nil {
		return fallback
	}

	return func(candidate string) bool {
		ok, err := re.MatchString(candidate)
		if err != nil {
			return fallback(candidate)
		}

		return ok
	}
}

func escapePattern(query string) string {
	var b strings.Builder
	b.Grow(len(query) * 2)

	for _, r := range query {
		if !isWordRune(r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}

	return b.String()
}

func isWordRune(r rune) bool {
	return r == '_' ||
		('0' <= r && r <= '9') ||
		('a' <= r && r <= 'z') ||
		('A' <= r && r <= 'Z')
}
