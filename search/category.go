package search

import (
	"github.com/vektah/gqlparser/v2/ast"
)

// Category is the operation category a type belongs to.
type Category int

const (
	CategoryOther Category = iota
	CategoryQuery
	CategoryMutation
	CategorySubscription
)

func (c Category) String() string {
	switch c {
	case CategoryQuery:
		return "query"
	case CategoryMutation:
		return "mutation"
	case CategorySubscription:
		return "subscription"
	default:
		return "other"
	}
}

// Categorize compares def with the schema's root types by name. An absent root
// never matches.
func Categorize(schema *ast.Schema, def *ast.Definition) Category {
	if def == nil || schema == nil {
		return CategoryOther
	}

	switch {
	case isRoot(schema.Query, def.Name):
		return CategoryQuery
	case isRoot(schema.Mutation, def.Name):
		return CategoryMutation
	case isRoot(schema.Subscription, def.Name):
		return CategorySubscription
	}

	return CategoryOther
}

func isRoot(root *ast.Definition, name string) bool {
	return root != nil && root.Name == name
}
