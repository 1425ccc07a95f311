package introspection

import (
	"github.com/vektah/gqlparser/v2/ast"
)

// SchemaFromIntrospection converts an introspection result into a schema
// document named after name. Default values and deprecation directives are not
// carried over; the document only describes the type graph.
func SchemaFromIntrospection(name string, q Query) *ast.SchemaDocument {
	pos := &ast.Position{Src: &ast.Source{Name: name}}
	doc := &ast.SchemaDocument{}

	schemaDef := &ast.SchemaDefinition{Position: pos}
	for _, root := range []struct {
		operation ast.Operation
		typ       *RootType
	}{
		{ast.Query, q.Schema.QueryType},
		{ast.Mutation, q.Schema.MutationType},
		{ast.Subscription, q.Schema.SubscriptionType},
	} {
		if root.typ == nil || root.typ.Name == nil {
			continue
		}
		schemaDef.OperationTypes = append(schemaDef.OperationTypes, &ast.OperationTypeDefinition{
			Operation: root.operation,
			Type:      *root.typ.Name,
			Position:  pos,
		})
	}
	if len(schemaDef.OperationTypes) > 0 {
		doc.Schema = append(doc.Schema, schemaDef)
	}

	for _, typ := range q.Schema.Types {
		if typ == nil || typ.Name == nil {
			continue
		}
		doc.Definitions = append(doc.Definitions, definition(typ, pos))
	}

	for _, directive := range q.Schema.Directives {
		def := &ast.DirectiveDefinition{
			Description: deref(directive.Description),
			Name:        directive.Name,
			Arguments:   arguments(directive.Args, pos),
			Position:    pos,
		}
		for _, location := range directive.Locations {
			def.Locations = append(def.Locations, ast.DirectiveLocation(location))
		}
		doc.Directives = append(doc.Directives, def)
	}

	return doc
}

func definition(typ *FullType, pos *ast.Position) *ast.Definition {
	def := &ast.Definition{
		Kind:        definitionKind(typ.Kind),
		Name:        *typ.Name,
		Description: deref(typ.Description),
		Position:    pos,
	}

	switch typ.Kind {
	case TypeKindObject, TypeKindInterface:
		for _, field := range typ.Fields {
			def.Fields = append(def.Fields, &ast.FieldDefinition{
				Description: deref(field.Description),
				Name:        field.Name,
				Arguments:   arguments(field.Args, pos),
				Type:        typeFromRef(&field.Type, pos),
				Position:    pos,
			})
		}
	case TypeKindInputObject:
		for _, field := range typ.InputFields {
			def.Fields = append(def.Fields, &ast.FieldDefinition{
				Description: deref(field.Description),
				Name:        field.Name,
				Type:        typeFromRef(&field.Type, pos),
				Position:    pos,
			})
		}
	case TypeKindEnum:
		for _, value := range typ.EnumValues {
			def.EnumValues = append(def.EnumValues, &ast.EnumValueDefinition{
				Description: deref(value.Description),
				Name:        value.Name,
				Position:    pos,
			})
		}
	case TypeKindUnion:
		for _, ref := range typ.PossibleTypes {
			def.Types = append(def.Types, deref(ref.Name))
		}
	}

	for _, ref := range typ.Interfaces {
		def.Interfaces = append(def.Interfaces, deref(ref.Name))
	}

	return def
}

func arguments(values []*InputValue, pos *ast.Position) ast.ArgumentDefinitionList {
	var args ast.ArgumentDefinitionList
	for _, value := range values {
		args = append(args, &ast.ArgumentDefinition{
			Description: deref(value.Description),
			Name:        value.Name,
			Type:        typeFromRef(&value.Type, pos),
			Position:    pos,
		})
	}

	return args
}

func typeFromRef(ref *TypeRef, pos *ast.Position) *ast.Type {
	if ref == nil {
		return &ast.Type{Position: pos}
	}

	switch ref.Kind {
	case TypeKindNonNull:
		t := typeFromRef(ref.OfType, pos)
		t.NonNull = true
		return t
	case TypeKindList:
		return &ast.Type{Elem: typeFromRef(ref.OfType, pos), Position: pos}
	default:
		return &ast.Type{NamedType: deref(ref.Name), Position: pos}
	}
}

func definitionKind(kind TypeKind) ast.DefinitionKind {
	switch kind {
	case TypeKindObject:
		return ast.Object
	case TypeKindInterface:
		return ast.Interface
	case TypeKindUnion:
		return ast.Union
	case TypeKindEnum:
		return ast.Enum
	case TypeKindInputObject:
		return ast.InputObject
	default:
		return ast.Scalar
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
