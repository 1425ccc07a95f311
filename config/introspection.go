package config

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"

	"github.com/gqlgo/gqlsearch/client"
	"github.com/gqlgo/gqlsearch/introspection"
)

func introspectionSchema(ctx context.Context, httpClient *http.Client, endpoint string, header http.Header, log *logrus.Logger) (*ast.Schema, error) {
	gqlClient := client.NewClient(endpoint, client.WithHTTPClient(httpClient), client.WithHTTPHeader(header), client.WithLogger(log))

	var res introspection.Query
	if err := gqlClient.Post(ctx, "Query", introspection.Introspection, nil, &res); err != nil {
		return nil, fmt.Errorf("introspection query failed: %w", err)
	}

	doc, err := withPrelude(introspection.SchemaFromIntrospection(endpoint, res))
	if err != nil {
		return nil, err
	}

	schema, validateErr := validator.ValidateSchemaDocument(doc)
	if validateErr != nil {
		return nil, fmt.Errorf("validation error: %w", validateErr)
	}

	return schema, nil
}

// withPrelude merges doc into the gqlparser prelude. Built-in scalars,
// introspection types and standard directives reported by the server are
// dropped in favour of the prelude's own definitions.
func withPrelude(doc *ast.SchemaDocument) (*ast.SchemaDocument, error) {
	prelude, err := parser.ParseSchema(validator.Prelude)
	if err != nil {
		return nil, fmt.Errorf("parse prelude: %w", err)
	}

	builtin := map[string]bool{}
	for _, def := range prelude.Definitions {
		builtin[def.Name] = true
	}
	for _, def := range prelude.Directives {
		builtin["@"+def.Name] = true
	}

	for _, def := range doc.Definitions {
		if !builtin[def.Name] {
			prelude.Definitions = append(prelude.Definitions, def)
		}
	}
	for _, def := range doc.Directives {
		if !builtin["@"+def.Name] {
			prelude.Directives = append(prelude.Directives, def)
		}
	}
	prelude.Schema = append(prelude.Schema, doc.Schema...)

	return prelude, nil
}
