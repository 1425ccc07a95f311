package render

import (
	"fmt"
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/gqlgo/gqlsearch/search"
)

type jsonLayout struct {
	Groups []jsonGroup `json:"groups"`
}

type jsonGroup struct {
	Title string     `json:"title,omitempty"`
	Items []jsonItem `json:"items"`
}

type jsonItem struct {
	Kind   string    `json:"kind"`
	Type   string    `json:"type"`
	Field  string    `json:"field,omitempty"`
	Within bool      `json:"within,omitempty"`
	Args   []jsonArg `json:"args,omitempty"`
}

type jsonArg struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// JSON writes l as an indented document. An empty layout has no groups.
func JSON(w io.Writer, l search.Layout) error {
	doc := jsonLayout{Groups: make([]jsonGroup, 0, len(l.Groups))}
	for _, g := range l.Groups {
		jg := jsonGroup{Title: g.Title, Items: make([]jsonItem, 0, len(g.Types)+len(g.Fields))}
		for _, m := range g.Types {
			jg.Items = append(jg.Items, jsonItem{Kind: "type", Type: m.TypeName})
		}
		for _, m := range g.Fields {
			jg.Items = append(jg.Items, fieldItem(m))
		}
		doc.Groups = append(doc.Groups, jg)
	}

	if err := json.MarshalWrite(w, doc, jsontext.WithIndent("  ")); err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}

	_, err := io.WriteString(w, "\n")

	return err
}

func fieldItem(m search.FieldMatch) jsonItem {
	item := jsonItem{
		Kind:   "field",
		Type:   m.Type.Name,
		Field:  m.Field.Name,
		Within: m.WithinType != nil && m.WithinType == m.Type,
	}

	for _, arg := range m.MatchingArgs {
		item.Args = append(item.Args, jsonArg{Name: arg.Name, Type: typeString(arg.Type)})
	}

	return item
}
