package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/gqlgo/gqlsearch/search"
)

// Text renders layouts as one match per line. Styles degrade to plain text
// when w is not a terminal.
type Text struct {
	w     io.Writer
	title lipgloss.Style
	typ   lipgloss.Style
	field lipgloss.Style
	alert lipgloss.Style
}

func NewText(w io.Writer) *Text {
	r := lipgloss.NewRenderer(w)

	return &Text{
		w:     w,
		title: r.NewStyle().Bold(true).Underline(true),
		typ:   r.NewStyle().Foreground(lipgloss.Color("3")),
		field: r.NewStyle().Foreground(lipgloss.Color("4")),
		alert: r.NewStyle().Faint(true),
	}
}

func (t *Text) Layout(l search.Layout) error {
	if l.Empty() {
		_, err := fmt.Fprintln(t.w, t.alert.Render(NoResults))
		return err
	}

	var b strings.Builder
	for i, g := range l.Groups {
		if g.Title != "" {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(t.title.Render(g.Title))
			b.WriteString("\n")
		}

		for _, m := range g.Types {
			b.WriteString(t.typ.Render(m.TypeName))
			b.WriteString("\n")
		}

		for _, m := range g.Fields {
			b.WriteString(t.fieldMatch(m))
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(t.w, b.String())

	return err
}

// Cleared writes the notice shown after a reset signal.
func (t *Text) Cleared() error {
	_, err := fmt.Fprintln(t.w, t.alert.Render("Search cleared."))
	return err
}

func (t *Text) fieldMatch(m search.FieldMatch) string {
	var b strings.Builder
	if m.WithinType != m.Type {
		b.WriteString(t.typ.Render(m.Type.Name))
		b.WriteString(".")
	}
	b.WriteString(t.field.Render(m.Field.Name))

	if m.MatchingArgs != nil {
		args := make([]string, 0, len(m.MatchingArgs))
		for _, arg := range m.MatchingArgs {
			args = append(args, arg.Name+": "+t.typ.Render(typeString(arg.Type)))
		}
		b.WriteString("(" + strings.Join(args, ", ") + ")")
	}

	return b.String()
}

func typeString(typ *ast.Type) string {
	if typ == nil {
		return ""
	}

	return typ.String()
}
