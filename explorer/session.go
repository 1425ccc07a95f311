// Package explorer provides an interactive schema search session.
//
// A Session holds the schema and the current within type and turns input lines
// into search.Controller events. Every debounced query is matched and rendered.
package explorer

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/gqlgo/gqlsearch/render"
	"github.com/gqlgo/gqlsearch/search"
)

var ErrUnknownType = errors.New("unknown type")

var categoryFields = map[string]search.Field{
	".query":        search.FieldShowQueries,
	".mutation":     search.FieldShowMutations,
	".subscription": search.FieldShowSubscriptions,
	".other":        search.FieldShowOthers,
}

type Session struct {
	schema *ast.Schema
	out    io.Writer
	format render.Format
	log    *logrus.Logger

	controller *search.Controller

	// mu guards within and serializes writes to out.
	mu     sync.Mutex
	within *ast.Definition
}

type Option func(*sessionOptions)

type sessionOptions struct {
	format     render.Format
	log        *logrus.Logger
	within     *ast.Definition
	controller []search.Option
}

func WithFormat(format render.Format) Option {
	return func(o *sessionOptions) {
		o.format = format
	}
}

func WithLogger(log *logrus.Logger) Option {
	return func(o *sessionOptions) {
		o.log = log
	}
}

// WithWithin starts the session focused on def.
func WithWithin(def *ast.Definition) Option {
	return func(o *sessionOptions) {
		o.within = def
	}
}

// WithControllerOptions passes options to the underlying search.Controller.
func WithControllerOptions(options ...search.Option) Option {
	return func(o *sessionOptions) {
		o.controller = append(o.controller, options...)
	}
}

func NewSession(schema *ast.Schema, out io.Writer, options ...Option) *Session {
	o := sessionOptions{format: render.FormatText}
	for _, option := range options {
		option(&o)
	}
	if o.log == nil {
		o.log = logrus.New()
	}

	s := &Session{
		schema: schema,
		out:    out,
		format: o.format,
		log:    o.log,
		within: o.within,
	}

	controllerOptions := append([]search.Option{search.WithLogger(o.log)}, o.controller...)
	s.controller = search.NewController(s.onSearch, controllerOptions...)

	return s
}

// Controller exposes the query state of the session.
func (s *Session) Controller() *search.Controller {
	return s.controller
}

// Within returns the type the session is focused on, or nil.
func (s *Session) Within() *ast.Definition {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.within
}

// TypeNames returns the schema's type names in order, for completion.
func (s *Session) TypeNames() []string {
	return slices.Sorted(maps.Keys(s.schema.Types))
}

// Handle processes one input line. Lines starting with a dot are commands, a
// leading ".." is a literal dot, and anything else replaces the search text.
// quit reports that the session should end.
func (s *Session) Handle(line string) (quit bool, err error) {
	if !strings.HasPrefix(line, ".") {
		s.controller.OnTextChange(line)
		return false, nil
	}
	if strings.HasPrefix(line, "..") {
		s.controller.OnTextChange(line[1:])
		return false, nil
	}

	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true, nil
	case ".help":
		s.write(func(w io.Writer) error {
			_, err := fmt.Fprintln(w, help)
			return err
		})
		return false, nil
	case ".clear":
		s.controller.OnClear()
		return false, nil
	case ".within":
		return false, s.navigate(parts[1:])
	}

	if field, ok := categoryFields[command]; ok {
		if len(parts) != 2 {
			return false, fmt.Errorf("usage: %s on|off", command)
		}

		checked, err := parseSwitch(parts[1])
		if err != nil {
			return false, err
		}

		s.controller.OnCheckboxChange(field, checked)

		return false, nil
	}

	return false, fmt.Errorf("unknown command: %s (type .help for commands)", command)
}

// Close runs a still pending search before the session ends, so the last
// input is not lost.
func (s *Session) Close() {
	if s.controller.Flush() {
		s.log.Debug("pending search flushed on close")
	}
}

func (s *Session) navigate(args []string) error {
	var def *ast.Definition
	if len(args) > 0 {
		def = s.schema.Types[args[0]]
		if def == nil {
			return fmt.Errorf("%w: %s", ErrUnknownType, args[0])
		}
	}

	s.mu.Lock()
	s.within = def
	s.mu.Unlock()

	if q, ok := s.controller.Committed(); ok {
		s.search(q)
	}

	return nil
}

func (s *Session) onSearch(signal search.Signal) {
	if signal.Reset {
		s.write(func(w io.Writer) error {
			if s.format == render.FormatJSON {
				return render.JSON(w, search.Layout{})
			}
			return render.NewText(w).Cleared()
		})
		return
	}

	s.search(signal.Query)
}

func (s *Session) search(q search.Query) {
	within := s.Within()
	result := search.Match(s.schema, within, q)

	s.log.WithFields(logrus.Fields{
		"searchText": q.SearchText,
		"matches":    result.Total(),
	}).Debug("search finished")

	s.write(func(w io.Writer) error {
		return render.Layout(w, s.format, result.Layout(within))
	})
}

func (s *Session) write(fn func(w io.Writer) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.out); err != nil {
		s.log.WithError(err).Error("write results")
	}
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	}

	return false, fmt.Errorf("invalid switch %q (want on or off)", s)
}

const help = `
Commands:
  .within <Type>                 Focus on a type (no argument leaves it)
  .query|.mutation|.subscription|.other on|off
                                 Show or hide a category
  .clear                         Reset the search
  .help                          Show this help message
  .quit / .exit                  Exit

Any other line replaces the search text. Start it with ".." to search
for text beginning with a dot.`
