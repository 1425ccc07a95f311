package search

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// DefaultWait is the quiet window before a search is reported.
const DefaultWait = 200 * time.Millisecond

// Controller holds the search query and reports it to onSearch after input
// settles.
//
// The display state changes on every event. onSearch is called once no event
// arrived for wait, with the last merged state. A new event replaces the
// pending notification, and a timer carrying a stale token does nothing.
//
// Debounced signals are delivered from the timer goroutine. Resets and flushes
// are delivered from the caller. Deliveries are serialized, so onSearch must
// not call OnClear or Flush.
type Controller struct {
	onSearch func(Signal)
	clock    clockwork.Clock
	wait     time.Duration
	log      *logrus.Logger

	// emitMu serializes calls to onSearch; mu guards the fields below.
	emitMu sync.Mutex
	mu     sync.Mutex

	display      Query
	committed    Query
	hasCommitted bool
	token        uint64
	timer        clockwork.Timer
}

type Option func(*Controller)

func WithClock(clock clockwork.Clock) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

func WithWait(wait time.Duration) Option {
	return func(c *Controller) {
		c.wait = wait
	}
}

func WithLogger(log *logrus.Logger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

// WithSearchText sets the initial search text shown before any input.
func WithSearchText(text string) Option {
	return func(c *Controller) {
		c.display.SearchText = text
	}
}

// NewController creates a controller whose flags all start out true.
func NewController(onSearch func(Signal), options ...Option) *Controller {
	c := &Controller{
		onSearch: onSearch,
		clock:    clockwork.NewRealClock(),
		wait:     DefaultWait,
		display:  NewQuery(),
	}
	for _, option := range options {
		option(c)
	}

	if c.log == nil {
		c.log = logrus.New()
	}

	return c
}

// State returns the display state, which reflects every event immediately.
func (c *Controller) State() Query {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.display
}

// Committed returns the last state delivered to onSearch. It reports false
// before the first delivery and after a clear.
func (c *Controller) Committed() (Query, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.committed, c.hasCommitted
}

func (c *Controller) OnTextChange(text string) {
	c.update(FieldSearchText, text, false)
}

// OnCheckboxChange sets one category flag. A field that is not a checkbox is
// ignored.
func (c *Controller) OnCheckboxChange(field Field, checked bool) {
	if !field.IsCheckbox() {
		c.log.WithField("field", field).Warn("ignored checkbox change of a non-checkbox field")
		return
	}

	c.update(field, "", checked)
}

// HandleInput handles a named text input event.
func (c *Controller) HandleInput(name, value string) error {
	f, err := ParseField(name)
	if err != nil {
		return err
	}
	if f.IsCheckbox() {
		return ErrUnknownField
	}

	c.OnTextChange(value)

	return nil
}

// HandleCheckbox handles a named checkbox event.
func (c *Controller) HandleCheckbox(name string, checked bool) error {
	f, err := ParseField(name)
	if err != nil {
		return err
	}
	if !f.IsCheckbox() {
		return ErrUnknownField
	}

	c.OnCheckboxChange(f, checked)

	return nil
}

// OnClear resets the state and notifies the owner right away with a reset
// signal, dropping any pending debounced notification.
func (c *Controller) OnClear() {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	c.display = NewQuery()
	c.committed = Query{}
	c.hasCommitted = false
	c.token++
	c.stopTimerLocked()
	c.mu.Unlock()

	c.log.Debug("search cleared")
	c.onSearch(Signal{Reset: true})
}

// Flush delivers a pending debounced search right away and reports whether
// there was one.
func (c *Controller) Flush() bool {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	if c.timer == nil {
		c.mu.Unlock()
		return false
	}
	// A timer that already fired is waiting on emitMu; the new token drops it.
	c.stopTimerLocked()
	c.token++
	q := c.display
	c.committed = q
	c.hasCommitted = true
	c.mu.Unlock()

	c.log.WithField("searchText", q.SearchText).Debug("search flushed")
	c.onSearch(Signal{Query: q})

	return true
}

func (c *Controller) update(field Field, text string, checked bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.display = c.display.with(field, text, checked)
	c.token++
	if c.stopTimerLocked() {
		c.log.WithField("field", field).Debug("pending search superseded")
	}

	token, q := c.token, c.display
	c.timer = c.clock.AfterFunc(c.wait, func() {
		c.fire(token, q)
	})
}

func (c *Controller) fire(token uint64, q Query) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	if token != c.token {
		c.mu.Unlock()
		return
	}
	c.committed = q
	c.hasCommitted = true
	c.timer = nil
	c.mu.Unlock()

	c.log.WithField("searchText", q.SearchText).Debug("search committed")
	c.onSearch(Signal{Query: q})
}

func (c *Controller) stopTimerLocked() bool {
	if c.timer == nil {
		return false
	}

	stopped := c.timer.Stop()
	c.timer = nil

	return stopped
}
