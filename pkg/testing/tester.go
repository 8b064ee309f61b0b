package testing

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-drift/reactron/pkg/core"
	"github.com/go-drift/reactron/pkg/host/dom"
	"github.com/go-drift/reactron/pkg/scheduler"
)

// DefaultMaxFrames bounds Settle.
const DefaultMaxFrames = 1000

// ErrSettleTimeout is returned when Settle exceeds its frame limit.
var ErrSettleTimeout = errors.New("Settle timed out: engine did not become idle")

// Tester renders components into an in-memory HTML document and drives the
// engine with a scheduler on a fake clock.
type Tester struct {
	doc       *dom.Document
	host      core.HostRenderer
	ctx       *core.Context
	sched     *scheduler.Scheduler
	clock     *FakeClock
	maxFrames int
}

type testerConfig struct {
	wrapHost  func(core.HostRenderer) core.HostRenderer
	maxSteps  int
	budget    time.Duration
	maxFrames int
	docOpts   []dom.Option
}

// TesterOption configures a Tester.
type TesterOption func(*testerConfig)

// WithHost wraps the document host, for example in a FaultyHost.
func WithHost(wrap func(core.HostRenderer) core.HostRenderer) TesterOption {
	return func(c *testerConfig) { c.wrapHost = wrap }
}

// WithMaxSteps limits the units of work performed per frame.
func WithMaxSteps(n int) TesterOption {
	return func(c *testerConfig) { c.maxSteps = n }
}

// WithBudget sets the scheduler's per-frame budget, measured on the fake clock.
func WithBudget(d time.Duration) TesterOption {
	return func(c *testerConfig) { c.budget = d }
}

// WithMaxFrames overrides DefaultMaxFrames.
func WithMaxFrames(n int) TesterOption {
	return func(c *testerConfig) { c.maxFrames = n }
}

// WithDocumentOptions passes options to the underlying document.
func WithDocumentOptions(opts ...dom.Option) TesterOption {
	return func(c *testerConfig) { c.docOpts = append(c.docOpts, opts...) }
}

// NewTester creates a tester with an empty document.
func NewTester(opts ...TesterOption) (*Tester, error) {
	cfg := testerConfig{maxFrames: DefaultMaxFrames}
	for _, opt := range opts {
		opt(&cfg)
	}

	doc, err := dom.NewDocument(cfg.docOpts...)
	if err != nil {
		return nil, err
	}
	var host core.HostRenderer = doc
	if cfg.wrapHost != nil {
		host = cfg.wrapHost(doc)
	}
	clock := NewFakeClock()
	ctx := core.NewContext(host)
	sched := scheduler.New(ctx, scheduler.Config{
		Budget:   cfg.budget,
		MaxSteps: cfg.maxSteps,
		Clock:    clock,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return &Tester{
		doc:       doc,
		host:      host,
		ctx:       ctx,
		sched:     sched,
		clock:     clock,
		maxFrames: cfg.maxFrames,
	}, nil
}

// NewTesterWithT creates a tester and fails t if that is not possible.
// This is the recommended constructor for tests.
func NewTesterWithT(t *testing.T, opts ...TesterOption) *Tester {
	t.Helper()
	tester, err := NewTester(opts...)
	if err != nil {
		t.Fatalf("NewTester: %v", err)
	}
	return tester
}

// Document returns the host document.
func (t *Tester) Document() *dom.Document {
	return t.doc
}

// Host returns the host the engine renders through.
func (t *Tester) Host() core.HostRenderer {
	return t.host
}

// Context returns the engine.
func (t *Tester) Context() *core.Context {
	return t.ctx
}

// Scheduler returns the frame driver.
func (t *Tester) Scheduler() *scheduler.Scheduler {
	return t.sched
}

// Clock returns the fake clock for controlling frame budgets.
func (t *Tester) Clock() *FakeClock {
	return t.clock
}

// HTML returns the rendered container's inner HTML.
func (t *Tester) HTML() string {
	return t.doc.HTML()
}

// Render renders el into the document container and settles.
func (t *Tester) Render(el *core.Element) error {
	if err := t.ctx.Render(el, t.doc.Container()); err != nil {
		return err
	}
	return t.Settle()
}

// Pump runs a single frame: dispatched callbacks, state updates, and the
// work loop under the frame budget.
func (t *Tester) Pump() (scheduler.FrameSample, error) {
	return t.sched.Frame()
}

// Settle runs frames until the engine is idle. It returns the first frame
// error, or ErrSettleTimeout if work remains after the frame limit.
func (t *Tester) Settle() error {
	_, err := t.sched.RunUntilIdle(t.maxFrames)
	if errors.Is(err, scheduler.ErrNotIdle) {
		return ErrSettleTimeout
	}
	return err
}

// Dispatch queues a callback for the next frame, mirroring Scheduler.Dispatch.
func (t *Tester) Dispatch(fn func()) {
	t.sched.Dispatch(fn)
}

// Find evaluates finder against the rendered document.
func (t *Tester) Find(finder Finder) FinderResult {
	return FinderResult{nodes: t.doc.FindAll(finder.Match), finder: finder}
}

// Click dispatches a click on the first match and settles.
func (t *Tester) Click(finder Finder) error {
	return t.fire(finder, core.Event{Type: core.EventClick})
}

// Change sets the value of the first match, dispatches change and settles.
func (t *Tester) Change(finder Finder, value string) error {
	return t.fire(finder, core.Event{Type: core.EventChange, Value: value})
}

// Toggle sets the checked state of the first match, dispatches change and
// settles.
func (t *Tester) Toggle(finder Finder, checked bool) error {
	return t.fire(finder, core.Event{Type: core.EventChange, Checked: checked})
}

// KeyDown dispatches a keydown with key on the first match and settles.
func (t *Tester) KeyDown(finder Finder, key string) error {
	return t.fire(finder, core.Event{Type: core.EventKeyDown, Key: key})
}

// Blur dispatches blur on the first match and settles.
func (t *Tester) Blur(finder Finder) error {
	return t.fire(finder, core.Event{Type: core.EventBlur})
}

func (t *Tester) fire(finder Finder, ev core.Event) error {
	node := t.Find(finder).FirstOrNil()
	if node == nil {
		return fmt.Errorf("no node matches %s", finder.Description())
	}
	if _, err := t.doc.DispatchTo(node, ev); err != nil {
		return err
	}
	return t.Settle()
}
