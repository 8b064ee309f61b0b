// Package scheduler drives a core.Context in time-budgeted frames.
//
// Each frame runs, in order: callbacks queued with Dispatch, the state
// updates queued by UseState setters, and the work loop until the frame
// budget is spent or the tree is committed. The scheduler is the only code
// that should touch the Context once Run has started; other goroutines hand
// work to it through Dispatch.
package scheduler

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"github.com/go-drift/reactron/pkg/core"
	"github.com/go-drift/reactron/pkg/errors"
)

// ErrNotIdle is returned by RunUntilIdle when work remains after the frame limit.
var ErrNotIdle = stderrors.New("scheduler: work remains after frame limit")

// Config configures a Scheduler.
type Config struct {
	// Budget bounds the time a frame spends performing units of work; the
	// first unit of a frame always runs.
	// Zero means unbounded.
	Budget time.Duration
	// MaxSteps bounds the units performed per frame. Zero means unbounded.
	MaxSteps int
	// TraceSamples is the frame trace capacity.
	TraceSamples int
	// SlowFrame is the duration above which a frame counts as slow.
	SlowFrame time.Duration
	// Clock defaults to the system clock.
	Clock Clock
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Scheduler owns the frame loop of one Context.
type Scheduler struct {
	ctx      *core.Context
	clock    Clock
	budget   time.Duration
	maxSteps int
	logger   *slog.Logger
	trace    *FrameTraceBuffer

	mu       sync.Mutex
	queue    []func()
	onCommit map[int]func(FrameSample)
	nextSub  int
	seq      int64

	wake chan struct{}
}

// New creates a scheduler for ctx and hooks it to the context's update
// queue so that state setters wake a running loop.
func New(ctx *core.Context, cfg Config) *Scheduler {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &Scheduler{
		ctx:      ctx,
		clock:    cfg.Clock,
		budget:   cfg.Budget,
		maxSteps: cfg.MaxSteps,
		logger:   cfg.Logger.With(slog.String("component", "scheduler")),
		trace:    NewFrameTraceBuffer(cfg.TraceSamples, cfg.SlowFrame),
		onCommit: make(map[int]func(FrameSample)),
		wake:     make(chan struct{}, 1),
	}
	ctx.Updates().OnNeedsFrame = s.requestFrame
	return s
}

// Context returns the driven engine.
func (s *Scheduler) Context() *core.Context {
	return s.ctx
}

// Trace returns the frame trace buffer.
func (s *Scheduler) Trace() *FrameTraceBuffer {
	return s.trace
}

// Dispatch queues fn to run at the start of the next frame on the loop
// goroutine. It is safe to call from any goroutine. A nil fn is ignored.
func (s *Scheduler) Dispatch(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.mu.Unlock()
	s.requestFrame()
}

// OnCommit registers fn to run after every frame that committed. It returns
// a function that unregisters fn. Callbacks run on the loop goroutine.
func (s *Scheduler) OnCommit(fn func(FrameSample)) (remove func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.onCommit[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.onCommit, id)
		s.mu.Unlock()
	}
}

// Pending reports whether a frame would do anything.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	queued := len(s.queue)
	s.mu.Unlock()
	return queued > 0 || s.ctx.Updates().Len() > 0 || s.ctx.State() != core.Idle
}

func (s *Scheduler) requestFrame() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) drainQueue() []func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.queue
	s.queue = nil
	return queue
}

// Frame runs one frame. The returned error is the work loop's; the sample
// is recorded in the trace either way.
func (s *Scheduler) Frame() (FrameSample, error) {
	start := s.clock.Now()
	before := s.ctx.Stats()

	callbacks := s.drainQueue()
	panics := 0
	for _, fn := range callbacks {
		if runCallback(fn) {
			panics++
		}
	}
	dispatchEnd := s.clock.Now()

	updates := s.ctx.Updates().Len()
	s.ctx.FlushUpdates()
	flushEnd := s.clock.Now()

	deadline := flushEnd.Add(s.budget)
	steps := 0
	yielded := false
	err := s.ctx.RunWorkLoop(func() bool {
		if s.maxSteps > 0 && steps >= s.maxSteps {
			yielded = true
			return true
		}
		// The first unit of a frame ignores the budget.
		if s.budget > 0 && steps > 0 && !s.clock.Now().Before(deadline) {
			yielded = true
			return true
		}
		steps++
		return false
	})
	end := s.clock.Now()
	after := s.ctx.Stats()

	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	sample := FrameSample{
		Seq:       seq,
		Timestamp: start.UnixMilli(),
		FrameMs:   durationToMillis(end.Sub(start)),
		Phases: FramePhaseTimings{
			DispatchMs: durationToMillis(dispatchEnd.Sub(start)),
			FlushMs:    durationToMillis(flushEnd.Sub(dispatchEnd)),
			WorkMs:     durationToMillis(end.Sub(flushEnd)),
		},
		Counts: FrameCounts{
			Dispatched: len(callbacks),
			Panics:     panics,
			Updates:    updates,
			Units:      after.Units - before.Units,
			Effects:    after.Effects - before.Effects,
			LiveFibers: after.LiveFiber,
			ArenaSize:  after.ArenaSize,
		},
		Flags: FrameFlags{
			Committed: after.Commits > before.Commits,
			Yielded:   yielded,
			State:     s.ctx.State().String(),
		},
	}
	if err != nil {
		sample.Flags.Error = err.Error()
	}
	s.trace.Add(sample, end.Sub(start))

	if sample.Flags.Committed {
		s.logger.Debug("frame committed",
			slog.Int64("seq", seq),
			slog.Int("units", sample.Counts.Units),
			slog.Int("effects", sample.Counts.Effects),
			slog.Int("liveFibers", sample.Counts.LiveFibers),
			slog.Float64("frameMs", sample.FrameMs),
		)
		s.notifyCommit(sample)
	}
	return sample, err
}

// runCallback runs a dispatched callback. A panic is reported through the
// errors handler and does not stop the frame.
func runCallback(fn func()) (panicked bool) {
	defer errors.RecoverWithCallback("scheduler.Dispatch", func(any) { panicked = true })
	fn()
	return false
}

func (s *Scheduler) notifyCommit(sample FrameSample) {
	s.mu.Lock()
	subs := make([]func(FrameSample), 0, len(s.onCommit))
	for _, fn := range s.onCommit {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(sample)
	}
}

// RunUntilIdle runs frames until nothing is pending, returning the number of
// frames run. It stops at the first frame error, and returns ErrNotIdle if
// work remains after maxFrames frames. maxFrames <= 0 means no limit.
func (s *Scheduler) RunUntilIdle(maxFrames int) (int, error) {
	frames := 0
	for s.Pending() {
		if maxFrames > 0 && frames >= maxFrames {
			return frames, ErrNotIdle
		}
		if _, err := s.Frame(); err != nil {
			return frames + 1, err
		}
		frames++
	}
	return frames, nil
}

// Run drives frames until ctx is cancelled. While work is pending it runs a
// frame every interval; when idle it sleeps until Dispatch or a state setter
// requests a frame. Frame errors are logged and the failed step is retried
// on the next frame.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = defaultFrameTraceThreshold
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("frame loop started", slog.Duration("interval", interval), slog.Duration("budget", s.budget))
	for {
		if s.Pending() {
			if _, err := s.Frame(); err != nil {
				s.logger.Warn("frame failed", slog.Any("error", err))
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
			continue
		}

		select {
		case <-ctx.Done():
			s.logger.Info("frame loop stopped")
			return nil
		case <-s.wake:
		}
	}
}
