package core

import (
	"github.com/go-drift/reactron/pkg/errors"
)

// LoopState is the externally visible phase of a Context.
type LoopState int

const (
	// Idle means there is nothing to render or commit.
	Idle LoopState = iota
	// Running means a work-in-progress tree still has units to perform.
	Running
	// Committing means the work-in-progress tree is complete but not yet
	// applied, typically because a previous commit attempt failed.
	Committing
)

func (s LoopState) String() string {
	switch s {
	case Running:
		return "running"
	case Committing:
		return "committing"
	default:
		return "idle"
	}
}

// Stats counts engine activity since the Context was created.
type Stats struct {
	Units     int `json:"units"`
	Commits   int `json:"commits"`
	Effects   int `json:"effects"`
	Freed     int `json:"freed"`
	LiveFiber int `json:"liveFibers"`
	ArenaSize int `json:"arenaSize"`
}

// Context holds all engine state: the fiber arena, the current and
// work-in-progress roots, the pending effect list and the update queue.
// A Context is not safe for concurrent use; only its UpdateQueue is.
type Context struct {
	host  HostRenderer
	arena *fiberArena

	currentRoot FiberID
	wipRoot     FiberID
	nextUnit    FiberID

	// active is the scope of the component being invoked, if any.
	active *Scope

	effects      []FiberID
	commitCursor int
	lastCommit   []EffectRecord

	updates *UpdateQueue
	// rerender is set when updates were flushed into a tree that has not
	// committed yet; the commit schedules the root render they need.
	rerender bool
	stats    Stats
}

// NewContext creates an engine with no current or work-in-progress root.
func NewContext(host HostRenderer) *Context {
	if host == nil {
		errors.Invariant("core.NewContext", "nil host renderer")
	}
	return &Context{
		host:    host,
		arena:   newFiberArena(),
		updates: &UpdateQueue{},
	}
}

// Host returns the host renderer the engine mutates.
func (c *Context) Host() HostRenderer {
	return c.host
}

// Updates returns the queue state setters write to.
func (c *Context) Updates() *UpdateQueue {
	return c.updates
}

// Render schedules el to be rendered into container. The new root's
// alternate is the current root, so a second Render into the same container
// diffs against what is on screen. Any unfinished work-in-progress tree is
// discarded.
func (c *Context) Render(el *Element, container HostNode) error {
	if c.active != nil {
		return errors.ErrReentrantRender
	}
	if container == nil {
		return &errors.EngineError{
			Op:   "core.Render",
			Kind: errors.KindInvariant,
			Err:  errors.New("nil container"),
		}
	}

	root := c.arena.alloc(RootType)
	r := c.arena.get(root)
	if el != nil {
		r.elementChildren = []*Element{el}
	}
	r.host = container
	r.alternate = c.currentRoot
	c.installRoot(root)
	return nil
}

// installRoot makes root both the work-in-progress root and the next unit.
func (c *Context) installRoot(root FiberID) {
	c.wipRoot = root
	c.nextUnit = root
	c.effects = c.effects[:0]
	c.commitCursor = 0
	c.rerender = false
}

// abandonWork drops the work-in-progress tree without touching the current one.
func (c *Context) abandonWork() {
	c.wipRoot = NoFiber
	c.nextUnit = NoFiber
	c.effects = c.effects[:0]
	c.commitCursor = 0
	c.rerender = false
}

// State reports the loop phase.
func (c *Context) State() LoopState {
	switch {
	case c.nextUnit != NoFiber:
		return Running
	case c.wipRoot != NoFiber:
		return Committing
	default:
		return Idle
	}
}

// CurrentRoot returns the root of the committed tree.
func (c *Context) CurrentRoot() FiberID {
	return c.currentRoot
}

// WorkInProgressRoot returns the root being built, or NoFiber.
func (c *Context) WorkInProgressRoot() FiberID {
	return c.wipRoot
}

// NextUnit returns the fiber the work loop will perform next, or NoFiber.
func (c *Context) NextUnit() FiberID {
	return c.nextUnit
}

// PendingEffects returns the number of effects queued for the next commit.
func (c *Context) PendingEffects() int {
	return len(c.effects)
}

// Stats returns activity counters.
func (c *Context) Stats() Stats {
	s := c.stats
	s.LiveFiber = c.arena.live()
	s.ArenaSize = c.arena.size()
	return s
}
