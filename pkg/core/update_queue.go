package core

import (
	"sync"
)

type stateUpdate struct {
	cell  *hookCell
	value any
}

// UpdateQueue collects state changes made through UseState setters until the
// driver flushes them. Setters may be called from any goroutine.
type UpdateQueue struct {
	pending []stateUpdate
	mu      sync.Mutex

	// OnNeedsFrame is called when the queue goes from empty to non-empty,
	// signalling the driver that a frame should run. This is necessary for
	// on-demand scheduling where the driver sleeps until explicitly woken.
	OnNeedsFrame func()
}

func (q *UpdateQueue) enqueue(cell *hookCell, value any) {
	first := func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		q.pending = append(q.pending, stateUpdate{cell: cell, value: value})
		return len(q.pending) == 1
	}()

	if first && q.OnNeedsFrame != nil {
		q.OnNeedsFrame()
	}
}

// Len returns the number of queued updates.
func (q *UpdateQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *UpdateQueue) drain() []stateUpdate {
	q.mu.Lock()
	defer q.mu.Unlock()
	pending := q.pending
	q.pending = nil
	return pending
}

// FlushUpdates writes every queued value into its hook cell, in queue order,
// and schedules one root render from the committed tree. The new root
// inherits the current root's element children and container and replaces
// any unfinished work-in-progress tree. Before the first commit there is no
// tree to render from, so the render is scheduled by that commit instead.
// It reports whether anything was flushed. Flushing is refused while a
// component is being invoked.
func (c *Context) FlushUpdates() bool {
	if c.active != nil {
		return false
	}
	pending := c.updates.drain()
	if len(pending) == 0 {
		return false
	}
	for _, update := range pending {
		update.cell.value = update.value
	}
	c.scheduleRootUpdate()
	return true
}

func (c *Context) scheduleRootUpdate() {
	if c.currentRoot == NoFiber {
		c.rerender = c.wipRoot != NoFiber
		return
	}
	root := c.arena.alloc(RootType)
	r := c.arena.get(root)
	current := c.arena.get(c.currentRoot)
	r.alternate = c.currentRoot
	r.elementChildren = current.elementChildren
	r.host = current.host
	c.installRoot(root)
}
