package core

import (
	"github.com/go-drift/reactron/pkg/errors"
)

// EffectRecord describes one effect applied by a commit.
type EffectRecord struct {
	Tag  EffectTag `json:"tag"`
	Type string    `json:"type"`
	// Props are the fiber's props at commit time (the old props for Deletion).
	Props *Props   `json:"props,omitempty"`
	Node  HostNode `json:"-"`
}

// LastCommit returns the effects applied by the most recent successful commit,
// in application order.
func (c *Context) LastCommit() []EffectRecord {
	return c.lastCommit
}

// commitRoot applies the effect list in order, then promotes the
// work-in-progress root to current and sweeps the arena. On a host error it
// stops at the failing effect; the next call resumes from there. Updates
// flushed before the first commit leave a root render scheduled afterwards.
func (c *Context) commitRoot() error {
	for c.commitCursor < len(c.effects) {
		if err := c.commitWork(c.effects[c.commitCursor]); err != nil {
			errors.Report(err)
			return err
		}
		c.commitCursor++
	}

	records := make([]EffectRecord, 0, len(c.effects))
	for _, id := range c.effects {
		f := c.arena.get(id)
		records = append(records, EffectRecord{Tag: f.effect, Type: f.typ, Props: f.props, Node: f.host})
	}
	c.lastCommit = records
	c.stats.Effects += len(records)
	c.stats.Commits++

	c.currentRoot = c.wipRoot
	c.wipRoot = NoFiber
	c.effects = c.effects[:0]
	c.commitCursor = 0
	c.stats.Freed += c.arena.sweep(c.currentRoot)
	if c.rerender {
		c.scheduleRootUpdate()
	}
	return nil
}

func (c *Context) commitWork(id FiberID) *errors.EngineError {
	f := c.arena.get(id)
	switch f.effect {
	case Placement:
		parentNode := c.hostParentOf(id)
		if f.host == nil || parentNode == nil {
			return nil
		}
		if err := c.host.AppendChild(parentNode, f.host); err != nil {
			return hostError("core.commitPlacement", f, err)
		}

	case Update:
		if f.host == nil || f.alternate == NoFiber {
			return nil
		}
		prev := c.arena.get(f.alternate).props
		if err := c.host.UpdateNode(f.host, prev, f.props); err != nil {
			return hostError("core.commitUpdate", f, err)
		}

	case Deletion:
		// Functional fibers own no host node; remove their first child's.
		// A component that renders only another component is not resolved
		// further.
		target := f
		if f.isFunctional() && f.child != NoFiber {
			target = c.arena.get(f.child)
		}
		if target.host == nil {
			return nil
		}
		if err := c.host.RemoveNode(target.host); err != nil {
			return hostError("core.commitDeletion", f, err)
		}
	}
	return nil
}

// hostParentOf returns the host node of the nearest ancestor that has one,
// skipping functional fibers.
func (c *Context) hostParentOf(id FiberID) HostNode {
	for cur := c.arena.get(id).parent; cur != NoFiber; {
		f := c.arena.get(cur)
		if f.host != nil {
			return f.host
		}
		cur = f.parent
	}
	return nil
}

func hostError(op string, f *fiber, err error) *errors.EngineError {
	return &errors.EngineError{
		Op:    op,
		Kind:  errors.KindHost,
		Fiber: f.typ,
		Err:   err,
	}
}
