package core

import (
	"github.com/go-drift/reactron/pkg/errors"
)

// Scope is handed to a component for the duration of one invocation and
// binds hook calls to that component's fiber. It must not be retained.
type Scope struct {
	ctx   *Context
	fiber FiberID
	done  bool
}

// Fiber returns the fiber the scope is bound to.
func (s *Scope) Fiber() FiberID {
	return s.fiber
}

func (s *Scope) activeFiber(op string) *fiber {
	if s == nil || s.done || s.ctx == nil || s.ctx.active != s {
		panic(&errors.InvariantError{
			Op:     op,
			Detail: "hook called outside its component invocation",
			Err:    errors.ErrNoActiveComponent,
		})
	}
	return s.ctx.arena.get(s.fiber)
}

// UseState returns the state stored at the component's next hook position
// and a setter for it.
//
// On the first render of a fiber the value is initial. On later renders it is
// the value the same position held in the previous render, so hook calls must
// happen in the same order every time. A position whose previous value has a
// different type, as when one component replaces another at the same place in
// the tree, starts again from initial.
//
// The setter does not re-render by itself: it queues the value on the
// Context's UpdateQueue, and the next FlushUpdates writes it and schedules a
// root render.
//
// Example:
//
//	func toggle(s *core.Scope, _ any) *core.Element {
//	    on, setOn := core.UseState(s, false)
//	    return core.El("input", &core.Props{
//	        InputType: "checkbox",
//	        Checked:   core.Bool(on),
//	        OnChange:  core.On(func(core.Event) { setOn(!on) }),
//	    })
//	}
func UseState[T any](s *Scope, initial T) (T, func(T)) {
	f := s.activeFiber("core.UseState")

	value := any(initial)
	if f.alternate != NoFiber {
		alt := s.ctx.arena.get(f.alternate)
		if f.hookIndex < len(alt.hooks) {
			value = alt.hooks[f.hookIndex].value
		}
	}

	// A cell of another type belongs to a different component that held this
	// position, or to hooks called in another order. It starts over.
	var current T
	if typed, ok := value.(T); ok {
		current = typed
	} else if value != nil {
		current = initial
	}

	cell := &hookCell{value: current}
	f.hooks = append(f.hooks, cell)
	f.hookIndex++

	queue := s.ctx.updates
	return current, func(next T) {
		queue.enqueue(cell, next)
	}
}

// UseState is the untyped form of the package-level UseState for callers that
// only hold the Context. It is valid only while a component is being invoked.
func (c *Context) UseState(initial any) (any, func(any)) {
	return UseState(c.active, initial)
}
