package core

import (
	"time"

	"github.com/go-drift/reactron/pkg/errors"
)

// RunWorkLoop performs units of work until shouldYield returns true or the
// work-in-progress tree is exhausted. shouldYield is polled before every unit;
// a nil shouldYield never yields. Once no unit remains, the pending tree is
// committed in the same call and the commit is never interrupted.
//
// A host error leaves the engine exactly where it failed, so calling
// RunWorkLoop again retries the failed step. A component error aborts the
// render pass; the committed tree is untouched.
func (c *Context) RunWorkLoop(shouldYield func() bool) error {
	if c.active != nil {
		return errors.ErrReentrantRender
	}
	for c.nextUnit != NoFiber {
		if shouldYield != nil && shouldYield() {
			break
		}
		next, err := c.performUnitOfWork(c.nextUnit)
		if err != nil {
			return err
		}
		c.nextUnit = next
		c.stats.Units++
	}

	if c.nextUnit == NoFiber && c.wipRoot != NoFiber {
		return c.commitRoot()
	}
	return nil
}

// performUnitOfWork renders one fiber, reconciles its children, records its
// effect and returns the next fiber in depth-first pre-order.
func (c *Context) performUnitOfWork(id FiberID) (FiberID, error) {
	f := c.arena.get(id)

	if f.isFunctional() {
		child, err := c.invokeComponent(id)
		if err != nil {
			c.abandonWork()
			return NoFiber, err
		}
		f.elementChildren = nil
		if child != nil {
			f.elementChildren = []*Element{child}
		}
	} else if f.host == nil {
		node, err := c.createHostNode(f)
		if err != nil {
			return NoFiber, err
		}
		f.host = node
	}
	c.reconcileChildren(id)

	if f.effect != EffectNone {
		c.effects = append(c.effects, id)
	}

	return c.nextUnitAfter(id), nil
}

// nextUnitAfter returns the child, else the sibling, else the sibling of the
// nearest ancestor that has one.
func (c *Context) nextUnitAfter(id FiberID) FiberID {
	if child := c.arena.get(id).child; child != NoFiber {
		return child
	}
	for cur := id; cur != NoFiber; {
		f := c.arena.get(cur)
		if f.sibling != NoFiber {
			return f.sibling
		}
		cur = f.parent
	}
	return NoFiber
}

func (c *Context) createHostNode(f *fiber) (HostNode, error) {
	if f.props == nil {
		errors.Invariant("core.createHostNode", "%s fiber has no props", f.typ)
	}
	node, err := c.host.CreateNode(f.typ, f.props)
	if err == nil && node == nil {
		err = errors.New("host returned a nil node")
	}
	if err != nil {
		hostErr := &errors.EngineError{
			Op:    "core.createHostNode",
			Kind:  errors.KindHost,
			Fiber: f.typ,
			Err:   err,
		}
		errors.Report(hostErr)
		return nil, hostErr
	}
	return node, nil
}

// invokeComponent runs the component of a functional fiber with a scope bound
// to that fiber. Panics other than invariant violations become ComponentErrors.
func (c *Context) invokeComponent(id FiberID) (child *Element, err error) {
	f := c.arena.get(id)
	if f.component == nil {
		errors.Invariant("core.invokeComponent", "functional fiber %d has no component", id)
	}
	fn, props := f.component, f.componentProps

	f.hooks = []*hookCell{}
	f.hookIndex = 0
	scope := &Scope{ctx: c, fiber: id}
	c.active = scope

	defer func() {
		scope.done = true
		c.active = nil
		r := recover()
		if r == nil {
			return
		}
		if inv, ok := r.(*errors.InvariantError); ok {
			panic(inv)
		}
		componentErr := &errors.ComponentError{
			Component:  f.name,
			Recovered:  r,
			StackTrace: errors.CaptureStack(),
			Timestamp:  time.Now(),
		}
		errors.ReportComponentError(componentErr)
		child, err = nil, componentErr
	}()

	return fn(scope, props), nil
}
