// Package core provides the fiber reconciliation engine.
//
// This package turns immutable element trees into mutations on an external
// host tree. It follows a cooperative virtual-DOM model: each render builds a
// work-in-progress fiber tree next to the committed one, diffs the two by
// position, and applies the resulting effects to the host in one pass.
//
// # Core Types
//
// Element is an immutable description of one desired UI node. Elements are
// created with El, Text and Func, and handed to Context.Render.
//
// A fiber is the mutable work unit the engine keeps per tree position. Fibers
// live in an arena owned by the Context and are addressed by FiberID; parent,
// child, sibling and alternate links are IDs, not pointers.
//
// HostRenderer is the collaborator that owns the real nodes (see the
// pkg/host/dom package for an HTML implementation).
//
// # Driving the Engine
//
// Render schedules a new root; RunWorkLoop advances the work-in-progress tree
// one fiber at a time until the caller's yield function says stop or the tree
// is exhausted, then commits:
//
//	ctx := core.NewContext(host)
//	ctx.Render(core.El("div", &core.Props{ClassName: "a"}), container)
//	for ctx.State() != core.Idle {
//	    if err := ctx.RunWorkLoop(deadline.Expired); err != nil {
//	        return err
//	    }
//	}
//
// # State
//
// Function components receive a Scope bound to their fiber. UseState reads a
// positional state cell that survives re-renders:
//
//	func counter(s *core.Scope, _ any) *core.Element {
//	    count, setCount := core.UseState(s, 0)
//	    return core.El("button", &core.Props{
//	        OnClick: core.On(func(core.Event) { setCount(count + 1) }),
//	    }, core.Text(strconv.Itoa(count)))
//	}
//
// Setters only enqueue; FlushUpdates applies queued values and schedules a
// root re-render. The pkg/scheduler package does both on every frame.
package core
