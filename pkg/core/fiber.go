package core

import (
	"fmt"

	"github.com/go-drift/reactron/pkg/errors"
)

// FiberID addresses a fiber in a Context's arena. The zero value means none.
type FiberID int32

// NoFiber is the absent fiber link.
const NoFiber FiberID = 0

// EffectTag marks what a fiber needs applied to the host tree at commit.
type EffectTag uint8

const (
	// EffectNone means the fiber needs no host mutation.
	EffectNone EffectTag = iota
	// Placement appends the fiber's host node under its nearest host ancestor.
	Placement
	// Update applies a prop diff to the fiber's existing host node.
	Update
	// Deletion removes the fiber's host node.
	Deletion
)

func (t EffectTag) String() string {
	switch t {
	case Placement:
		return "placement"
	case Update:
		return "update"
	case Deletion:
		return "deletion"
	default:
		return "none"
	}
}

// MarshalText renders the tag by name in JSON snapshots.
func (t EffectTag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// hookCell is one positional state slot. Setters hold the cell directly so
// that arena sweeps never invalidate them.
type hookCell struct {
	value any
}

type fiber struct {
	inUse bool

	typ             string
	props           *Props
	elementChildren []*Element
	host            HostNode
	effect          EffectTag

	hooks          []*hookCell
	hookIndex      int
	component      Component
	componentProps any
	name           string

	parent    FiberID
	child     FiberID
	sibling   FiberID
	alternate FiberID
}

func (f *fiber) isFunctional() bool {
	return f.typ == FunctionalType
}

func (f *fiber) isText() bool {
	return f.typ == TextType
}

func (f *fiber) isRoot() bool {
	return f.typ == RootType
}

// fiberArena stores every fiber of a Context. Slot 0 is reserved for NoFiber.
type fiberArena struct {
	slots []*fiber
	free  []FiberID
}

func newFiberArena() *fiberArena {
	return &fiberArena{slots: make([]*fiber, 1)}
}

func (a *fiberArena) alloc(typ string) FiberID {
	var id FiberID
	if n := len(a.free); n > 0 {
		id = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		id = FiberID(len(a.slots))
		a.slots = append(a.slots, &fiber{})
	}
	f := a.slots[id]
	*f = fiber{inUse: true, typ: typ}
	return id
}

// get returns the fiber behind id. Dangling handles are engine bugs.
func (a *fiberArena) get(id FiberID) *fiber {
	if id <= NoFiber || int(id) >= len(a.slots) || !a.slots[id].inUse {
		panic(&errors.InvariantError{
			Op:     "core.fiberArena.get",
			Detail: fmt.Sprintf("dangling fiber handle %d", id),
		})
	}
	return a.slots[id]
}

// sweep keeps the tree reachable from root and releases every other slot.
// Kept fibers lose their alternate links: the tree they pointed into is gone.
func (a *fiberArena) sweep(root FiberID) int {
	marked := make([]bool, len(a.slots))
	stack := []FiberID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == NoFiber || marked[id] {
			continue
		}
		marked[id] = true
		f := a.get(id)
		f.alternate = NoFiber
		f.effect = EffectNone
		stack = append(stack, f.sibling, f.child)
	}

	freed := 0
	for id := FiberID(1); int(id) < len(a.slots); id++ {
		f := a.slots[id]
		if !f.inUse || marked[id] {
			continue
		}
		*f = fiber{}
		a.free = append(a.free, id)
		freed++
	}
	return freed
}

func (a *fiberArena) size() int {
	return len(a.slots) - 1
}

func (a *fiberArena) live() int {
	return a.size() - len(a.free)
}
