package testing

import (
	"errors"
	"sync"

	"github.com/go-drift/reactron/pkg/core"
)

// ErrInjected is the error a FaultyHost returns for an injected failure.
var ErrInjected = errors.New("injected host failure")

// HostOp names a HostRenderer method.
type HostOp string

const (
	OpCreate HostOp = "create"
	OpUpdate HostOp = "update"
	OpAppend HostOp = "append"
	OpRemove HostOp = "remove"
)

// FaultyHost wraps a HostRenderer and fails selected calls with ErrInjected.
// Failed calls never reach the wrapped host.
type FaultyHost struct {
	inner core.HostRenderer

	mu       sync.Mutex
	failures map[HostOp]int
	calls    map[HostOp]int
}

// NewFaultyHost wraps inner.
func NewFaultyHost(inner core.HostRenderer) *FaultyHost {
	return &FaultyHost{
		inner:    inner,
		failures: make(map[HostOp]int),
		calls:    make(map[HostOp]int),
	}
}

// FailNext makes the next n calls of op fail.
func (h *FaultyHost) FailNext(op HostOp, n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures[op] = n
}

// Calls returns how many times op was called, including failed calls.
func (h *FaultyHost) Calls(op HostOp) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls[op]
}

func (h *FaultyHost) check(op HostOp) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls[op]++
	if h.failures[op] > 0 {
		h.failures[op]--
		return ErrInjected
	}
	return nil
}

// CreateNode implements core.HostRenderer.
func (h *FaultyHost) CreateNode(typ string, props *core.Props) (core.HostNode, error) {
	if err := h.check(OpCreate); err != nil {
		return nil, err
	}
	return h.inner.CreateNode(typ, props)
}

// UpdateNode implements core.HostRenderer.
func (h *FaultyHost) UpdateNode(node core.HostNode, prev, next *core.Props) error {
	if err := h.check(OpUpdate); err != nil {
		return err
	}
	return h.inner.UpdateNode(node, prev, next)
}

// AppendChild implements core.HostRenderer.
func (h *FaultyHost) AppendChild(parent, child core.HostNode) error {
	if err := h.check(OpAppend); err != nil {
		return err
	}
	return h.inner.AppendChild(parent, child)
}

// RemoveNode implements core.HostRenderer.
func (h *FaultyHost) RemoveNode(node core.HostNode) error {
	if err := h.check(OpRemove); err != nil {
		return err
	}
	return h.inner.RemoveNode(node)
}
