package dom

import (
	"fmt"
	"sort"

	"golang.org/x/net/html"

	"github.com/go-drift/reactron/pkg/core"
	"github.com/go-drift/reactron/pkg/errors"
)

// Dispatch delivers ev to the listener bound for ev.Type on the node with
// the given id. It reports whether a listener ran.
//
// A change event first writes ev.Value (or ev.Checked for checkboxes) onto the
// node, the way a browser updates an input before firing change. The listener
// runs without the document lock held, so it may call state setters freely.
func (d *Document) Dispatch(id int64, ev core.Event) (bool, error) {
	d.mu.Lock()
	n, ok := d.nodes[id]
	if !ok {
		d.mu.Unlock()
		return false, fmt.Errorf("%w: id %d", errors.ErrUnknownNode, id)
	}
	if ev.Type == core.EventChange && n.Type == html.ElementNode {
		if attr(n, "type") == "checkbox" {
			if ev.Checked {
				setAttr(n, "checked", "")
			} else {
				removeAttr(n, "checked")
			}
		} else {
			setAttr(n, "value", ev.Value)
		}
	}
	l := d.listeners[n][ev.Type]
	d.mu.Unlock()

	if l == nil {
		return false, nil
	}
	l.Invoke(ev)
	return true, nil
}

// DispatchTo is Dispatch addressed by node.
func (d *Document) DispatchTo(node *html.Node, ev core.Event) (bool, error) {
	id, ok := d.NodeID(node)
	if !ok {
		return false, errors.ErrUnknownNode
	}
	return d.Dispatch(id, ev)
}

// Listeners returns the event types bound on node, sorted.
func (d *Document) Listeners(node *html.Node) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []string
	for eventType := range d.listeners[node] {
		out = append(out, eventType)
	}
	sort.Strings(out)
	return out
}

// ListenerCount returns the number of bound listeners in the document.
func (d *Document) ListenerCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	total := 0
	for _, bound := range d.listeners {
		total += len(bound)
	}
	return total
}

// Checked reports whether n carries the checked attribute.
func Checked(n *html.Node) bool {
	return hasAttr(n, "checked")
}
