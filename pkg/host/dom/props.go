package dom

import (
	"golang.org/x/net/html"

	"github.com/go-drift/reactron/pkg/core"
)

// applyProps writes the difference between prev and next onto element n.
// prev is nil when n was just created. Callers hold mu.
func (d *Document) applyProps(n *html.Node, prev, next *core.Props) {
	var old core.Props
	if prev != nil {
		old = *prev
	}

	if next.ClassName != old.ClassName {
		setOrRemove(n, "class", next.ClassName)
	}
	if old.InputType == "" && next.InputType != "" {
		setAttr(n, "type", next.InputType)
	}
	// A value that goes from set to empty must be cleared, or an input keeps
	// showing stale text.
	if next.Value != "" || old.Value != "" {
		setAttr(n, "value", next.Value)
	}
	if next.Checked != nil {
		if *next.Checked {
			setAttr(n, "checked", "")
		} else {
			removeAttr(n, "checked")
		}
	}
	if next.Placeholder != old.Placeholder {
		setOrRemove(n, "placeholder", next.Placeholder)
	}

	for _, eventType := range core.EventTypes {
		d.updateListener(n, eventType, prev.Listener(eventType), next.Listener(eventType))
	}
}

func (d *Document) updateListener(n *html.Node, eventType string, prev, next *core.Listener) {
	switch {
	case prev == nil && next != nil:
		d.addListener(n, eventType, next)
	case prev != nil && next == nil:
		d.removeListener(n, eventType)
	case prev != next:
		d.removeListener(n, eventType)
		d.addListener(n, eventType, next)
	}
}

func (d *Document) addListener(n *html.Node, eventType string, l *core.Listener) {
	bound := d.listeners[n]
	if bound == nil {
		bound = make(map[string]*core.Listener)
		d.listeners[n] = bound
	}
	bound[eventType] = l
}

func (d *Document) removeListener(n *html.Node, eventType string) {
	bound := d.listeners[n]
	delete(bound, eventType)
	if len(bound) == 0 {
		delete(d.listeners, n)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

func setOrRemove(n *html.Node, key, val string) {
	if val == "" {
		removeAttr(n, key)
		return
	}
	setAttr(n, key, val)
}
