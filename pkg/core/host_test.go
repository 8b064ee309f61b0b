package core

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/go-drift/reactron/pkg/errors"
)

// fakeNode is a host node recorded by fakeHost.
type fakeNode struct {
	id       int
	typ      string
	props    Props
	text     string
	parent   *fakeNode
	children []*fakeNode
}

func (n *fakeNode) String() string {
	if n.typ == TextType {
		return fmt.Sprintf("%q", n.text)
	}
	var sb strings.Builder
	sb.WriteString("<" + n.typ)
	if n.props.ClassName != "" {
		sb.WriteString(" class=" + n.props.ClassName)
	}
	sb.WriteString(">")
	for _, child := range n.children {
		sb.WriteString(child.String())
	}
	sb.WriteString("</" + n.typ + ">")
	return sb.String()
}

// fakeHost records every host call and can be told to fail specific ones.
type fakeHost struct {
	nextID int
	calls  []string

	// failCreate/failAppend/failUpdate/failRemove fail the n-th call (1-based)
	// of that operation from now on; zero disables.
	failCreate, failAppend, failUpdate, failRemove int
	creates, appends, updates, removes             int
}

var errHostRefused = errors.New("host refused")

func (h *fakeHost) container() *fakeNode {
	h.nextID++
	return &fakeNode{id: h.nextID, typ: "root"}
}

func (h *fakeHost) CreateNode(typ string, props *Props) (HostNode, error) {
	h.creates++
	if h.failCreate != 0 && h.creates == h.failCreate {
		return nil, errHostRefused
	}
	h.nextID++
	n := &fakeNode{id: h.nextID, typ: typ, props: *props}
	if typ == TextType {
		n.text = props.NodeValue
	}
	h.calls = append(h.calls, "create "+n.label())
	return n, nil
}

func (h *fakeHost) UpdateNode(node HostNode, prev, next *Props) error {
	h.updates++
	if h.failUpdate != 0 && h.updates == h.failUpdate {
		return errHostRefused
	}
	n := node.(*fakeNode)
	before := n.label()
	n.props = *next
	if n.typ == TextType {
		n.text = next.NodeValue
	}
	h.calls = append(h.calls, "update "+before+" -> "+n.label())
	return nil
}

func (h *fakeHost) AppendChild(parent, child HostNode) error {
	h.appends++
	if h.failAppend != 0 && h.appends == h.failAppend {
		return errHostRefused
	}
	p, c := parent.(*fakeNode), child.(*fakeNode)
	if c.parent != nil {
		return fmt.Errorf("node %s already attached", c.label())
	}
	c.parent = p
	p.children = append(p.children, c)
	h.calls = append(h.calls, "append "+c.label()+" to "+p.label())
	return nil
}

func (h *fakeHost) RemoveNode(node HostNode) error {
	h.removes++
	if h.failRemove != 0 && h.removes == h.failRemove {
		return errHostRefused
	}
	n := node.(*fakeNode)
	if n.parent == nil {
		return errors.ErrNotAttached
	}
	p := n.parent
	p.children = slices.DeleteFunc(p.children, func(c *fakeNode) bool { return c == n })
	n.parent = nil
	h.calls = append(h.calls, "remove "+n.label())
	return nil
}

func (n *fakeNode) label() string {
	if n.typ == TextType {
		return fmt.Sprintf("%q", n.text)
	}
	if n.props.ClassName != "" {
		return n.typ + "." + n.props.ClassName
	}
	return n.typ
}

// newTestContext returns a context on a fresh fakeHost and its container.
func newTestContext(t *testing.T) (*Context, *fakeHost, *fakeNode) {
	t.Helper()
	host := &fakeHost{}
	return NewContext(host), host, host.container()
}

// renderSync renders el into container and runs the work loop to completion.
func renderSync(t *testing.T, ctx *Context, el *Element, container *fakeNode) {
	t.Helper()
	if err := ctx.Render(el, container); err != nil {
		t.Fatalf("Render: %v", err)
	}
	runSync(t, ctx)
}

func runSync(t *testing.T, ctx *Context) {
	t.Helper()
	if err := ctx.RunWorkLoop(nil); err != nil {
		t.Fatalf("RunWorkLoop: %v", err)
	}
	if state := ctx.State(); state != Idle {
		t.Fatalf("state after run = %s, want idle", state)
	}
}

// effectSummary renders commit records as "tag label" strings.
func effectSummary(records []EffectRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		label := r.Type
		if r.Type == TextType && r.Props != nil {
			label = fmt.Sprintf("%q", r.Props.NodeValue)
		}
		out = append(out, r.Tag.String()+" "+label)
	}
	return out
}
