package dom

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/go-drift/reactron/pkg/core"
	"github.com/go-drift/reactron/pkg/errors"
)

// IDAttr is the attribute that carries node ids when WithNodeIDs is set.
const IDAttr = "data-rid"

// DefaultContainerID is the id of the element the engine renders into.
const DefaultContainerID = "root"

const skeleton = `<!DOCTYPE html><html><head><meta charset="utf-8"><title>reactron</title></head><body><div id="root"></div></body></html>`

// Document is an HTML host tree.
type Document struct {
	mu        sync.RWMutex
	doc       *html.Node
	container *html.Node

	nextID    int64
	ids       map[*html.Node]int64
	nodes     map[int64]*html.Node
	listeners map[*html.Node]map[string]*core.Listener

	exposeIDs   bool
	containerID string
}

// Option configures a Document.
type Option func(*Document)

// WithNodeIDs writes every created element's id into a data-rid attribute.
func WithNodeIDs() Option {
	return func(d *Document) {
		d.exposeIDs = true
	}
}

// WithContainerID selects the element, by id attribute, that serves as the
// render container. The default is "root".
func WithContainerID(id string) Option {
	return func(d *Document) {
		d.containerID = id
	}
}

// NewDocument creates a document from the built-in page skeleton.
func NewDocument(opts ...Option) (*Document, error) {
	return ParseDocument(strings.NewReader(skeleton), opts...)
}

// ParseDocument creates a document from an HTML page. The page must contain
// an element whose id matches the container id.
func ParseDocument(r io.Reader, opts ...Option) (*Document, error) {
	d := &Document{
		ids:         make(map[*html.Node]int64),
		nodes:       make(map[int64]*html.Node),
		listeners:   make(map[*html.Node]map[string]*core.Listener),
		containerID: DefaultContainerID,
	}
	for _, opt := range opts {
		opt(d)
	}

	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse page: %w", err)
	}
	d.doc = root
	d.container = findElement(root, func(n *html.Node) bool {
		return attr(n, "id") == d.containerID
	})
	if d.container == nil {
		return nil, fmt.Errorf("dom: page has no element with id %q", d.containerID)
	}
	d.register(d.container)
	return d, nil
}

// Container returns the host node to pass to core.Context.Render.
func (d *Document) Container() core.HostNode {
	return d.container
}

// CreateNode implements core.HostRenderer.
func (d *Document) CreateNode(typ string, props *core.Props) (core.HostNode, error) {
	if props == nil {
		props = &core.Props{}
	}
	if typ == core.TextType {
		n := &html.Node{Type: html.TextNode, Data: props.NodeValue}
		d.mu.Lock()
		d.register(n)
		d.mu.Unlock()
		return n, nil
	}
	if typ == "" || strings.ContainsAny(typ, " <>/\"'=") {
		return nil, fmt.Errorf("dom: invalid tag name %q", typ)
	}

	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Lookup([]byte(typ)),
		Data:     typ,
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.register(n)
	if d.exposeIDs {
		setAttr(n, IDAttr, strconv.FormatInt(id, 10))
	}
	d.applyProps(n, nil, props)
	return n, nil
}

// UpdateNode implements core.HostRenderer.
func (d *Document) UpdateNode(node core.HostNode, prev, next *core.Props) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.lookup(node)
	if err != nil {
		return err
	}
	if next == nil {
		next = &core.Props{}
	}
	if n.Type == html.TextNode {
		if prev == nil || prev.NodeValue != next.NodeValue {
			n.Data = next.NodeValue
		}
		return nil
	}
	d.applyProps(n, prev, next)
	return nil
}

// AppendChild implements core.HostRenderer.
func (d *Document) AppendChild(parent, child core.HostNode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, err := d.lookup(parent)
	if err != nil {
		return err
	}
	c, err := d.lookup(child)
	if err != nil {
		return err
	}
	if p.Type == html.TextNode {
		return fmt.Errorf("dom: cannot append to a text node")
	}
	if c.Parent != nil {
		return fmt.Errorf("dom: <%s> is already attached", c.Data)
	}
	p.AppendChild(c)
	return nil
}

// RemoveNode implements core.HostRenderer. The node's subtree is detached
// with it and its listeners are released.
func (d *Document) RemoveNode(node core.HostNode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.lookup(node)
	if err != nil {
		return err
	}
	if n == d.container {
		return fmt.Errorf("dom: cannot remove the container")
	}
	if n.Parent == nil {
		return errors.ErrNotAttached
	}
	n.Parent.RemoveChild(n)
	d.forget(n)
	return nil
}

// NodeID returns the id assigned to node.
func (d *Document) NodeID(node core.HostNode) (int64, bool) {
	n, ok := node.(*html.Node)
	if !ok {
		return 0, false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.ids[n]
	return id, ok
}

// Node returns the node with the given id.
func (d *Document) Node(id int64) (*html.Node, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, ok := d.nodes[id]
	return n, ok
}

// Find returns the first attached node, in document order, for which match
// returns true.
func (d *Document) Find(match func(n *html.Node) bool) *html.Node {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return findElement(d.container, match)
}

// FindAll returns every attached element under the container for which
// match returns true, in document order.
func (d *Document) FindAll(match func(n *html.Node) bool) []*html.Node {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && match(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(d.container)
	return out
}

// ByClass matches elements whose class attribute contains class.
func ByClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return HasClass(n, class)
	}
}

// ByTag matches elements with the given tag name.
func ByTag(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Data == tag
	}
}

// HasClass reports whether n's class attribute contains class.
func HasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// Attr returns the value of n's attribute key, or "".
func Attr(n *html.Node, key string) string {
	return attr(n, key)
}

// TextContent concatenates the text nodes under n.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// RenderContainer writes the HTML of the container's children to w.
func (d *Document) RenderContainer(w io.Writer) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for c := d.container.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return err
		}
	}
	return nil
}

// RenderDocument writes the whole page to w.
func (d *Document) RenderDocument(w io.Writer) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return html.Render(w, d.doc)
}

// HTML returns the container's inner HTML.
func (d *Document) HTML() string {
	var buf bytes.Buffer
	if err := d.RenderContainer(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// register assigns an id to n. Callers hold mu.
func (d *Document) register(n *html.Node) int64 {
	d.nextID++
	d.ids[n] = d.nextID
	d.nodes[d.nextID] = n
	return d.nextID
}

// forget drops the ids and listeners of n's subtree. Callers hold mu.
func (d *Document) forget(n *html.Node) {
	if id, ok := d.ids[n]; ok {
		delete(d.ids, n)
		delete(d.nodes, id)
	}
	delete(d.listeners, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.forget(c)
	}
}

// lookup resolves a host handle created by this document. Callers hold mu.
func (d *Document) lookup(node core.HostNode) (*html.Node, error) {
	n, ok := node.(*html.Node)
	if !ok || n == nil {
		return nil, fmt.Errorf("%w: %T", errors.ErrUnknownNode, node)
	}
	if _, ok := d.ids[n]; !ok {
		return nil, fmt.Errorf("%w: <%s>", errors.ErrUnknownNode, n.Data)
	}
	return n, nil
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			return c
		}
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}
