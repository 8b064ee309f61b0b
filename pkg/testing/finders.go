package testing

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/go-drift/reactron/pkg/host/dom"
)

// Finder locates elements in the rendered document.
type Finder struct {
	// Match reports whether an element node matches.
	Match func(n *html.Node) bool
	desc  string
}

// Description returns a human-readable description for error messages.
func (f Finder) Description() string {
	return f.desc
}

// ByClass finds elements carrying class.
func ByClass(class string) Finder {
	return Finder{Match: dom.ByClass(class), desc: fmt.Sprintf("class %q", class)}
}

// ByTag finds elements with the given tag name.
func ByTag(tag string) Finder {
	return Finder{Match: dom.ByTag(tag), desc: fmt.Sprintf("tag <%s>", tag)}
}

// ByText finds elements whose own text children read exactly text.
func ByText(text string) Finder {
	return Finder{
		Match: func(n *html.Node) bool {
			var sb strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					sb.WriteString(c.Data)
				}
			}
			return sb.String() == text
		},
		desc: fmt.Sprintf("text %q", text),
	}
}

// ByAttr finds elements whose attribute key equals val.
func ByAttr(key, val string) Finder {
	return Finder{
		Match: func(n *html.Node) bool {
			return dom.Attr(n, key) == val
		},
		desc: fmt.Sprintf("[%s=%q]", key, val),
	}
}

// ByPlaceholder finds inputs by placeholder.
func ByPlaceholder(placeholder string) Finder {
	f := ByAttr("placeholder", placeholder)
	f.desc = fmt.Sprintf("placeholder %q", placeholder)
	return f
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	nodes  []*html.Node
	finder Finder
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() *html.Node {
	if len(r.nodes) == 0 {
		panic(fmt.Sprintf("Finder found no elements: %s", r.finder.Description()))
	}
	return r.nodes[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() *html.Node {
	if len(r.nodes) == 0 {
		return nil
	}
	return r.nodes[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) *html.Node {
	if index < 0 || index >= len(r.nodes) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.nodes), r.finder.Description()))
	}
	return r.nodes[index]
}

// All returns all matches in document order.
func (r FinderResult) All() []*html.Node {
	return r.nodes
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.nodes)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.nodes) > 0
}

// Text returns the text content of the first match, or "" if none.
func (r FinderResult) Text() string {
	if n := r.FirstOrNil(); n != nil {
		return dom.TextContent(n)
	}
	return ""
}

// Attr returns an attribute of the first match, or "" if none.
func (r FinderResult) Attr(key string) string {
	if n := r.FirstOrNil(); n != nil {
		return dom.Attr(n, key)
	}
	return ""
}

// Texts returns the text content of every match.
func (r FinderResult) Texts() []string {
	out := make([]string, len(r.nodes))
	for i, n := range r.nodes {
		out[i] = dom.TextContent(n)
	}
	return out
}
