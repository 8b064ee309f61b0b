// Package dom provides a core.HostRenderer backed by an HTML document.
//
// The document is an x/net/html node tree. Element nodes are created with
// their atom when the tag is a known HTML element, text nodes carry their
// value in Data, and props map onto attributes:
//
//	ClassName   -> class        (written when changed)
//	InputType   -> type         (written once, when it first appears)
//	Value       -> value        (written whenever present)
//	Checked     -> checked      (boolean attribute, written whenever present)
//	Placeholder -> placeholder  (written when changed)
//
// Listeners are not attributes. The Document keeps a registry of bound
// listeners per node and routes events to them through Dispatch, addressed by
// a numeric node id. WithNodeIDs exposes that id as a data-rid attribute so an
// external client (see pkg/devserver) can target nodes.
//
// A Document is safe for concurrent use: HTML may be rendered from another
// goroutine while the engine commits.
package dom
