package core

// HostNode is an opaque handle to a node owned by the host renderer.
// The engine only stores, compares and passes handles back.
type HostNode any

// HostRenderer owns the real rendered tree. Every method is synchronous; a
// returned error aborts the current work step or commit.
type HostRenderer interface {
	// CreateNode creates a detached node. TextType nodes are seeded with
	// props.NodeValue; other types create an element with the given tag and
	// apply props as if updating from empty props.
	CreateNode(typ string, props *Props) (HostNode, error)
	// UpdateNode applies only the props that differ between prev and next.
	UpdateNode(node HostNode, prev, next *Props) error
	// AppendChild attaches child as the last child of parent.
	AppendChild(parent, child HostNode) error
	// RemoveNode detaches node (and its subtree) from the host tree.
	RemoveNode(node HostNode) error
}
