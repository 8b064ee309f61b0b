package core

// maxTreeDepth limits recursion depth when serializing fiber trees.
const maxTreeDepth = 500

// TreeNode is a serializable view of one committed fiber.
type TreeNode struct {
	ID        FiberID    `json:"id"`
	Type      string     `json:"type"`
	Component string     `json:"component,omitempty"`
	Props     *Props     `json:"props,omitempty"`
	Listeners []string   `json:"listeners,omitempty"`
	HasHost   bool       `json:"hasHost"`
	Hooks     []any      `json:"hooks,omitempty"`
	Children  []TreeNode `json:"children,omitempty"`
}

// Snapshot returns the committed fiber tree, or nil before the first commit.
func (c *Context) Snapshot() *TreeNode {
	if c.currentRoot == NoFiber {
		return nil
	}
	node := c.serializeFiber(c.currentRoot, 0)
	return &node
}

func (c *Context) serializeFiber(id FiberID, depth int) TreeNode {
	f := c.arena.get(id)
	node := TreeNode{
		ID:        id,
		Type:      f.typ,
		Component: f.name,
		HasHost:   f.host != nil,
	}
	if !f.isFunctional() && !f.isRoot() {
		node.Props = f.props
		node.Listeners = f.props.BoundEvents()
	}
	for _, cell := range f.hooks {
		node.Hooks = append(node.Hooks, cell.value)
	}
	if depth >= maxTreeDepth {
		return node
	}
	for child := f.child; child != NoFiber; child = c.arena.get(child).sibling {
		node.Children = append(node.Children, c.serializeFiber(child, depth+1))
	}
	return node
}

// Walk visits the committed tree depth-first in pre-order until visit
// returns false.
func (c *Context) Walk(visit func(node TreeNode, depth int) bool) {
	root := c.Snapshot()
	if root == nil {
		return
	}
	var walk func(n TreeNode, depth int) bool
	walk = func(n TreeNode, depth int) bool {
		if !visit(n, depth) {
			return false
		}
		for _, child := range n.Children {
			if !walk(child, depth+1) {
				return false
			}
		}
		return true
	}
	walk(*root, 0)
}
