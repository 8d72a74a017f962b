package menu

import (
	"sort"
	"strings"
)

// BreadcrumbSeparator joins ancestor names in an entry's display name
const BreadcrumbSeparator = " / "

// Node is a menu in the navigation tree
type Node struct {
	ID         uint   `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Path       string `json:"path" yaml:"path"`
	Icon       string `json:"icon,omitempty" yaml:"icon,omitempty"`
	OrderIndex int    `json:"order_index" yaml:"order_index"`
	ParentID   *uint  `json:"parent_id" yaml:"parent_id,omitempty"`
	IsActive   bool   `json:"is_active" yaml:"is_active"`
	Children   []Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// Entry is a menu in flattened, depth-first order
type Entry struct {
	ID          uint
	Name        string
	Path        string
	DisplayName string
	Depth       int
}

// Indented returns the entry name prefixed with tree guides for its depth
func (e Entry) Indented() string {
	if e.Depth == 0 {
		return e.Name
	}
	return strings.Repeat("  ", e.Depth) + "└─ " + e.Name
}

// Flatten walks the tree depth-first, parents before children, keeping
// sibling order.
func Flatten(nodes []Node) []Entry {
	type frame struct {
		node   *Node
		depth  int
		parent string
	}

	result := make([]Entry, 0, len(nodes))
	stack := make([]frame, 0, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: &nodes[i]})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		display := f.node.Name
		if f.parent != "" {
			display = f.parent + BreadcrumbSeparator + f.node.Name
		}
		result = append(result, Entry{
			ID:          f.node.ID,
			Name:        f.node.Name,
			Path:        f.node.Path,
			DisplayName: display,
			Depth:       f.depth,
		})

		children := f.node.Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: &children[i], depth: f.depth + 1, parent: display})
		}
	}
	return result
}

// Find returns the node with the given id anywhere in the tree
func Find(nodes []Node, id uint) (*Node, bool) {
	for i := range nodes {
		if nodes[i].ID == id {
			return &nodes[i], true
		}
		if n, ok := Find(nodes[i].Children, id); ok {
			return n, true
		}
	}
	return nil, false
}

// BuildTree assembles a tree from menus linked by ParentID. Siblings are
// ordered by OrderIndex, then ID. Menus whose parent is not in the list are
// treated as roots.
func BuildTree(flat []Node) []Node {
	known := make(map[uint]bool, len(flat))
	for _, n := range flat {
		known[n.ID] = true
	}

	byParent := make(map[uint][]Node)
	var roots []Node
	for _, n := range flat {
		n.Children = nil
		if n.ParentID == nil || !known[*n.ParentID] || *n.ParentID == n.ID {
			roots = append(roots, n)
			continue
		}
		byParent[*n.ParentID] = append(byParent[*n.ParentID], n)
	}

	visited := make(map[uint]bool, len(flat))
	var attach func(level []Node) []Node
	attach = func(level []Node) []Node {
		sortSiblings(level)
		out := make([]Node, 0, len(level))
		for _, n := range level {
			if visited[n.ID] {
				continue
			}
			visited[n.ID] = true
			if kids, ok := byParent[n.ID]; ok {
				n.Children = attach(kids)
			}
			out = append(out, n)
		}
		return out
	}
	tree := attach(roots)

	// parent cycles leave menus unreachable from any root
	var stray []Node
	for _, n := range flat {
		if !visited[n.ID] {
			n.Children = nil
			stray = append(stray, n)
		}
	}
	if len(stray) > 0 {
		tree = append(tree, attach(stray)...)
	}
	return tree
}

func sortSiblings(nodes []Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].OrderIndex != nodes[j].OrderIndex {
			return nodes[i].OrderIndex < nodes[j].OrderIndex
		}
		return nodes[i].ID < nodes[j].ID
	})
}
