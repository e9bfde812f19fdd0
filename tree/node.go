// Package tree builds the hierarchical section tree from classified
// blocks and enforces its single consistency guarantee: once a root is
// frozen, the node and all descendants reject further mutation.
package tree

import (
	"errors"
	"fmt"

	"github.com/tsawler/strata/model"
)

// ErrFrozen is returned by mutation attempts on a frozen node.
var ErrFrozen = errors.New("section node is frozen")

// Node is a section in the document tree. It owns its children and
// blocks exclusively. Nodes are mutable while the tree is under
// construction and immutable after Freeze.
type Node struct {
	title  string
	level  int
	slug   string
	pages  model.PageSpan
	blocks []*model.Block
	childs []*Node
	meta   *model.NumberingMeta
	frozen bool
}

// NewNode creates an unfrozen section node. Level must be at least 1.
func NewNode(title string, level int, slug string, pages model.PageSpan) *Node {
	return &Node{title: title, level: level, slug: slug, pages: pages}
}

// Title returns the section title.
func (n *Node) Title() string { return n.title }

// Level returns the heading level, 1-based.
func (n *Node) Level() int { return n.level }

// Slug returns the section's allocated slug.
func (n *Node) Slug() string { return n.slug }

// Pages returns the section's page span.
func (n *Node) Pages() model.PageSpan { return n.pages }

// Blocks returns the section's content blocks in document order.
func (n *Node) Blocks() []*model.Block { return n.blocks }

// Children returns the section's child nodes in document order.
func (n *Node) Children() []*Node { return n.childs }

// Numbering returns the numbering metadata attached to the section's
// heading, or nil.
func (n *Node) Numbering() *model.NumberingMeta { return n.meta }

// Frozen reports whether the node has been frozen.
func (n *Node) Frozen() bool { return n.frozen }

// SetNumbering attaches numbering metadata. Fails on a frozen node.
func (n *Node) SetNumbering(meta *model.NumberingMeta) error {
	if n.frozen {
		return fmt.Errorf("set numbering on %q: %w", n.title, ErrFrozen)
	}
	n.meta = meta
	return nil
}

// AddChild appends a child section. Fails on a frozen node.
func (n *Node) AddChild(child *Node) error {
	if n.frozen {
		return fmt.Errorf("add child to %q: %w", n.title, ErrFrozen)
	}
	n.childs = append(n.childs, child)
	return nil
}

// AddBlock appends a content block. Fails on a frozen node.
func (n *Node) AddBlock(block *model.Block) error {
	if n.frozen {
		return fmt.Errorf("add block to %q: %w", n.title, ErrFrozen)
	}
	n.blocks = append(n.blocks, block)
	return nil
}

// Freeze makes the node and all descendants immutable. Freezing is
// irreversible for the lifetime of the tree.
func (n *Node) Freeze() {
	n.frozen = true
	for _, child := range n.childs {
		child.Freeze()
	}
}

// Walk visits the node and its descendants in pre-order: every parent
// strictly before its children.
func (n *Node) Walk(visit func(*Node)) {
	visit(n)
	for _, child := range n.childs {
		child.Walk(visit)
	}
}

// Flatten returns all nodes of the given roots in pre-order.
func Flatten(roots []*Node) []*Node {
	var out []*Node
	for _, root := range roots {
		root.Walk(func(n *Node) {
			out = append(out, n)
		})
	}
	return out
}
