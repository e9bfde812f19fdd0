package tree

import (
	"fmt"

	"github.com/tsawler/strata/model"
)

// Heading is a heading block with its assigned level, title text, and
// pre-allocated slug, in document order.
type Heading struct {
	Block *model.Block
	Title string
	Level int
	Slug  string
}

// Build assembles the ordered block list into a frozen section tree.
//
// Headings are placed with an ancestor stack keyed by level: entries
// whose level is at least the incoming heading's level are popped, the
// heading attaches as a child of the new stack top (or as a new root),
// and is pushed. Children therefore always follow their parent in a
// pre-order traversal, and every node's level is strictly greater than
// its parent's.
//
// A second walk over the block sequence appends every non-heading block
// to the most recently seen heading's node. Blocks before the first
// heading are not part of the tree; they are returned as front matter
// so callers can still capture them.
//
// All roots are frozen before returning; the returned tree rejects any
// further mutation.
func Build(blocks []*model.Block, headings []Heading) (roots []*Node, frontMatter []*model.Block, err error) {
	nodeByBlock := make(map[*model.Block]*Node, len(headings))
	var stack []*Node

	for _, h := range headings {
		node := NewNode(h.Title, h.Level, h.Slug, h.Block.Pages)
		if h.Block.Number != nil {
			if err := node.SetNumbering(h.Block.Number); err != nil {
				return nil, nil, err
			}
		}

		for len(stack) > 0 && stack[len(stack)-1].Level() >= h.Level {
			stack = stack[:len(stack)-1]
		}

		if len(stack) > 0 {
			if err := stack[len(stack)-1].AddChild(node); err != nil {
				return nil, nil, fmt.Errorf("attach %q: %w", h.Title, err)
			}
		} else {
			roots = append(roots, node)
		}

		stack = append(stack, node)
		nodeByBlock[h.Block] = node
	}

	var current *Node
	for _, block := range blocks {
		if node, ok := nodeByBlock[block]; ok {
			current = node
			continue
		}
		if current == nil {
			frontMatter = append(frontMatter, block)
			continue
		}
		if err := current.AddBlock(block); err != nil {
			return nil, nil, fmt.Errorf("place block: %w", err)
		}
	}

	for _, root := range roots {
		root.Freeze()
	}
	return roots, frontMatter, nil
}
