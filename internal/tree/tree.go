// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package tree builds ephemeral category forests from the flat category
// list. Forests are constructed per request and discarded; they carry no
// identity beyond mirroring the category ids that produced them.
package tree

import (
	"sort"

	"github.com/google/uuid"

	"shopadmin/internal/models"
)

// Node wraps one category in a built forest. Parent is a non-owning
// back-reference used for upward traversal only.
type Node struct {
	Key      uuid.UUID
	Category models.Category
	Children []*Node
	Parent   *Node

	// Cyclic marks a node that was unreachable from every true root
	// because its parent chain loops. Such nodes are promoted to roots
	// instead of being dropped, so the forest always contains every
	// input record exactly once.
	Cyclic bool
}

// HasChildren reports whether the node has at least one child.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// Options controls forest construction.
type Options struct {
	// SortBy orders every sibling list (roots included) ascending by the
	// comparator. The sort is stable: ties keep input order. Nil keeps
	// input order everywhere.
	SortBy func(a, b *models.Category) bool
}

// BySortOrder is the standard comparator for catalog display order.
func BySortOrder(a, b *models.Category) bool {
	return a.SortOrder < b.SortOrder
}

// ByName orders siblings alphabetically.
func ByName(a, b *models.Category) bool {
	return a.Name < b.Name
}

// Build converts a flat category list into a forest of root nodes in two
// passes: the first indexes every record by id, the second links each node
// under its parent when the parent id resolves within the same list. A
// record whose parent id does not resolve is promoted to a root rather
// than rejected. Records caught in a parent cycle (mutually referencing
// nodes with no path to a true root) are detached and promoted to roots
// flagged Cyclic, so no input record is ever silently dropped.
func Build(records []models.Category, opts Options) []*Node {
	index := make(map[uuid.UUID]*Node, len(records))
	nodes := make([]*Node, 0, len(records))

	for i := range records {
		n := &Node{Key: records[i].ID, Category: records[i]}
		index[n.Key] = n
		nodes = append(nodes, n)
	}

	var roots []*Node
	for _, n := range nodes {
		pid := n.Category.ParentID
		if pid != nil {
			if parent, ok := index[*pid]; ok && parent != n {
				parent.Children = append(parent.Children, n)
				n.Parent = parent
				continue
			}
		}
		roots = append(roots, n)
	}

	roots = append(roots, promoteCyclic(nodes, roots)...)

	if opts.SortBy != nil {
		sortForest(roots, opts.SortBy)
	}
	return roots
}

// promoteCyclic finds nodes unreachable from any root (their parent chain
// loops back on itself), detaches one entry node per cycle from its parent,
// and returns the promoted nodes in input order.
func promoteCyclic(nodes, roots []*Node) []*Node {
	visited := make(map[uuid.UUID]bool, len(nodes))
	for _, r := range roots {
		markSubtree(r, visited)
	}

	var promoted []*Node
	for _, n := range nodes {
		if visited[n.Key] {
			continue
		}
		detach(n)
		n.Cyclic = true
		promoted = append(promoted, n)
		markSubtree(n, visited)
	}
	return promoted
}

// markSubtree records every key in the subtree rooted at n.
func markSubtree(n *Node, visited map[uuid.UUID]bool) {
	if visited[n.Key] {
		return
	}
	visited[n.Key] = true
	for _, c := range n.Children {
		markSubtree(c, visited)
	}
}

// detach removes n from its parent's children list and clears the
// back-reference.
func detach(n *Node) {
	p := n.Parent
	if p == nil {
		return
	}
	for i, c := range p.Children {
		if c == n {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			break
		}
	}
	n.Parent = nil
}

// sortForest applies the comparator to every sibling list, depth-first.
func sortForest(nodes []*Node, less func(a, b *models.Category) bool) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return less(&nodes[i].Category, &nodes[j].Category)
	})
	for _, n := range nodes {
		if len(n.Children) > 0 {
			sortForest(n.Children, less)
		}
	}
}

// Flatten walks the forest depth-first pre-order and returns every
// category in display order.
func Flatten(nodes []*Node) []models.Category {
	var out []models.Category
	var walk func(n *Node)
	walk = func(n *Node) {
		out = append(out, n.Category)
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return out
}

// Descendants returns every transitive child of n in pre-order, excluding
// n itself. It does not mutate the tree and is safe to call repeatedly.
func Descendants(n *Node) []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			out = append(out, c)
			walk(c)
		}
	}
	walk(n)
	return out
}

// Find locates a node by key anywhere in the forest. Returns nil when the
// key is absent.
func Find(nodes []*Node, key uuid.UUID) *Node {
	for _, n := range nodes {
		if n.Key == key {
			return n
		}
		if found := Find(n.Children, key); found != nil {
			return found
		}
	}
	return nil
}

// Path returns the nodes from the root down to n, inclusive. Used for
// breadcrumbs.
func Path(n *Node) []*Node {
	var path []*Node
	for cur := n; cur != nil; cur = cur.Parent {
		path = append([]*Node{cur}, path...)
	}
	return path
}
