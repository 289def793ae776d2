// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package tree

import (
	"github.com/google/uuid"

	"shopadmin/internal/models"
)

// Expansion is the set of category ids currently expanded in a tree view.
// It is plain owned state passed into VisibleRows, reset whenever the
// caller decides, never persisted.
type Expansion map[uuid.UUID]struct{}

// NewExpansion returns an empty expansion set.
func NewExpansion() Expansion {
	return make(Expansion)
}

// Has reports whether the id is expanded.
func (e Expansion) Has(id uuid.UUID) bool {
	_, ok := e[id]
	return ok
}

// Toggle flips the expansion state of one id.
func (e Expansion) Toggle(id uuid.UUID) {
	if e.Has(id) {
		delete(e, id)
	} else {
		e[id] = struct{}{}
	}
}

// ExpandAll marks every given category as expanded.
func (e Expansion) ExpandAll(records []models.Category) {
	for i := range records {
		e[records[i].ID] = struct{}{}
	}
}

// CollapseAll empties the set.
func (e Expansion) CollapseAll() {
	for id := range e {
		delete(e, id)
	}
}

// Row is one display row of the category tree table. Level is the depth
// in the built forest (0 for roots), independent of the stored level field.
type Row struct {
	models.Category
	RowLevel    int        `json:"row_level"`
	HasChildren bool       `json:"has_children"`
	ParentKey   *uuid.UUID `json:"parent_key"`
}

// VisibleRows flattens the forest pre-order into display rows. A node's
// children are emitted, one level deeper, only when the node is expanded
// and actually has children; collapsed subtrees stay in the forest and
// reappear without a rebuild once expanded.
func VisibleRows(nodes []*Node, expanded Expansion) []Row {
	var rows []Row
	var walk func(nodes []*Node, level int, parentKey *uuid.UUID)
	walk = func(nodes []*Node, level int, parentKey *uuid.UUID) {
		for _, n := range nodes {
			rows = append(rows, Row{
				Category:    n.Category,
				RowLevel:    level,
				HasChildren: n.HasChildren(),
				ParentKey:   parentKey,
			})
			if n.HasChildren() && expanded.Has(n.Key) {
				key := n.Key
				walk(n.Children, level+1, &key)
			}
		}
	}
	walk(nodes, 0, nil)
	return rows
}
