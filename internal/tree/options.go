// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package tree

import (
	"github.com/google/uuid"

	"shopadmin/internal/models"
)

// ParentOption is one entry in the parent-category picker: the full
// hierarchy in display order with depth for indentation. Disabled entries
// stay visible so the hierarchy context is preserved, but selecting them
// would create a cycle and must be prevented.
type ParentOption struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Level    int       `json:"level"`
	Disabled bool      `json:"disabled"`
}

// ParentOptions builds the selectable-parent list for a category form.
// When excludeID is set (editing an existing category), that category and
// every one of its descendants are marked disabled: a node may not become
// its own parent, directly or transitively. An empty record list yields an
// empty option list, never an error.
func ParentOptions(records []models.Category, excludeID *uuid.UUID) []ParentOption {
	forest := Build(records, Options{SortBy: BySortOrder})

	disabled := make(map[uuid.UUID]bool)
	if excludeID != nil {
		if target := Find(forest, *excludeID); target != nil {
			disabled[target.Key] = true
			for _, d := range Descendants(target) {
				disabled[d.Key] = true
			}
		}
	}

	var opts []ParentOption
	var walk func(nodes []*Node, level int)
	walk = func(nodes []*Node, level int) {
		for _, n := range nodes {
			opts = append(opts, ParentOption{
				ID:       n.Key,
				Name:     n.Category.Name,
				Level:    level,
				Disabled: disabled[n.Key],
			})
			walk(n.Children, level+1)
		}
	}
	walk(forest, 0)
	return opts
}
