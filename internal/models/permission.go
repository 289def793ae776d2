// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Permission is the capability set derived from a user's role. It is
// computed fresh on every check and never mutated in place. The UI uses
// it to hide controls; the real authorization check is the middleware
// gate on the server route.
type Permission struct {
	CanCreateCategory bool `json:"can_create_category"`
	CanEditCategory   bool `json:"can_edit_category"`
	CanDeleteCategory bool `json:"can_delete_category"`
	CanViewCategory   bool `json:"can_view_category"`

	CanCreateProduct bool `json:"can_create_product"`
	CanEditProduct   bool `json:"can_edit_product"`
	CanDeleteProduct bool `json:"can_delete_product"`
	CanViewProduct   bool `json:"can_view_product"`

	CanViewContacts   bool `json:"can_view_contacts"`
	CanManageContacts bool `json:"can_manage_contacts"`

	CanManageUsers  bool `json:"can_manage_users"`
	CanEditSettings bool `json:"can_edit_settings"`
}

// PermissionsFor maps a role to its capability set. The mapping is total
// over the declared roles; an unrecognized role gets the zero value,
// which grants nothing.
func PermissionsFor(role Role) Permission {
	switch role {
	case RoleAdmin:
		return Permission{
			CanCreateCategory: true,
			CanEditCategory:   true,
			CanDeleteCategory: true,
			CanViewCategory:   true,
			CanCreateProduct:  true,
			CanEditProduct:    true,
			CanDeleteProduct:  true,
			CanViewProduct:    true,
			CanViewContacts:   true,
			CanManageContacts: true,
			CanManageUsers:    true,
			CanEditSettings:   true,
		}
	case RoleManager:
		return Permission{
			CanCreateCategory: true,
			CanEditCategory:   true,
			CanViewCategory:   true,
			CanCreateProduct:  true,
			CanEditProduct:    true,
			CanViewProduct:    true,
			CanViewContacts:   true,
			CanManageContacts: true,
		}
	case RoleStaff:
		return Permission{
			CanViewCategory: true,
			CanViewProduct:  true,
			CanViewContacts: true,
		}
	default:
		return Permission{}
	}
}
