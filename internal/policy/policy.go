// Package policy holds the authorization rules as pure functions over the
// actor and the target resource. Handlers must not re-implement role checks
// inline; they call these predicates.
package policy

import "github.com/HenryPajuri/interparents2-sub000/internal/model"

// IsPrivileged reports whether the actor holds an organisation-wide role.
func IsPrivileged(actor *model.Account) bool {
	if actor == nil {
		return false
	}
	return actor.Role == model.RoleAdmin || actor.Role == model.RoleExecutive
}

// CanReadEvent allows public events for everyone, everything for
// admin/executive, and private events for their creator.
func CanReadEvent(actor *model.Account, event model.Event) bool {
	if event.IsPublic {
		return true
	}
	if IsPrivileged(actor) {
		return true
	}
	return actor != nil && actor.ID == event.CreatedBy
}

// CanEditEvent governs both update and delete.
func CanEditEvent(actor *model.Account, event model.Event) bool {
	if actor == nil {
		return false
	}
	return IsPrivileged(actor) || actor.ID == event.CreatedBy
}

// CanManageCommunications governs create/update/delete; reads are public.
func CanManageCommunications(actor *model.Account) bool {
	return IsPrivileged(actor)
}

// CanViewUsers governs listing and viewing accounts.
func CanViewUsers(actor *model.Account) bool {
	return IsPrivileged(actor)
}

// CanManageUsers governs create/update/delete/role-change. Stricter than the
// other resources: admin only.
func CanManageUsers(actor *model.Account) bool {
	return actor != nil && actor.Role == model.RoleAdmin
}

// CanCreateAdminAccount restricts the admin role to accounts minted by an
// admin. Kept separate from CanManageUsers so the rules can diverge.
func CanCreateAdminAccount(actor *model.Account) bool {
	return actor != nil && actor.Role == model.RoleAdmin
}

// CanDeleteAccount forbids self-deletion regardless of role.
func CanDeleteAccount(actor *model.Account, target model.Account) bool {
	if !CanManageUsers(actor) {
		return false
	}
	return actor.ID != target.ID
}

// CanChangeRole forbids changing one's own role; another admin must do it.
func CanChangeRole(actor *model.Account, target model.Account) bool {
	if !CanManageUsers(actor) {
		return false
	}
	return actor.ID != target.ID
}
