package policy

import (
	"testing"

	"github.com/HenryPajuri/interparents2-sub000/internal/model"
)

var (
	admin     = &model.Account{ID: "admin-1", Role: model.RoleAdmin}
	executive = &model.Account{ID: "exec-1", Role: model.RoleExecutive}
	creator   = &model.Account{ID: "member-1", Role: model.RoleMember}
	other     = &model.Account{ID: "member-2", Role: model.RoleMember}
)

func TestCanReadEvent(t *testing.T) {
	public := model.Event{CreatedBy: "member-1", IsPublic: true}
	private := model.Event{CreatedBy: "member-1", IsPublic: false}

	if !CanReadEvent(nil, public) {
		t.Fatalf("anonymous should read public events")
	}
	if CanReadEvent(nil, private) {
		t.Fatalf("anonymous should not read private events")
	}
	if CanReadEvent(other, private) {
		t.Fatalf("unrelated member should not read private events")
	}
	if !CanReadEvent(creator, private) {
		t.Fatalf("creator should read own private event")
	}
	if !CanReadEvent(admin, private) || !CanReadEvent(executive, private) {
		t.Fatalf("admin and executive should read private events")
	}
}

func TestCanEditEvent(t *testing.T) {
	event := model.Event{CreatedBy: "member-1", IsPublic: true}

	if CanEditEvent(nil, event) {
		t.Fatalf("anonymous must not edit")
	}
	if CanEditEvent(other, event) {
		t.Fatalf("member B must not edit member A's event")
	}
	if !CanEditEvent(creator, event) {
		t.Fatalf("creator should edit own event")
	}
	if !CanEditEvent(admin, event) || !CanEditEvent(executive, event) {
		t.Fatalf("admin and executive should edit any event")
	}
}

func TestCanManageCommunications(t *testing.T) {
	if CanManageCommunications(nil) || CanManageCommunications(creator) {
		t.Fatalf("only privileged roles manage communications")
	}
	if !CanManageCommunications(admin) || !CanManageCommunications(executive) {
		t.Fatalf("admin and executive manage communications")
	}
}

func TestUserManagementAsymmetry(t *testing.T) {
	// Executives can view accounts but only admins mutate them.
	if !CanViewUsers(executive) || !CanViewUsers(admin) {
		t.Fatalf("privileged roles view users")
	}
	if CanViewUsers(creator) || CanViewUsers(nil) {
		t.Fatalf("members must not view the user list")
	}
	if CanManageUsers(executive) {
		t.Fatalf("executives must not mutate users")
	}
	if !CanManageUsers(admin) {
		t.Fatalf("admins mutate users")
	}
}

func TestCanCreateAdminAccount(t *testing.T) {
	if CanCreateAdminAccount(executive) {
		t.Fatalf("executives must not create admins")
	}
	if !CanCreateAdminAccount(admin) {
		t.Fatalf("admins create admins")
	}
}

func TestSelfProtection(t *testing.T) {
	self := model.Account{ID: "admin-1", Role: model.RoleAdmin}
	otherAdmin := model.Account{ID: "admin-2", Role: model.RoleAdmin}

	if CanDeleteAccount(admin, self) {
		t.Fatalf("admin must not delete own account")
	}
	if !CanDeleteAccount(admin, otherAdmin) {
		t.Fatalf("admin should delete another account")
	}
	if CanChangeRole(admin, self) {
		t.Fatalf("admin must not change own role")
	}
	if !CanChangeRole(admin, otherAdmin) {
		t.Fatalf("admin should change another account's role")
	}
}
