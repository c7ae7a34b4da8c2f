package access_test

import (
	"testing"

	"stitchflow/internal/access"
	"stitchflow/internal/workflow"
)

func cardAssignedTo(value string) *workflow.Card {
	return &workflow.Card{ID: 1, WorkflowID: 1, StageOrder: 1, AssignedTo: &value}
}

func TestCanUpdate(t *testing.T) {
	unassigned := &workflow.Card{ID: 2, WorkflowID: 1, StageOrder: 2}

	cases := []struct {
		name string
		user *access.User
		card *workflow.Card
		want bool
	}{
		{
			name: "assignee matches exactly",
			user: &access.User{Username: "jane_doe", Role: access.RoleDesigner},
			card: cardAssignedTo("jane_doe"),
			want: true,
		},
		{
			name: "similar username is not a match",
			user: &access.User{Username: "jane_doe2", Role: access.RoleDesigner},
			card: cardAssignedTo("jane_doe"),
			want: false,
		},
		{
			name: "padded assignee still matches trimmed username",
			user: &access.User{Username: "jane_doe", Role: access.RoleDesigner},
			card: cardAssignedTo("  jane_doe  "),
			want: true,
		},
		{
			name: "admin updates anything",
			user: &access.User{Username: "root_admin", Role: access.RoleAdmin},
			card: unassigned,
			want: true,
		},
		{
			name: "update_all_cards permission",
			user: &access.User{Username: "floor_lead", Role: access.RoleSupervisor, Permissions: []string{access.PermissionUpdateAllCards}},
			card: cardAssignedTo("someone_else"),
			want: true,
		},
		{
			name: "plain user denied on unassigned card",
			user: &access.User{Username: "casey", Role: access.RoleUser},
			card: unassigned,
			want: false,
		},
		{
			name: "empty username denied",
			user: &access.User{Username: "   ", Role: access.RoleAdmin},
			card: unassigned,
			want: false,
		},
		{
			name: "malformed username denied even for admin",
			user: &access.User{Username: "jane doe; drop", Role: access.RoleAdmin},
			card: unassigned,
			want: false,
		},
		{
			name: "email-style assignee never matches plain username",
			user: &access.User{Username: "jane", Role: access.RoleDesigner},
			card: cardAssignedTo("jane@example.com"),
			want: false,
		},
		{
			name: "nil user denied",
			user: nil,
			card: unassigned,
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := access.CanUpdate(tc.user, tc.card); got != tc.want {
				t.Fatalf("CanUpdate = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHasPermission(t *testing.T) {
	user := &access.User{Permissions: []string{"view_reports", access.PermissionUpdateAllCards}}
	if !user.HasPermission(access.PermissionUpdateAllCards) {
		t.Fatal("expected permission to be found")
	}
	if user.HasPermission("delete_workflows") {
		t.Fatal("unexpected permission")
	}
}
