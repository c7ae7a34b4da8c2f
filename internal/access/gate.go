package access

import (
	"regexp"
	"strings"

	"stitchflow/internal/workflow"
)

// Role classifies users for permission decisions.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleDesigner   Role = "designer"
	RoleProgrammer Role = "programmer"
	RoleSupervisor Role = "supervisor"
	RoleUser       Role = "user"
)

// PermissionUpdateAllCards lets a user update any card regardless of
// assignment.
const PermissionUpdateAllCards = "update_all_cards"

// User identifies the actor behind a card mutation.
type User struct {
	ID          int64
	Username    string
	Role        Role
	Permissions []string
}

// HasPermission reports whether the user carries the named permission.
func (u *User) HasPermission(name string) bool {
	for _, p := range u.Permissions {
		if p == name {
			return true
		}
	}
	return false
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// CanUpdate decides whether user may change the given card. Admins may
// always update; otherwise the card's assignee must match the username
// exactly, or the user must hold the update_all_cards permission.
// Malformed usernames are always denied.
func CanUpdate(user *User, card *workflow.Card) bool {
	if user == nil || card == nil {
		return false
	}
	username := strings.TrimSpace(user.Username)
	if username == "" || !usernamePattern.MatchString(username) {
		return false
	}
	if user.Role == RoleAdmin {
		return true
	}
	if card.AssignedTo != nil && strings.TrimSpace(*card.AssignedTo) == username {
		return true
	}
	return user.HasPermission(PermissionUpdateAllCards)
}
