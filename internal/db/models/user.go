// Package models - user.go defines the User and UserGroup models.
package models

// Builtin user group ids
const (
	UserGroupAdmin   = "admin"
	UserGroupDefault = "default"
)

// User is an account of the chat application.
type User struct {
	ID           string  `db:"id"`
	Name         string  `db:"name"`
	Email        string  `db:"email"`
	APIKey       *string `db:"api_key"`
	PasswordHash *string `db:"password_hash"`

	// UserGroupIDs is loaded from users_user_groups.
	UserGroupIDs []string `db:"-"`
}

// UserGroup controls access to configurations and token budgets.
type UserGroup struct {
	ID                string `db:"id"`
	Name              string `db:"name"`
	IsAdmin           bool   `db:"is_admin"`
	IsBuiltIn         bool   `db:"is_builtin"`
	MonthlyUserTokens *int64 `db:"monthly_user_tokens"`
}

// IsBuiltInGroup reports whether id names one of the seeded groups.
func IsBuiltInGroup(id string) bool {
	return id == UserGroupAdmin || id == UserGroupDefault
}
