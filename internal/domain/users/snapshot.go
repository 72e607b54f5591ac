package users

import (
	"sort"

	"github.com/codecentric/c4-genai-suite/backend/internal/audit"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
)

// UserView is the API projection of a user. Credentials are reduced to flags.
type UserView struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	HasPassword  bool     `json:"hasPassword"`
	HasAPIKey    bool     `json:"hasApiKey"`
	UserGroupIDs []string `json:"userGroupIds"`
}

// BuildUser projects a stored user
func BuildUser(u *models.User) *UserView {
	groups := append([]string{}, u.UserGroupIDs...)
	sort.Strings(groups)
	return &UserView{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		HasPassword:  u.PasswordHash != nil && *u.PasswordHash != "",
		HasAPIKey:    u.APIKey != nil && *u.APIKey != "",
		UserGroupIDs: groups,
	}
}

// BuildUserSnapshot returns the audit snapshot of a user
func BuildUserSnapshot(u *models.User) (map[string]interface{}, error) {
	return audit.ToSnapshot(BuildUser(u))
}

// UserGroupView is the API projection of a user group
type UserGroupView struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	IsAdmin           bool   `json:"isAdmin"`
	IsBuiltIn         bool   `json:"isBuiltIn"`
	MonthlyUserTokens *int64 `json:"monthlyUserTokens"`
}

// BuildUserGroup projects a stored user group
func BuildUserGroup(g *models.UserGroup) *UserGroupView {
	return &UserGroupView{
		ID:                g.ID,
		Name:              g.Name,
		IsAdmin:           g.IsAdmin,
		IsBuiltIn:         g.IsBuiltIn,
		MonthlyUserTokens: g.MonthlyUserTokens,
	}
}

// BuildUserGroupSnapshot returns the audit snapshot of a user group
func BuildUserGroupSnapshot(g *models.UserGroup) (map[string]interface{}, error) {
	return audit.ToSnapshot(BuildUserGroup(g))
}
