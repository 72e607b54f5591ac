package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/codecentric/c4-genai-suite/backend/internal/apperr"
	"github.com/codecentric/c4-genai-suite/backend/internal/audit"
	"github.com/codecentric/c4-genai-suite/backend/internal/auth"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
	"github.com/codecentric/c4-genai-suite/backend/internal/domain/paging"
	"github.com/codecentric/c4-genai-suite/backend/internal/patch"
	"github.com/codecentric/c4-genai-suite/backend/internal/telemetry"
)

// CreateUserValues describes a new user. Password and APIKey are optional
// and only their hashes are stored.
type CreateUserValues struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	APIKey       string   `json:"apiKey"`
	UserGroupIDs []string `json:"userGroupIds"`
}

// UpdateUserValues is a partial user update. An explicit null APIKey removes
// the key; a nil UserGroupIDs keeps the memberships.
type UpdateUserValues struct {
	Name            *string                `json:"name"`
	Email           *string                `json:"email"`
	Password        *string                `json:"password"`
	CurrentPassword *string                `json:"currentPassword"`
	APIKey          patch.Nullable[string] `json:"apiKey"`
	UserGroupIDs    []string               `json:"userGroupIds"`
}

// CreateUser creates a user with a generated id
func (s *Service) CreateUser(ctx context.Context, values CreateUserValues, by audit.PerformedBy) (_ *UserView, err error) {
	defer func() { telemetry.ObserveCommand("CreateUser", apperr.Outcome(err)) }()

	if strings.TrimSpace(values.Name) == "" {
		return nil, apperr.Validation("name is required")
	}
	if strings.TrimSpace(values.Email) == "" {
		return nil, apperr.Validation("email is required")
	}

	entity := &models.User{
		ID:           uuid.NewString(),
		Name:         values.Name,
		Email:        values.Email,
		UserGroupIDs: []string{},
	}
	if values.Password != "" {
		hash, err := auth.HashPassword(values.Password)
		if err != nil {
			return nil, err
		}
		entity.PasswordHash = &hash
	}
	if values.APIKey != "" {
		hash := auth.HashAPIKey(values.APIKey)
		entity.APIKey = &hash
	}
	if len(values.UserGroupIDs) > 0 {
		if entity.UserGroupIDs, err = s.resolveUserGroups(ctx, values.UserGroupIDs); err != nil {
			return nil, err
		}
	}

	if err := s.users.Create(ctx, entity); err != nil {
		return nil, duplicate(err, entity.Email)
	}

	snapshot, err := BuildUserSnapshot(entity)
	if err != nil {
		return nil, err
	}
	if err := s.writeAudit(ctx, models.EntityTypeUser, entity.ID, models.AuditActionCreate, by, snapshot); err != nil {
		return nil, err
	}
	return BuildUser(entity), nil
}

// UpdateUser applies a partial update. A new password is only accepted when
// the current password matches, if one was supplied.
func (s *Service) UpdateUser(ctx context.Context, id string, values UpdateUserValues, by audit.PerformedBy) (_ *UserView, err error) {
	defer func() { telemetry.ObserveCommand("UpdateUser", apperr.Outcome(err)) }()

	if values.Name != nil && strings.TrimSpace(*values.Name) == "" {
		return nil, apperr.Validation("name must not be empty")
	}
	if values.Email != nil && strings.TrimSpace(*values.Email) == "" {
		return nil, apperr.Validation("email must not be empty")
	}

	entity, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "User %s not found", id)
	}

	if values.Password != nil && *values.Password != "" {
		if values.CurrentPassword != nil {
			stored := ""
			if entity.PasswordHash != nil {
				stored = *entity.PasswordHash
			}
			if !auth.CheckPassword(stored, *values.CurrentPassword) {
				return nil, apperr.Validation("The current password does not match")
			}
		}
		hash, err := auth.HashPassword(*values.Password)
		if err != nil {
			return nil, err
		}
		entity.PasswordHash = &hash
	}

	switch {
	case values.APIKey.Null:
		entity.APIKey = nil
	case values.APIKey.Present && values.APIKey.Value != "":
		hash := auth.HashAPIKey(values.APIKey.Value)
		entity.APIKey = &hash
	}

	patch.Assign(&entity.Name, values.Name)
	patch.Assign(&entity.Email, values.Email)

	if values.UserGroupIDs != nil {
		if entity.UserGroupIDs, err = s.resolveUserGroups(ctx, values.UserGroupIDs); err != nil {
			return nil, err
		}
	}

	if err := s.users.Update(ctx, entity); err != nil {
		return nil, duplicate(notFound(err, "User %s not found", id), entity.Email)
	}

	snapshot, err := BuildUserSnapshot(entity)
	if err != nil {
		return nil, err
	}
	if err := s.writeAudit(ctx, models.EntityTypeUser, entity.ID, models.AuditActionUpdate, by, snapshot); err != nil {
		return nil, err
	}
	return BuildUser(entity), nil
}

// DeleteUser removes a user
func (s *Service) DeleteUser(ctx context.Context, id string, by audit.PerformedBy) (err error) {
	defer func() { telemetry.ObserveCommand("DeleteUser", apperr.Outcome(err)) }()

	entity, err := s.users.Get(ctx, id)
	if err != nil {
		return notFound(err, "User %s not found", id)
	}
	snapshot, err := BuildUserSnapshot(entity)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return notFound(err, "User %s not found", id)
	}
	return s.writeAudit(ctx, models.EntityTypeUser, id, models.AuditActionDelete, by, snapshot)
}

// ListUsers returns a page of users whose name or email contains query
func (s *Service) ListUsers(ctx context.Context, query string, page paging.Request) (*paging.Result[*UserView], error) {
	items, total, err := s.users.List(ctx, strings.TrimSpace(query), page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	out := make([]*UserView, 0, len(items))
	for _, u := range items {
		out = append(out, BuildUser(u))
	}
	return &paging.Result[*UserView]{Items: out, Total: total}, nil
}

// GetUser returns one user
func (s *Service) GetUser(ctx context.Context, id string) (*UserView, error) {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "User %s not found", id)
	}
	return BuildUser(u), nil
}
