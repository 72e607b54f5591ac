package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/codecentric/c4-genai-suite/backend/internal/apperr"
	"github.com/codecentric/c4-genai-suite/backend/internal/audit"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
	"github.com/codecentric/c4-genai-suite/backend/internal/patch"
	"github.com/codecentric/c4-genai-suite/backend/internal/telemetry"
)

// UserGroupValues are the editable fields of a user group. MonthlyUserTokens
// can be cleared with an explicit null.
type UserGroupValues struct {
	Name              *string               `json:"name"`
	IsAdmin           *bool                 `json:"isAdmin"`
	MonthlyUserTokens patch.Nullable[int64] `json:"monthlyUserTokens"`
}

func (v UserGroupValues) applyTo(g *models.UserGroup) error {
	if v.Name != nil && strings.TrimSpace(*v.Name) == "" {
		return apperr.Validation("name must not be empty")
	}
	if v.MonthlyUserTokens.Present && !v.MonthlyUserTokens.Null && v.MonthlyUserTokens.Value < 0 {
		return apperr.Validation("monthlyUserTokens must not be negative")
	}
	patch.Assign(&g.Name, v.Name)
	patch.Assign(&g.IsAdmin, v.IsAdmin)
	v.MonthlyUserTokens.Apply(&g.MonthlyUserTokens)
	return nil
}

// CreateUserGroup creates a user group with a generated id
func (s *Service) CreateUserGroup(ctx context.Context, values UserGroupValues, by audit.PerformedBy) (_ *UserGroupView, err error) {
	defer func() { telemetry.ObserveCommand("CreateUserGroup", apperr.Outcome(err)) }()

	if values.Name == nil {
		return nil, apperr.Validation("name is required")
	}
	entity := &models.UserGroup{ID: uuid.NewString()}
	if err := values.applyTo(entity); err != nil {
		return nil, err
	}

	if err := s.userGroups.Create(ctx, entity); err != nil {
		return nil, fmt.Errorf("failed to create user group: %w", err)
	}

	snapshot, err := BuildUserGroupSnapshot(entity)
	if err != nil {
		return nil, err
	}
	if err := s.writeAudit(ctx, models.EntityTypeUserGroup, entity.ID, models.AuditActionCreate, by, snapshot); err != nil {
		return nil, err
	}
	return BuildUserGroup(entity), nil
}

// UpdateUserGroup applies a partial update. Built-in groups are read-only.
func (s *Service) UpdateUserGroup(ctx context.Context, id string, values UserGroupValues, by audit.PerformedBy) (_ *UserGroupView, err error) {
	defer func() { telemetry.ObserveCommand("UpdateUserGroup", apperr.Outcome(err)) }()

	entity, err := s.userGroups.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "User group %s not found", id)
	}
	if entity.IsBuiltIn || models.IsBuiltInGroup(entity.ID) {
		return nil, apperr.Validation("Cannot update builtin user group.")
	}
	if err := values.applyTo(entity); err != nil {
		return nil, err
	}

	if err := s.userGroups.Update(ctx, entity); err != nil {
		return nil, notFound(err, "User group %s not found", id)
	}

	snapshot, err := BuildUserGroupSnapshot(entity)
	if err != nil {
		return nil, err
	}
	if err := s.writeAudit(ctx, models.EntityTypeUserGroup, id, models.AuditActionUpdate, by, snapshot); err != nil {
		return nil, err
	}
	return BuildUserGroup(entity), nil
}

// DeleteUserGroup removes a group without members
func (s *Service) DeleteUserGroup(ctx context.Context, id string, by audit.PerformedBy) (err error) {
	defer func() { telemetry.ObserveCommand("DeleteUserGroup", apperr.Outcome(err)) }()

	entity, err := s.userGroups.Get(ctx, id)
	if err != nil {
		return notFound(err, "User group %s not found", id)
	}

	members, err := s.userGroups.CountUsers(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count group members: %w", err)
	}
	if members > 0 {
		return apperr.Validation("Cannot delete a user group with existing users.")
	}
	if entity.IsBuiltIn || models.IsBuiltInGroup(entity.ID) {
		return apperr.Validation("Cannot delete builtin user group.")
	}

	snapshot, err := BuildUserGroupSnapshot(entity)
	if err != nil {
		return err
	}
	if err := s.userGroups.Delete(ctx, id); err != nil {
		return notFound(err, "User group %s not found", id)
	}
	return s.writeAudit(ctx, models.EntityTypeUserGroup, id, models.AuditActionDelete, by, snapshot)
}

// ListUserGroups returns all user groups
func (s *Service) ListUserGroups(ctx context.Context) ([]*UserGroupView, error) {
	items, err := s.userGroups.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list user groups: %w", err)
	}
	out := make([]*UserGroupView, 0, len(items))
	for _, g := range items {
		out = append(out, BuildUserGroup(g))
	}
	return out, nil
}
