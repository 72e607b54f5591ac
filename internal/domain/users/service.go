// Package users implements the user and user group commands and queries.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/codecentric/c4-genai-suite/backend/internal/apperr"
	"github.com/codecentric/c4-genai-suite/backend/internal/audit"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/repositories"
)

// UserStore persists users with their group links
type UserStore interface {
	Get(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, query string, limit, offset int) ([]*models.User, int, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id string) error
}

// UserGroupStore persists user groups
type UserGroupStore interface {
	Get(ctx context.Context, id string) (*models.UserGroup, error)
	List(ctx context.Context) ([]*models.UserGroup, error)
	FindByIDs(ctx context.Context, ids []string) ([]*models.UserGroup, error)
	Create(ctx context.Context, g *models.UserGroup) error
	Update(ctx context.Context, g *models.UserGroup) error
	Delete(ctx context.Context, id string) error
	CountUsers(ctx context.Context, id string) (int, error)
}

// AuditLogger appends audit entries
type AuditLogger interface {
	CreateAuditLog(ctx context.Context, params audit.CreateAuditLogParams) (*models.AuditLog, error)
}

// Service runs user and user group commands
type Service struct {
	users      UserStore
	userGroups UserGroupStore
	audit      AuditLogger
}

// NewService creates the user service
func NewService(users UserStore, userGroups UserGroupStore, auditLogger AuditLogger) *Service {
	return &Service{users: users, userGroups: userGroups, audit: auditLogger}
}

func (s *Service) writeAudit(ctx context.Context, entityType, entityID, action string, by audit.PerformedBy, snapshot map[string]interface{}) error {
	_, err := s.audit.CreateAuditLog(ctx, audit.CreateAuditLogParams{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		UserID:     by.ID,
		UserName:   by.UserName(),
		Snapshot:   snapshot,
	})
	if err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// resolveUserGroups keeps only the ids that exist
func (s *Service) resolveUserGroups(ctx context.Context, ids []string) ([]string, error) {
	groups, err := s.userGroups.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user groups: %w", err)
	}
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.ID)
	}
	return out, nil
}

func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound(format, args...)
	}
	return err
}

func duplicate(err error, email string) error {
	if errors.Is(err, repositories.ErrDuplicate) {
		return apperr.Conflict(fmt.Sprintf("A user with email %s already exists.", email), err)
	}
	return err
}

// IsAdmin reports whether the user belongs to at least one admin group.
// Unknown users are not admins.
func (s *Service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	u, err := s.users.Get(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load user: %w", err)
	}
	if len(u.UserGroupIDs) == 0 {
		return false, nil
	}
	groups, err := s.userGroups.FindByIDs(ctx, u.UserGroupIDs)
	if err != nil {
		return false, fmt.Errorf("failed to load user groups: %w", err)
	}
	for _, g := range groups {
		if g.IsAdmin {
			return true, nil
		}
	}
	return false, nil
}
