// Package auditlog implements the read side of the audit log: filtered
// pages, single entries with the previous state of the entity, and the
// spreadsheet export.
package auditlog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codecentric/c4-genai-suite/backend/internal/apperr"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/repositories"
	"github.com/codecentric/c4-genai-suite/backend/internal/domain/paging"
)

// Store reads audit entries
type Store interface {
	ListAuditLogs(ctx context.Context, filters repositories.AuditFilters, limit, offset int) ([]*models.AuditLog, int, error)
	GetAuditLog(ctx context.Context, id int64) (*models.AuditLog, error)
	GetPreviousAuditLog(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error)
}

// Query filters audit entries. All set filters must match.
type Query struct {
	EntityType      *string
	EntityID        *string
	ConfigurationID *int64
	paging.Request
}

func (q Query) filters() (repositories.AuditFilters, error) {
	if q.EntityType != nil && !models.IsValidEntityType(*q.EntityType) {
		return repositories.AuditFilters{}, apperr.Validation("invalid entity type %q", *q.EntityType)
	}
	return repositories.AuditFilters{
		EntityType:      q.EntityType,
		EntityID:        q.EntityID,
		ConfigurationID: q.ConfigurationID,
	}, nil
}

// Entry is the API projection of an audit entry
type Entry struct {
	ID         int64                  `json:"id"`
	EntityType string                 `json:"entityType"`
	EntityID   string                 `json:"entityId"`
	Action     string                 `json:"action"`
	UserID     string                 `json:"userId"`
	UserName   *string                `json:"userName"`
	Snapshot   map[string]interface{} `json:"snapshot"`
	CreatedAt  time.Time              `json:"createdAt"`
}

// EntryWithPrevious adds the snapshot of the preceding entry for the same
// entity, nil for the first entry.
type EntryWithPrevious struct {
	Entry
	PreviousSnapshot map[string]interface{} `json:"previousSnapshot"`
}

func buildEntry(l *models.AuditLog) Entry {
	snapshot := map[string]interface{}(l.Snapshot)
	if snapshot == nil {
		snapshot = map[string]interface{}{}
	}
	return Entry{
		ID:         l.ID,
		EntityType: l.EntityType,
		EntityID:   l.EntityID,
		Action:     l.Action,
		UserID:     l.UserID,
		UserName:   l.UserName,
		Snapshot:   snapshot,
		CreatedAt:  l.CreatedAt,
	}
}

// Service answers audit log queries
type Service struct {
	store Store
}

// NewService creates the audit log query service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// GetAuditLogs returns one page of matching entries, newest first
func (s *Service) GetAuditLogs(ctx context.Context, q Query) (*paging.Result[Entry], error) {
	filters, err := q.filters()
	if err != nil {
		return nil, err
	}
	items, total, err := s.store.ListAuditLogs(ctx, filters, q.Limit(), q.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	out := make([]Entry, 0, len(items))
	for _, l := range items {
		out = append(out, buildEntry(l))
	}
	return &paging.Result[Entry]{Items: out, Total: total}, nil
}

// GetAuditLogByID returns one entry and the snapshot that preceded it
func (s *Service) GetAuditLogByID(ctx context.Context, id int64) (*EntryWithPrevious, error) {
	l, err := s.store.GetAuditLog(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.NotFound("Audit log %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load audit log: %w", err)
	}

	out := &EntryWithPrevious{Entry: buildEntry(l)}
	prev, err := s.store.GetPreviousAuditLog(ctx, l)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to load previous audit log: %w", err)
	default:
		out.PreviousSnapshot = buildEntry(prev).Snapshot
	}
	return out, nil
}
