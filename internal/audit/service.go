package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
	"github.com/codecentric/c4-genai-suite/backend/internal/safego"
	"github.com/codecentric/c4-genai-suite/backend/internal/telemetry"
)

// ErrMissingField is returned when a required audit field is empty.
var ErrMissingField = errors.New("audit: required field missing")

// defaultForwardTimeout bounds the delivery of one entry to one target.
const defaultForwardTimeout = 5 * time.Second

// Store persists audit entries
type Store interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// CreateAuditLogParams describes one entry to append.
type CreateAuditLogParams struct {
	EntityType string
	EntityID   string
	Action     string
	UserID     string
	UserName   *string
	Snapshot   map[string]interface{}
}

type target struct {
	name    string
	shipper Shipper
}

// Service appends audit entries and forwards them to the configured targets.
type Service struct {
	store   Store
	targets []target
	timeout time.Duration
}

// NewService creates a Service writing to store
func NewService(store Store) *Service {
	return &Service{store: store, timeout: defaultForwardTimeout}
}

// WithTarget registers a forwarding target under name and returns s.
func (s *Service) WithTarget(name string, shipper Shipper) *Service {
	if shipper != nil {
		s.targets = append(s.targets, target{name: name, shipper: shipper})
	}
	return s
}

// CreateAuditLog inserts one entry. Storage errors are returned unchanged.
func (s *Service) CreateAuditLog(ctx context.Context, params CreateAuditLogParams) (*models.AuditLog, error) {
	switch {
	case params.EntityType == "":
		return nil, fmt.Errorf("%w: entityType", ErrMissingField)
	case params.EntityID == "":
		return nil, fmt.Errorf("%w: entityId", ErrMissingField)
	case params.Action == "":
		return nil, fmt.Errorf("%w: action", ErrMissingField)
	case params.UserID == "":
		return nil, fmt.Errorf("%w: userId", ErrMissingField)
	}

	entry := &models.AuditLog{
		EntityType: params.EntityType,
		EntityID:   params.EntityID,
		Action:     params.Action,
		UserID:     params.UserID,
		UserName:   params.UserName,
		Snapshot:   models.JSONMap(params.Snapshot),
	}
	if err := s.store.CreateAuditLog(ctx, entry); err != nil {
		return nil, err
	}
	telemetry.AuditLogEntriesTotal.WithLabelValues(entry.EntityType, entry.Action).Inc()

	s.forward(entry)
	return entry, nil
}

// Close releases all targets.
func (s *Service) Close() error {
	var errs []error
	for _, t := range s.targets {
		if err := t.shipper.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t.name, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Service) forward(entry *models.AuditLog) {
	for _, t := range s.targets {
		t := t
		safego.GoTimeout("audit-forward-"+t.name, s.timeout, func(ctx context.Context) {
			if err := t.shipper.Ship(ctx, entry); err != nil {
				telemetry.AuditForwardFailuresTotal.WithLabelValues(t.name).Inc()
				slog.Warn("failed to forward audit entry",
					"target", t.name,
					"audit_id", entry.ID,
					"entity_type", entry.EntityType,
					"error", err)
			}
		})
	}
}
