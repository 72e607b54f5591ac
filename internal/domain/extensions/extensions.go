package extensions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/codecentric/c4-genai-suite/backend/internal/apperr"
	"github.com/codecentric/c4-genai-suite/backend/internal/audit"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/repositories"
	"github.com/codecentric/c4-genai-suite/backend/internal/telemetry"
)

// CreateExtensionValues describes a new extension
type CreateExtensionValues struct {
	Name                  string                 `json:"name"`
	Enabled               bool                   `json:"enabled"`
	Values                map[string]interface{} `json:"values"`
	ConfigurableArguments *ArgumentSpec          `json:"configurableArguments"`
}

// UpdateExtensionValues is a partial extension update. Values are merged into
// the stored values key by key.
type UpdateExtensionValues struct {
	Enabled               *bool                  `json:"enabled"`
	Values                map[string]interface{} `json:"values"`
	ConfigurableArguments *ArgumentSpec          `json:"configurableArguments"`
}

// CreateExtension attaches a provider to a configuration
func (s *Service) CreateExtension(ctx context.Context, configurationID int64, values CreateExtensionValues, by audit.PerformedBy) (_ *ExtensionView, err error) {
	defer func() { telemetry.ObserveCommand("CreateExtension", apperr.Outcome(err)) }()

	provider, ok := s.explorer.GetExtension(values.Name)
	if !ok {
		return nil, apperr.Validation("unknown extension")
	}

	configuration, err := s.configurations.Get(ctx, configurationID)
	if err != nil {
		return nil, notFound(err, "Configuration %d not found", configurationID)
	}
	if configuration.Status == models.ConfigurationStatusDeleted {
		return nil, apperr.NotFound("Configuration %d not found", configurationID)
	}

	validated, err := ValidateValues(provider.Arguments, values.Values)
	if err != nil {
		return nil, err
	}
	configurable, err := encodeArguments(ConfigurableArguments(values.ConfigurableArguments, validated))
	if err != nil {
		return nil, err
	}

	return s.insertExtension(ctx, configuration, provider, values.Enabled, validated, configurable, by)
}

// insertExtension stores a new extension of configuration with validated
// plaintext values and audits it as create
func (s *Service) insertExtension(ctx context.Context, configuration *models.Configuration, provider *Provider, enabled bool, values map[string]interface{}, configurable models.RawJSON, by audit.PerformedBy) (*ExtensionView, error) {
	entity := &models.Extension{
		ConfigurationID:       configuration.ID,
		Name:                  provider.Name,
		ExternalID:            uuid.NewString(),
		Enabled:               enabled,
		ConfigurableArguments: configurable,
		State:                 models.JSONMap{},
	}
	if err := s.save(ctx, entity, provider, values, s.extensions.Create); err != nil {
		return nil, fmt.Errorf("failed to create extension: %w", err)
	}

	return s.auditExtension(ctx, entity, provider, configuration.Name, models.AuditActionCreate, by)
}

// UpdateExtension applies a partial update and re-validates the merged values
func (s *Service) UpdateExtension(ctx context.Context, id int64, values UpdateExtensionValues, by audit.PerformedBy) (_ *ExtensionView, err error) {
	defer func() { telemetry.ObserveCommand("UpdateExtension", apperr.Outcome(err)) }()

	entity, err := s.extensions.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "Extension %d not found", id)
	}

	provider, ok := s.explorer.GetExtension(entity.Name)
	if !ok {
		return nil, apperr.Validation("Extension is not supported anymore.")
	}

	stored, err := s.openValues(entity.Values)
	if err != nil {
		return nil, err
	}
	validated, err := ValidateValues(provider.Arguments, MergeValues(provider.Arguments, stored, values.Values))
	if err != nil {
		return nil, err
	}

	if values.ConfigurableArguments != nil {
		if entity.ConfigurableArguments, err = encodeArguments(ConfigurableArguments(values.ConfigurableArguments, validated)); err != nil {
			return nil, err
		}
	}
	if values.Enabled != nil {
		entity.Enabled = *values.Enabled
	}

	if err := s.save(ctx, entity, provider, validated, s.extensions.Update); err != nil {
		return nil, notFound(err, "Extension %d not found", id)
	}

	return s.auditExtension(ctx, entity, provider, s.configurationName(ctx, entity.ConfigurationID), models.AuditActionUpdate, by)
}

// DeleteExtension removes an extension. The snapshot is taken before the
// delete; when the extension or its provider is already gone no snapshot can
// be built and the deletion is logged instead of audited.
func (s *Service) DeleteExtension(ctx context.Context, id int64, by audit.PerformedBy) (err error) {
	defer func() { telemetry.ObserveCommand("DeleteExtension", apperr.Outcome(err)) }()

	snapshot, err := s.extensionSnapshot(ctx, id)
	if err != nil {
		return err
	}

	if err := s.extensions.Delete(ctx, id); err != nil {
		return notFound(err, "Extension %d not found", id)
	}

	if snapshot == nil {
		slog.WarnContext(ctx, "extension deleted without audit entry: no snapshot available",
			"extension_id", id, "user_id", by.ID)
		return nil
	}
	return s.writeAudit(ctx, models.EntityTypeExtension, strconv.FormatInt(id, 10), models.AuditActionDelete, by, snapshot)
}

// extensionSnapshot returns nil without error when the extension cannot be
// described anymore
func (s *Service) extensionSnapshot(ctx context.Context, id int64) (map[string]interface{}, error) {
	entity, err := s.extensions.Get(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load extension: %w", err)
	}

	provider, ok := s.explorer.GetExtension(entity.Name)
	if !ok {
		return nil, nil
	}

	if entity.Values, err = s.openValues(entity.Values); err != nil {
		return nil, err
	}
	return BuildExtensionSnapshot(entity, provider, s.configurationName(ctx, entity.ConfigurationID))
}

// GetExtensions lists the extensions of a configuration. Extensions whose
// provider no longer exists are left out.
func (s *Service) GetExtensions(ctx context.Context, configurationID int64) ([]*ExtensionView, error) {
	if _, err := s.configurations.Get(ctx, configurationID); err != nil {
		return nil, notFound(err, "Configuration %d not found", configurationID)
	}

	items, err := s.extensions.ListByConfiguration(ctx, configurationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list extensions: %w", err)
	}

	out := make([]*ExtensionView, 0, len(items))
	for _, e := range items {
		provider, ok := s.explorer.GetExtension(e.Name)
		if !ok {
			slog.DebugContext(ctx, "skipping extension with unknown provider", "extension_id", e.ID, "name", e.Name)
			continue
		}
		if e.Values, err = s.openValues(e.Values); err != nil {
			return nil, err
		}
		view, err := BuildExtension(e, provider)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

// ListSpecs returns every registered provider
func (s *Service) ListSpecs() []Provider {
	return s.explorer.Specs()
}

// save persists the extension with sealed secrets and leaves the plaintext
// values on the entity for projection
func (s *Service) save(ctx context.Context, entity *models.Extension, provider *Provider, values map[string]interface{}, persist func(context.Context, *models.Extension) error) error {
	stored := models.JSONMap(values).Clone()
	if err := s.sealValues(provider, stored); err != nil {
		return err
	}
	entity.Values = stored
	if err := persist(ctx, entity); err != nil {
		return err
	}
	entity.Values = values
	return nil
}

func (s *Service) auditExtension(ctx context.Context, entity *models.Extension, provider *Provider, configurationName, action string, by audit.PerformedBy) (*ExtensionView, error) {
	snapshot, err := BuildExtensionSnapshot(entity, provider, configurationName)
	if err != nil {
		return nil, err
	}
	if err := s.writeAudit(ctx, models.EntityTypeExtension, strconv.FormatInt(entity.ID, 10), action, by, snapshot); err != nil {
		return nil, err
	}
	return BuildExtension(entity, provider)
}

func (s *Service) configurationName(ctx context.Context, id int64) string {
	c, err := s.configurations.Get(ctx, id)
	if err != nil {
		return ""
	}
	return c.Name
}
