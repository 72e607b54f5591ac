package extensions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/codecentric/c4-genai-suite/backend/internal/apperr"
	"github.com/codecentric/c4-genai-suite/backend/internal/audit"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/repositories"
	"github.com/codecentric/c4-genai-suite/backend/internal/patch"
	"github.com/codecentric/c4-genai-suite/backend/internal/telemetry"
)

// ConfigurationValues are the user-editable fields of a configuration. Nil
// fields are left untouched; a nil UserGroupIDs keeps the current groups.
type ConfigurationValues struct {
	Name             *string                  `json:"name"`
	Description      *string                  `json:"description"`
	Enabled          *bool                    `json:"enabled"`
	AgentName        *string                  `json:"agentName"`
	ChatFooter       *string                  `json:"chatFooter"`
	ChatSuggestions  *[]models.ChatSuggestion `json:"chatSuggestions"`
	ExecutorEndpoint *string                  `json:"executorEndpoint"`
	ExecutorHeaders  *string                  `json:"executorHeaders"`
	UserGroupIDs     []string                 `json:"userGroupIds"`
}

func (v ConfigurationValues) applyTo(c *models.Configuration) {
	patch.Assign(&c.Name, v.Name)
	patch.Assign(&c.Description, v.Description)
	patch.AssignPtr(&c.AgentName, v.AgentName)
	patch.AssignPtr(&c.ChatFooter, v.ChatFooter)
	patch.AssignPtr(&c.ExecutorEndpoint, v.ExecutorEndpoint)
	patch.AssignPtr(&c.ExecutorHeaders, v.ExecutorHeaders)
	if v.ChatSuggestions != nil {
		c.ChatSuggestions = models.ChatSuggestions(*v.ChatSuggestions)
	}
	if v.Enabled != nil {
		if *v.Enabled {
			c.Status = models.ConfigurationStatusEnabled
		} else {
			c.Status = models.ConfigurationStatusDisabled
		}
	}
}

// CreateConfiguration creates a configuration. Without an explicit enabled
// flag it starts disabled.
func (s *Service) CreateConfiguration(ctx context.Context, values ConfigurationValues, by audit.PerformedBy) (_ *ConfigurationView, err error) {
	defer func() { telemetry.ObserveCommand("CreateConfiguration", apperr.Outcome(err)) }()

	if values.Name == nil || strings.TrimSpace(*values.Name) == "" {
		return nil, apperr.Validation("name is required")
	}

	entity := &models.Configuration{Status: models.ConfigurationStatusDisabled}
	if values.UserGroupIDs != nil {
		if entity.UserGroupIDs, err = s.resolveUserGroups(ctx, values.UserGroupIDs); err != nil {
			return nil, err
		}
	}
	values.applyTo(entity)

	if err := s.insertConfiguration(ctx, entity, by); err != nil {
		return nil, err
	}
	return BuildConfiguration(entity), nil
}

// insertConfiguration persists a new configuration and audits it as create
func (s *Service) insertConfiguration(ctx context.Context, entity *models.Configuration, by audit.PerformedBy) error {
	if err := s.configurations.Create(ctx, entity); err != nil {
		return fmt.Errorf("failed to create configuration: %w", err)
	}

	snapshot, err := BuildConfigurationSnapshot(entity)
	if err != nil {
		return err
	}
	return s.writeAudit(ctx, models.EntityTypeConfiguration, strconv.FormatInt(entity.ID, 10), models.AuditActionCreate, by, snapshot)
}

const duplicateSuffix = " (copy)"

// DuplicateConfiguration copies a configuration and its extensions. The copy
// keeps the status and user groups of the source and gets the name suffix
// " (copy)". Every created row is audited; extensions whose provider is gone
// are not copied.
func (s *Service) DuplicateConfiguration(ctx context.Context, id int64, by audit.PerformedBy) (_ *ConfigurationView, err error) {
	defer func() { telemetry.ObserveCommand("DuplicateConfiguration", apperr.Outcome(err)) }()

	source, err := s.configurations.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "Configuration %d not found", id)
	}
	if source.Status == models.ConfigurationStatusDeleted {
		return nil, apperr.NotFound("Configuration %d not found", id)
	}
	sourceExtensions, err := s.extensions.ListByConfiguration(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list extensions: %w", err)
	}

	entity := &models.Configuration{
		Name:             source.Name + duplicateSuffix,
		Description:      source.Description,
		AgentName:        source.AgentName,
		ChatFooter:       source.ChatFooter,
		ChatSuggestions:  append(models.ChatSuggestions(nil), source.ChatSuggestions...),
		ExecutorEndpoint: source.ExecutorEndpoint,
		ExecutorHeaders:  source.ExecutorHeaders,
		Status:           source.Status,
		UserGroupIDs:     append([]string(nil), source.UserGroupIDs...),
	}
	if err := s.insertConfiguration(ctx, entity, by); err != nil {
		return nil, err
	}

	for _, e := range sourceExtensions {
		provider, ok := s.explorer.GetExtension(e.Name)
		if !ok {
			slog.WarnContext(ctx, "extension not duplicated: provider no longer exists",
				"configuration_id", id, "extension_id", e.ID, "name", e.Name)
			continue
		}
		values, err := s.openValues(e.Values)
		if err != nil {
			return nil, err
		}
		configurable := append(models.RawJSON(nil), e.ConfigurableArguments...)
		if _, err := s.insertExtension(ctx, entity, provider, e.Enabled, values, configurable, by); err != nil {
			return nil, err
		}
	}

	slog.InfoContext(ctx, "configuration duplicated",
		"source_id", id, "configuration_id", entity.ID, "extensions", len(sourceExtensions))
	return BuildConfiguration(entity), nil
}

// UpdateConfiguration applies a partial update. Soft-deleted configurations
// cannot be updated.
func (s *Service) UpdateConfiguration(ctx context.Context, id int64, values ConfigurationValues, by audit.PerformedBy) (_ *ConfigurationView, err error) {
	defer func() { telemetry.ObserveCommand("UpdateConfiguration", apperr.Outcome(err)) }()

	entity, err := s.configurations.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "Configuration %d not found", id)
	}
	if entity.Status == models.ConfigurationStatusDeleted {
		return nil, apperr.NotFound("Configuration %d not found", id)
	}
	if values.Name != nil && strings.TrimSpace(*values.Name) == "" {
		return nil, apperr.Validation("name must not be empty")
	}

	if values.UserGroupIDs != nil {
		if entity.UserGroupIDs, err = s.resolveUserGroups(ctx, values.UserGroupIDs); err != nil {
			return nil, err
		}
	}
	values.applyTo(entity)

	if err := s.configurations.Update(ctx, entity); err != nil {
		return nil, notFound(err, "Configuration %d not found", id)
	}

	snapshot, err := BuildConfigurationSnapshot(entity)
	if err != nil {
		return nil, err
	}
	if err := s.writeAudit(ctx, models.EntityTypeConfiguration, strconv.FormatInt(id, 10), models.AuditActionUpdate, by, snapshot); err != nil {
		return nil, err
	}

	return BuildConfiguration(entity), nil
}

// DeleteConfiguration removes a configuration. When chat history still
// references it, the row is kept with status deleted and its conversations
// move to another enabled configuration. Both paths are audited as delete
// with the state captured before the change.
func (s *Service) DeleteConfiguration(ctx context.Context, id int64, by audit.PerformedBy) (err error) {
	defer func() { telemetry.ObserveCommand("DeleteConfiguration", apperr.Outcome(err)) }()

	entity, err := s.configurations.Get(ctx, id)
	if err != nil {
		return notFound(err, "Configuration %d not found", id)
	}
	if entity.Status == models.ConfigurationStatusDeleted {
		return apperr.NotFound("Configuration %d not found", id)
	}

	snapshot, err := BuildConfigurationSnapshot(entity)
	if err != nil {
		return err
	}

	err = s.configurations.Delete(ctx, id)
	if errors.Is(err, repositories.ErrReferenced) {
		err = s.configurations.SoftDelete(ctx, id)
		if errors.Is(err, repositories.ErrNoReplacement) {
			return apperr.Validation("Configuration %d is still used by conversations and there is no other enabled configuration to move them to.", id)
		}
	}
	if err != nil {
		return notFound(err, "Configuration %d not found", id)
	}

	return s.writeAudit(ctx, models.EntityTypeConfiguration, strconv.FormatInt(id, 10), models.AuditActionDelete, by, snapshot)
}

// GetConfigurations lists configurations that are not soft-deleted
func (s *Service) GetConfigurations(ctx context.Context, enabledOnly bool) ([]*ConfigurationView, error) {
	items, err := s.configurations.List(ctx, enabledOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list configurations: %w", err)
	}
	out := make([]*ConfigurationView, 0, len(items))
	for _, c := range items {
		out = append(out, BuildConfiguration(c))
	}
	return out, nil
}

// GetConfiguration returns one configuration in any status, so that chat
// history can still render soft-deleted assistants.
func (s *Service) GetConfiguration(ctx context.Context, id int64) (*ConfigurationView, error) {
	c, err := s.configurations.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "Configuration %d not found", id)
	}
	return BuildConfiguration(c), nil
}
