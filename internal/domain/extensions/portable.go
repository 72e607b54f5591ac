package extensions

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-version"

	"github.com/codecentric/c4-genai-suite/backend/internal/apperr"
	"github.com/codecentric/c4-genai-suite/backend/internal/audit"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
	"github.com/codecentric/c4-genai-suite/backend/internal/telemetry"
)

// PortableConfiguration is a configuration with its extensions in a form that
// can be imported into another installation. Extension values are exported
// in plaintext, secrets included.
type PortableConfiguration struct {
	Version          string                  `json:"version,omitempty"`
	ExportedAt       *time.Time              `json:"exportedAt,omitempty"`
	Name             string                  `json:"name"`
	Description      string                  `json:"description"`
	Enabled          bool                    `json:"enabled"`
	AgentName        *string                 `json:"agentName,omitempty"`
	ChatFooter       *string                 `json:"chatFooter,omitempty"`
	ChatSuggestions  []models.ChatSuggestion `json:"chatSuggestions,omitempty"`
	ExecutorEndpoint *string                 `json:"executorEndpoint,omitempty"`
	ExecutorHeaders  *string                 `json:"executorHeaders,omitempty"`
	UserGroupIDs     []string                `json:"userGroupIds,omitempty"`
	Extensions       []PortableExtension     `json:"extensions"`
}

// PortableExtension is one extension of a PortableConfiguration
type PortableExtension struct {
	Name                  string                 `json:"name"`
	Enabled               bool                   `json:"enabled"`
	Values                map[string]interface{} `json:"values"`
	ConfigurableArguments *ArgumentSpec          `json:"configurableArguments,omitempty"`
}

// ImportResult is the created configuration and the problems that did not
// prevent the import
type ImportResult struct {
	Configuration *ConfigurationView `json:"configuration"`
	Warnings      []string           `json:"warnings"`
}

// ExportConfiguration returns the portable form of a configuration.
// Extensions whose provider is gone are left out.
func (s *Service) ExportConfiguration(ctx context.Context, id int64) (*PortableConfiguration, error) {
	c, err := s.configurations.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "Configuration %d not found", id)
	}
	if c.Status == models.ConfigurationStatusDeleted {
		return nil, apperr.NotFound("Configuration %d not found", id)
	}
	items, err := s.extensions.ListByConfiguration(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list extensions: %w", err)
	}

	exportedAt := time.Now().UTC()
	out := &PortableConfiguration{
		Version:          s.version,
		ExportedAt:       &exportedAt,
		Name:             c.Name,
		Description:      c.Description,
		Enabled:          c.Enabled(),
		AgentName:        c.AgentName,
		ChatFooter:       c.ChatFooter,
		ChatSuggestions:  []models.ChatSuggestion(c.ChatSuggestions),
		ExecutorEndpoint: c.ExecutorEndpoint,
		ExecutorHeaders:  c.ExecutorHeaders,
		UserGroupIDs:     append([]string(nil), c.UserGroupIDs...),
		Extensions:       make([]PortableExtension, 0, len(items)),
	}
	sort.Strings(out.UserGroupIDs)

	for _, e := range items {
		if _, ok := s.explorer.GetExtension(e.Name); !ok {
			slog.DebugContext(ctx, "skipping extension with unknown provider", "extension_id", e.ID, "name", e.Name)
			continue
		}
		values, err := s.openValues(e.Values)
		if err != nil {
			return nil, err
		}
		args, err := decodeArguments(e.ConfigurableArguments)
		if err != nil {
			return nil, err
		}
		out.Extensions = append(out.Extensions, PortableExtension{
			Name:                  e.Name,
			Enabled:               e.Enabled,
			Values:                values,
			ConfigurableArguments: args,
		})
	}

	slog.InfoContext(ctx, "configuration exported", "configuration_id", id, "extensions", len(out.Extensions))
	return out, nil
}

// ImportConfiguration creates a configuration with its extensions from the
// portable form. Every extension must name a known provider and carry valid
// values; nothing is written otherwise. User groups that do not exist here
// are dropped with a warning, but at least one of the listed groups must
// exist. A version different from this server's is reported as a warning.
func (s *Service) ImportConfiguration(ctx context.Context, data PortableConfiguration, by audit.PerformedBy) (_ *ImportResult, err error) {
	defer func() { telemetry.ObserveCommand("ImportConfiguration", apperr.Outcome(err)) }()

	if strings.TrimSpace(data.Name) == "" {
		return nil, apperr.Validation("name is required")
	}

	var warnings []string
	if w := versionWarning(data.Name, data.Version, s.version); w != "" {
		warnings = append(warnings, w)
	}

	type pending struct {
		provider     *Provider
		portable     PortableExtension
		values       map[string]interface{}
		configurable models.RawJSON
	}
	var unavailable []string
	for _, pe := range data.Extensions {
		if _, ok := s.explorer.GetExtension(pe.Name); !ok {
			unavailable = append(unavailable, pe.Name)
		}
	}
	if len(unavailable) > 0 {
		return nil, apperr.Validation("The following extensions are not available in this system: %s", strings.Join(unavailable, ", "))
	}

	toCreate := make([]pending, 0, len(data.Extensions))
	for _, pe := range data.Extensions {
		provider, _ := s.explorer.GetExtension(pe.Name)
		validated, err := ValidateValues(provider.Arguments, pe.Values)
		if err != nil {
			return nil, apperr.Validation("Invalid configuration for extension %q: %s", pe.Name, apperr.MessageOf(err))
		}
		configurable, err := encodeArguments(ConfigurableArguments(pe.ConfigurableArguments, validated))
		if err != nil {
			return nil, err
		}
		toCreate = append(toCreate, pending{provider: provider, portable: pe, values: validated, configurable: configurable})
	}

	entity := &models.Configuration{
		Name:             data.Name,
		Description:      data.Description,
		AgentName:        data.AgentName,
		ChatFooter:       data.ChatFooter,
		ChatSuggestions:  models.ChatSuggestions(data.ChatSuggestions),
		ExecutorEndpoint: data.ExecutorEndpoint,
		ExecutorHeaders:  data.ExecutorHeaders,
		Status:           models.ConfigurationStatusDisabled,
	}
	if data.Enabled {
		entity.Status = models.ConfigurationStatusEnabled
	}
	if len(data.UserGroupIDs) > 0 {
		if entity.UserGroupIDs, err = s.resolveUserGroups(ctx, data.UserGroupIDs); err != nil {
			return nil, err
		}
		if len(entity.UserGroupIDs) == 0 {
			return nil, apperr.Validation("Cannot import configuration: none of the specified user groups exist in this system")
		}
		if missing := missingIDs(data.UserGroupIDs, entity.UserGroupIDs); len(missing) > 0 {
			warnings = append(warnings, fmt.Sprintf("Configuration %q: user groups %s do not exist and were skipped.", data.Name, strings.Join(missing, ", ")))
		}
	}

	if err := s.insertConfiguration(ctx, entity, by); err != nil {
		return nil, err
	}
	for _, p := range toCreate {
		if _, err := s.insertExtension(ctx, entity, p.provider, p.portable.Enabled, p.values, p.configurable, by); err != nil {
			return nil, err
		}
	}

	for _, w := range warnings {
		slog.WarnContext(ctx, "configuration import warning", "configuration_id", entity.ID, "warning", w)
	}
	slog.InfoContext(ctx, "configuration imported",
		"configuration_id", entity.ID, "name", entity.Name, "extensions", len(toCreate))

	if warnings == nil {
		warnings = []string{}
	}
	return &ImportResult{Configuration: BuildConfiguration(entity), Warnings: warnings}, nil
}

// versionWarning describes a version difference between the exporting server
// and this one. Versions that do not parse are compared as plain strings.
func versionWarning(name, exported, current string) string {
	if exported == "" || current == "" || exported == current {
		return ""
	}
	ev, err := version.NewVersion(exported)
	if err != nil {
		return fmt.Sprintf("Configuration %q was exported by version %s, this server runs %s.", name, exported, current)
	}
	cv, err := version.NewVersion(current)
	if err != nil {
		return fmt.Sprintf("Configuration %q was exported by version %s, this server runs %s.", name, exported, current)
	}
	switch ev.Compare(cv) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("Configuration %q was exported by the newer version %s, this server runs %s.", name, exported, current)
	default:
		return fmt.Sprintf("Configuration %q was exported by the older version %s, this server runs %s.", name, exported, current)
	}
}

func missingIDs(requested, found []string) []string {
	present := make(map[string]bool, len(found))
	for _, id := range found {
		present[id] = true
	}
	var out []string
	for _, id := range requested {
		if !present[id] {
			out = append(out, id)
		}
	}
	return out
}
