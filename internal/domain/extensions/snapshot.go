package extensions

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/codecentric/c4-genai-suite/backend/internal/audit"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
)

// ConfigurationView is the API projection of a configuration
type ConfigurationView struct {
	ID               int64                   `json:"id"`
	Name             string                  `json:"name"`
	Description      string                  `json:"description"`
	Enabled          bool                    `json:"enabled"`
	Status           string                  `json:"status"`
	AgentName        *string                 `json:"agentName"`
	ChatFooter       *string                 `json:"chatFooter"`
	ChatSuggestions  []models.ChatSuggestion `json:"chatSuggestions"`
	ExecutorEndpoint *string                 `json:"executorEndpoint"`
	ExecutorHeaders  *string                 `json:"executorHeaders"`
	UserGroupIDs     []string                `json:"userGroupIds"`
}

// BuildConfiguration projects a stored configuration
func BuildConfiguration(c *models.Configuration) *ConfigurationView {
	suggestions := []models.ChatSuggestion(c.ChatSuggestions)
	if suggestions == nil {
		suggestions = []models.ChatSuggestion{}
	}
	groups := append([]string{}, c.UserGroupIDs...)
	sort.Strings(groups)

	return &ConfigurationView{
		ID:               c.ID,
		Name:             c.Name,
		Description:      c.Description,
		Enabled:          c.Enabled(),
		Status:           c.Status,
		AgentName:        c.AgentName,
		ChatFooter:       c.ChatFooter,
		ChatSuggestions:  suggestions,
		ExecutorEndpoint: c.ExecutorEndpoint,
		ExecutorHeaders:  c.ExecutorHeaders,
		UserGroupIDs:     groups,
	}
}

// BuildConfigurationSnapshot returns the audit snapshot of a configuration.
// Executor headers usually carry credentials and are masked.
func BuildConfigurationSnapshot(c *models.Configuration) (map[string]interface{}, error) {
	view := BuildConfiguration(c)
	view.ExecutorHeaders = maskString(view.ExecutorHeaders)
	return audit.ToSnapshot(view)
}

// ExtensionView is the API projection of an extension. Secret values are
// always masked.
type ExtensionView struct {
	ID                    int64                  `json:"id"`
	ConfigurationID       int64                  `json:"configurationId"`
	Name                  string                 `json:"name"`
	ExternalID            string                 `json:"externalId"`
	Enabled               bool                   `json:"enabled"`
	Values                map[string]interface{} `json:"values"`
	ConfigurableArguments *ArgumentSpec          `json:"configurableArguments,omitempty"`
	Spec                  Provider               `json:"spec"`
}

// BuildExtension projects a stored extension. values must be in plaintext.
func BuildExtension(e *models.Extension, p *Provider) (*ExtensionView, error) {
	args, err := decodeArguments(e.ConfigurableArguments)
	if err != nil {
		return nil, err
	}
	values := MaskValues(p.Arguments, e.Values)
	if values == nil {
		values = map[string]interface{}{}
	}

	return &ExtensionView{
		ID:                    e.ID,
		ConfigurationID:       e.ConfigurationID,
		Name:                  e.Name,
		ExternalID:            e.ExternalID,
		Enabled:               e.Enabled,
		Values:                values,
		ConfigurableArguments: MaskArguments(args),
		Spec:                  *p,
	}, nil
}

type extensionSnapshot struct {
	ID                    int64                  `json:"id"`
	ConfigurationID       int64                  `json:"configurationId"`
	ConfigurationName     string                 `json:"configurationName"`
	Name                  string                 `json:"name"`
	Title                 string                 `json:"title"`
	Type                  ProviderType           `json:"type"`
	Enabled               bool                   `json:"enabled"`
	Values                map[string]interface{} `json:"values"`
	ConfigurableArguments *ArgumentSpec          `json:"configurableArguments,omitempty"`
}

// BuildExtensionSnapshot returns the audit snapshot of an extension. It masks
// independently of BuildExtension so the two never share maps.
func BuildExtensionSnapshot(e *models.Extension, p *Provider, configurationName string) (map[string]interface{}, error) {
	args, err := decodeArguments(e.ConfigurableArguments)
	if err != nil {
		return nil, err
	}
	values := MaskValues(p.Arguments, e.Values)
	if values == nil {
		values = map[string]interface{}{}
	}

	return audit.ToSnapshot(extensionSnapshot{
		ID:                    e.ID,
		ConfigurationID:       e.ConfigurationID,
		ConfigurationName:     configurationName,
		Name:                  e.Name,
		Title:                 p.Title,
		Type:                  p.Type,
		Enabled:               e.Enabled,
		Values:                values,
		ConfigurableArguments: MaskArguments(args),
	})
}

func decodeArguments(raw models.RawJSON) (*ArgumentSpec, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var spec ArgumentSpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("invalid configurable arguments: %w", err)
	}
	return &spec, nil
}

func encodeArguments(spec *ArgumentSpec) (models.RawJSON, error) {
	if spec == nil {
		return nil, nil
	}
	data, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode configurable arguments: %w", err)
	}
	return models.RawJSON(data), nil
}

func maskString(s *string) *string {
	if s == nil || *s == "" {
		return s
	}
	masked := audit.Redacted
	return &masked
}
