// Package settings reads and updates the global chat UI settings. There is
// exactly one settings row; every update is an upsert of it.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/codecentric/c4-genai-suite/backend/internal/apperr"
	"github.com/codecentric/c4-genai-suite/backend/internal/audit"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/repositories"
	"github.com/codecentric/c4-genai-suite/backend/internal/patch"
	"github.com/codecentric/c4-genai-suite/backend/internal/telemetry"
)

// Store persists the settings row
type Store interface {
	Get(ctx context.Context) (*models.Settings, error)
	Upsert(ctx context.Context, s *models.Settings) error
}

// AuditLogger appends audit entries
type AuditLogger interface {
	CreateAuditLog(ctx context.Context, params audit.CreateAuditLogParams) (*models.AuditLog, error)
}

// Values is a partial settings update. Every field can be cleared with null.
type Values struct {
	Name                patch.Nullable[string]                  `json:"name"`
	Language            patch.Nullable[string]                  `json:"language"`
	WelcomeText         patch.Nullable[string]                  `json:"welcomeText"`
	AgentName           patch.Nullable[string]                  `json:"agentName"`
	ChatFooter          patch.Nullable[string]                  `json:"chatFooter"`
	ChatSuggestions     patch.Nullable[[]models.ChatSuggestion] `json:"chatSuggestions"`
	CustomCSS           patch.Nullable[string]                  `json:"customCss"`
	Logo                patch.Nullable[string]                  `json:"logo"`
	PrimaryColor        patch.Nullable[string]                  `json:"primaryColor"`
	PrimaryContentColor patch.Nullable[string]                  `json:"primaryContentColor"`
	SiteLinks           patch.Nullable[[]models.SiteLink]       `json:"siteLinks"`
}

func (v Values) applyTo(s *models.Settings) {
	v.Name.Apply(&s.Name)
	v.Language.Apply(&s.Language)
	v.WelcomeText.Apply(&s.WelcomeText)
	v.AgentName.Apply(&s.AgentName)
	v.ChatFooter.Apply(&s.ChatFooter)
	v.CustomCSS.Apply(&s.CustomCSS)
	v.Logo.Apply(&s.Logo)
	v.PrimaryColor.Apply(&s.PrimaryColor)
	v.PrimaryContentColor.Apply(&s.PrimaryContentColor)
	if v.ChatSuggestions.Present {
		s.ChatSuggestions = models.ChatSuggestions(v.ChatSuggestions.Value)
	}
	if v.SiteLinks.Present {
		s.SiteLinks = models.SiteLinks(v.SiteLinks.Value)
	}
}

// View is the API projection of the settings
type View struct {
	Name                *string                 `json:"name"`
	Language            *string                 `json:"language"`
	WelcomeText         *string                 `json:"welcomeText"`
	AgentName           *string                 `json:"agentName"`
	ChatFooter          *string                 `json:"chatFooter"`
	ChatSuggestions     []models.ChatSuggestion `json:"chatSuggestions"`
	CustomCSS           *string                 `json:"customCss"`
	Logo                *string                 `json:"logo"`
	PrimaryColor        *string                 `json:"primaryColor"`
	PrimaryContentColor *string                 `json:"primaryContentColor"`
	SiteLinks           []models.SiteLink       `json:"siteLinks"`
}

// BuildSettings projects the settings row
func BuildSettings(s *models.Settings) *View {
	suggestions := []models.ChatSuggestion(s.ChatSuggestions)
	if suggestions == nil {
		suggestions = []models.ChatSuggestion{}
	}
	links := []models.SiteLink(s.SiteLinks)
	if links == nil {
		links = []models.SiteLink{}
	}
	return &View{
		Name:                s.Name,
		Language:            s.Language,
		WelcomeText:         s.WelcomeText,
		AgentName:           s.AgentName,
		ChatFooter:          s.ChatFooter,
		ChatSuggestions:     suggestions,
		CustomCSS:           s.CustomCSS,
		Logo:                s.Logo,
		PrimaryColor:        s.PrimaryColor,
		PrimaryContentColor: s.PrimaryContentColor,
		SiteLinks:           links,
	}
}

// BuildSettingsSnapshot returns the audit snapshot of the settings
func BuildSettingsSnapshot(s *models.Settings) (map[string]interface{}, error) {
	return audit.ToSnapshot(BuildSettings(s))
}

// Service runs the settings command and query
type Service struct {
	store Store
	audit AuditLogger
}

// NewService creates the settings service
func NewService(store Store, auditLogger AuditLogger) *Service {
	return &Service{store: store, audit: auditLogger}
}

// GetSettings returns the settings. Before the first update all fields are empty.
func (s *Service) GetSettings(ctx context.Context) (*View, error) {
	current, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return BuildSettings(current), nil
}

// UpdateSettings merges values into the stored settings and upserts the row
func (s *Service) UpdateSettings(ctx context.Context, values Values, by audit.PerformedBy) (_ *View, err error) {
	defer func() { telemetry.ObserveCommand("UpdateSettings", apperr.Outcome(err)) }()

	current, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	values.applyTo(current)

	if err := s.store.Upsert(ctx, current); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	snapshot, err := BuildSettingsSnapshot(current)
	if err != nil {
		return nil, err
	}
	if _, err := s.audit.CreateAuditLog(ctx, audit.CreateAuditLogParams{
		EntityType: models.EntityTypeSettings,
		EntityID:   strconv.Itoa(models.SettingsID),
		Action:     models.AuditActionUpdate,
		UserID:     by.ID,
		UserName:   by.UserName(),
		Snapshot:   snapshot,
	}); err != nil {
		return nil, fmt.Errorf("failed to write audit log: %w", err)
	}

	return BuildSettings(current), nil
}

func (s *Service) load(ctx context.Context) (*models.Settings, error) {
	current, err := s.store.Get(ctx)
	if errors.Is(err, repositories.ErrNotFound) {
		return &models.Settings{ID: models.SettingsID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return current, nil
}
