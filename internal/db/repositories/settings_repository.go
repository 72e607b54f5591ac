// settings_repository.go implements SettingsRepository for the singleton settings row.
package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
)

// SettingsRepository handles settings database operations
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the settings row
func (r *SettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	var s models.Settings
	err := r.db.GetContext(ctx, &s, `
		SELECT id, name, language, welcome_text, agent_name, chat_footer, chat_suggestions,
			custom_css, logo, primary_color, primary_content_color, site_links
		FROM settings WHERE id = $1`, models.SettingsID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert writes s as the settings row. The id is always forced to the singleton id.
func (r *SettingsRepository) Upsert(ctx context.Context, s *models.Settings) error {
	s.ID = models.SettingsID
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (id, name, language, welcome_text, agent_name, chat_footer, chat_suggestions,
			custom_css, logo, primary_color, primary_content_color, site_links)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			language = EXCLUDED.language,
			welcome_text = EXCLUDED.welcome_text,
			agent_name = EXCLUDED.agent_name,
			chat_footer = EXCLUDED.chat_footer,
			chat_suggestions = EXCLUDED.chat_suggestions,
			custom_css = EXCLUDED.custom_css,
			logo = EXCLUDED.logo,
			primary_color = EXCLUDED.primary_color,
			primary_content_color = EXCLUDED.primary_content_color,
			site_links = EXCLUDED.site_links`,
		s.ID, s.Name, s.Language, s.WelcomeText, s.AgentName, s.ChatFooter, s.ChatSuggestions,
		s.CustomCSS, s.Logo, s.PrimaryColor, s.PrimaryContentColor, s.SiteLinks)
	return err
}
