// Package models - configuration.go defines the Configuration (assistant) model.
package models

import (
	"database/sql/driver"
	"time"
)

// Configuration status values. Deleted marks a soft-deleted configuration that
// is still referenced by chat history.
const (
	ConfigurationStatusEnabled  = "enabled"
	ConfigurationStatusDisabled = "disabled"
	ConfigurationStatusDeleted  = "deleted"
)

// Configuration is an assistant definition.
type Configuration struct {
	ID               int64           `db:"id"`
	Name             string          `db:"name"`
	Description      string          `db:"description"`
	AgentName        *string         `db:"agent_name"`
	ChatFooter       *string         `db:"chat_footer"`
	ChatSuggestions  ChatSuggestions `db:"chat_suggestions"`
	ExecutorEndpoint *string         `db:"executor_endpoint"`
	ExecutorHeaders  *string         `db:"executor_headers"`
	Status           string          `db:"status"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`

	// UserGroupIDs is loaded from configurations_user_groups.
	UserGroupIDs []string `db:"-"`
}

// Enabled reports whether the configuration is active.
func (c *Configuration) Enabled() bool {
	return c.Status == ConfigurationStatusEnabled
}

// ChatSuggestion is one suggestion chip shown in an empty chat.
type ChatSuggestion struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Text     string `json:"text"`
}

// ChatSuggestions is stored as a JSON array.
type ChatSuggestions []ChatSuggestion

// Scan implements sql.Scanner
func (s *ChatSuggestions) Scan(src interface{}) error {
	*s = nil
	return scanJSON(src, s)
}

// Value implements driver.Valuer
func (s ChatSuggestions) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return valueJSON([]ChatSuggestion(s))
}
