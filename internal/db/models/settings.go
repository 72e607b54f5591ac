// Package models - settings.go defines the singleton Settings model.
package models

import "database/sql/driver"

// SettingsID is the primary key of the only settings row.
const SettingsID = 1

// Settings holds the global look and feel of the chat UI.
type Settings struct {
	ID                  int             `db:"id"`
	Name                *string         `db:"name"`
	Language            *string         `db:"language"`
	WelcomeText         *string         `db:"welcome_text"`
	AgentName           *string         `db:"agent_name"`
	ChatFooter          *string         `db:"chat_footer"`
	ChatSuggestions     ChatSuggestions `db:"chat_suggestions"`
	CustomCSS           *string         `db:"custom_css"`
	Logo                *string         `db:"logo"`
	PrimaryColor        *string         `db:"primary_color"`
	PrimaryContentColor *string         `db:"primary_content_color"`
	SiteLinks           SiteLinks       `db:"site_links"`
}

// SiteLink is a link rendered in the navigation.
type SiteLink struct {
	Text string `json:"text"`
	Link string `json:"link"`
}

// SiteLinks is stored as a JSON array.
type SiteLinks []SiteLink

// Scan implements sql.Scanner
func (s *SiteLinks) Scan(src interface{}) error {
	*s = nil
	return scanJSON(src, s)
}

// Value implements driver.Valuer
func (s SiteLinks) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return valueJSON([]SiteLink(s))
}
