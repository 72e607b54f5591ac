package repositories

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
)

var settingsCols = []string{
	"id", "name", "language", "welcome_text", "agent_name", "chat_footer", "chat_suggestions",
	"custom_css", "logo", "primary_color", "primary_content_color", "site_links",
}

func newSettingsRepo(t *testing.T) (*SettingsRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSettingsRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestSettingsGet_Found(t *testing.T) {
	repo, mock := newSettingsRepo(t)
	mock.ExpectQuery("SELECT.*FROM settings WHERE id").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(settingsCols).
			AddRow(1, "c4", "en", nil, nil, nil, nil, nil, nil, "#ff0000", nil,
				[]byte(`[{"text":"Docs","link":"https://docs"}]`)))

	s, err := repo.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *s.Name != "c4" || len(s.SiteLinks) != 1 || s.SiteLinks[0].Text != "Docs" {
		t.Errorf("got %+v", s)
	}
}

func TestSettingsGet_NotFound(t *testing.T) {
	repo, mock := newSettingsRepo(t)
	mock.ExpectQuery("SELECT.*FROM settings").WillReturnRows(sqlmock.NewRows(settingsCols))

	if _, err := repo.Get(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSettingsUpsert_ForcesSingletonID(t *testing.T) {
	repo, mock := newSettingsRepo(t)
	mock.ExpectExec("INSERT INTO settings.*ON CONFLICT").
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := &models.Settings{ID: 42}
	if err := repo.Upsert(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ID != models.SettingsID {
		t.Errorf("ID = %d, want %d", s.ID, models.SettingsID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
