package settings

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codecentric/c4-genai-suite/backend/internal/audit"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/repositories"
)

type memoryStore struct {
	row     *models.Settings
	upserts int
	getErr  error
}

func (m *memoryStore) Get(_ context.Context) (*models.Settings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.row == nil {
		return nil, repositories.ErrNotFound
	}
	out := *m.row
	return &out, nil
}

func (m *memoryStore) Upsert(_ context.Context, s *models.Settings) error {
	s.ID = models.SettingsID
	c := *s
	m.row = &c
	m.upserts++
	return nil
}

type recordingAudit struct {
	entries []audit.CreateAuditLogParams
}

func (r *recordingAudit) CreateAuditLog(_ context.Context, params audit.CreateAuditLogParams) (*models.AuditLog, error) {
	r.entries = append(r.entries, params)
	return &models.AuditLog{ID: int64(len(r.entries))}, nil
}

func decode(t *testing.T, body string) Values {
	t.Helper()
	var v Values
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func TestGetSettings_Empty(t *testing.T) {
	svc := NewService(&memoryStore{}, &recordingAudit{})

	view, err := svc.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Nil(t, view.Name)
	assert.Empty(t, view.SiteLinks)
	assert.NotNil(t, view.ChatSuggestions)
}

func TestUpdateSettings_UpsertsSingleton(t *testing.T) {
	store := &memoryStore{}
	rec := &recordingAudit{}
	svc := NewService(store, rec)
	by := audit.PerformedBy{ID: "u1", Name: "Alice"}

	view, err := svc.UpdateSettings(context.Background(), decode(t, `{
		"name": "c4",
		"primaryColor": "#fff",
		"siteLinks": [{"text": "Imprint", "link": "https://example.com"}]
	}`), by)
	require.NoError(t, err)

	require.NotNil(t, view.Name)
	assert.Equal(t, "c4", *view.Name)
	assert.Len(t, view.SiteLinks, 1)
	require.NotNil(t, store.row)
	assert.Equal(t, models.SettingsID, store.row.ID)

	require.Len(t, rec.entries, 1)
	entry := rec.entries[0]
	assert.Equal(t, models.EntityTypeSettings, entry.EntityType)
	assert.Equal(t, "1", entry.EntityID)
	assert.Equal(t, models.AuditActionUpdate, entry.Action)
	assert.Equal(t, "c4", entry.Snapshot["name"])
	assert.Equal(t, "#fff", entry.Snapshot["primaryColor"])
}

func TestUpdateSettings_PartialAndClear(t *testing.T) {
	name, color := "c4", "#fff"
	store := &memoryStore{row: &models.Settings{ID: models.SettingsID, Name: &name, PrimaryColor: &color}}
	rec := &recordingAudit{}
	svc := NewService(store, rec)

	view, err := svc.UpdateSettings(context.Background(), decode(t, `{"primaryColor": null, "language": "de"}`), audit.PerformedBy{ID: "u1"})
	require.NoError(t, err)

	require.NotNil(t, view.Name)
	assert.Equal(t, "c4", *view.Name)
	assert.Nil(t, view.PrimaryColor)
	require.NotNil(t, view.Language)
	assert.Equal(t, "de", *view.Language)
	assert.Nil(t, rec.entries[0].UserName)
}

func TestUpdateSettings_LoadError(t *testing.T) {
	store := &memoryStore{getErr: errors.New("db down")}
	rec := &recordingAudit{}
	svc := NewService(store, rec)

	_, err := svc.UpdateSettings(context.Background(), Values{}, audit.PerformedBy{ID: "u1"})
	require.Error(t, err)
	assert.Zero(t, store.upserts)
	assert.Empty(t, rec.entries)
}
