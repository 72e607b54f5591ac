package extensions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codecentric/c4-genai-suite/backend/internal/apperr"
	"github.com/codecentric/c4-genai-suite/backend/internal/audit"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
)

func TestCreateConfiguration_DefaultsToDisabled(t *testing.T) {
	f := newFixture()
	f.configurations.nextID = 6

	view, err := f.svc.CreateConfiguration(context.Background(), ConfigurationValues{
		Name:        strPtr("Bot"),
		Description: strPtr("d"),
	}, admin)
	require.NoError(t, err)

	assert.Equal(t, int64(7), view.ID)
	assert.Equal(t, models.ConfigurationStatusDisabled, view.Status)
	assert.False(t, view.Enabled)

	require.Len(t, f.audit.entries, 1)
	entry := f.audit.last()
	assert.Equal(t, models.EntityTypeConfiguration, entry.EntityType)
	assert.Equal(t, "7", entry.EntityID)
	assert.Equal(t, models.AuditActionCreate, entry.Action)
	assert.Equal(t, "u1", entry.UserID)
	require.NotNil(t, entry.UserName)
	assert.Equal(t, "Alice", *entry.UserName)
	assert.Equal(t, "Bot", entry.Snapshot["name"])
	assert.Equal(t, float64(7), entry.Snapshot["id"])
	assert.Equal(t, false, entry.Snapshot["enabled"])
}

func TestCreateConfiguration_RequiresName(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateConfiguration(context.Background(), ConfigurationValues{Name: strPtr("  ")}, admin)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Empty(t, f.audit.entries)
	assert.Empty(t, f.configurations.items)
}

func TestCreateConfiguration_KeepsKnownUserGroups(t *testing.T) {
	f := newFixture()

	view, err := f.svc.CreateConfiguration(context.Background(), ConfigurationValues{
		Name:         strPtr("Bot"),
		Enabled:      boolPtr(true),
		UserGroupIDs: []string{"sales", "missing", "admin"},
	}, admin)
	require.NoError(t, err)

	assert.True(t, view.Enabled)
	assert.Equal(t, []string{"admin", "sales"}, view.UserGroupIDs)
	assert.Equal(t, []interface{}{"admin", "sales"}, f.audit.last().Snapshot["userGroupIds"])
}

func TestCreateConfiguration_MasksExecutorHeaders(t *testing.T) {
	f := newFixture()

	view, err := f.svc.CreateConfiguration(context.Background(), ConfigurationValues{
		Name:            strPtr("Bot"),
		ExecutorHeaders: strPtr("Authorization: Bearer abc"),
	}, admin)
	require.NoError(t, err)

	require.NotNil(t, view.ExecutorHeaders)
	assert.Equal(t, "Authorization: Bearer abc", *view.ExecutorHeaders)
	assert.Equal(t, audit.Redacted, f.audit.last().Snapshot["executorHeaders"])
}

func TestCreateConfiguration_AuditFailure(t *testing.T) {
	f := newFixture()
	f.audit.err = errors.New("db down")

	_, err := f.svc.CreateConfiguration(context.Background(), ConfigurationValues{Name: strPtr("Bot")}, admin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestUpdateConfiguration_PartialUpdate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.CreateConfiguration(ctx, ConfigurationValues{
		Name:         strPtr("Bot"),
		Description:  strPtr("first"),
		Enabled:      boolPtr(true),
		AgentName:    strPtr("Agent"),
		UserGroupIDs: []string{"sales"},
	}, admin)
	require.NoError(t, err)

	updated, err := f.svc.UpdateConfiguration(ctx, created.ID, ConfigurationValues{
		Description: strPtr("second"),
	}, admin)
	require.NoError(t, err)

	assert.Equal(t, "Bot", updated.Name)
	assert.Equal(t, "second", updated.Description)
	assert.True(t, updated.Enabled)
	require.NotNil(t, updated.AgentName)
	assert.Equal(t, "Agent", *updated.AgentName)
	assert.Equal(t, []string{"sales"}, updated.UserGroupIDs)

	require.Len(t, f.audit.entries, 2)
	entry := f.audit.last()
	assert.Equal(t, models.AuditActionUpdate, entry.Action)
	assert.Equal(t, "second", entry.Snapshot["description"])
}

func TestUpdateConfiguration_Disable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.CreateConfiguration(ctx, ConfigurationValues{Name: strPtr("Bot"), Enabled: boolPtr(true)}, admin)
	require.NoError(t, err)

	updated, err := f.svc.UpdateConfiguration(ctx, created.ID, ConfigurationValues{Enabled: boolPtr(false)}, admin)
	require.NoError(t, err)
	assert.Equal(t, models.ConfigurationStatusDisabled, updated.Status)
}

func TestUpdateConfiguration_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.UpdateConfiguration(context.Background(), 42, ConfigurationValues{Name: strPtr("x")}, admin)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Empty(t, f.audit.entries)
}

func TestUpdateConfiguration_RejectsEmptyName(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.CreateConfiguration(ctx, ConfigurationValues{Name: strPtr("Bot")}, admin)
	require.NoError(t, err)

	_, err = f.svc.UpdateConfiguration(ctx, created.ID, ConfigurationValues{Name: strPtr("")}, admin)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Len(t, f.audit.entries, 1)
}

func TestDeleteConfiguration_HardDelete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.CreateConfiguration(ctx, ConfigurationValues{Name: strPtr("Bot")}, admin)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteConfiguration(ctx, created.ID, admin))
	assert.Empty(t, f.configurations.items)

	entry := f.audit.last()
	assert.Equal(t, models.AuditActionDelete, entry.Action)
	assert.Equal(t, "Bot", entry.Snapshot["name"])
}

func TestDeleteConfiguration_SoftDeleteWhenReferenced(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.CreateConfiguration(ctx, ConfigurationValues{Name: strPtr("Bot"), Enabled: boolPtr(true)}, admin)
	require.NoError(t, err)
	f.configurations.referenced[created.ID] = true

	require.NoError(t, f.svc.DeleteConfiguration(ctx, created.ID, admin))

	stored := f.configurations.items[created.ID]
	require.NotNil(t, stored)
	assert.Equal(t, models.ConfigurationStatusDeleted, stored.Status)

	entry := f.audit.last()
	assert.Equal(t, models.AuditActionDelete, entry.Action)
	assert.Equal(t, models.ConfigurationStatusEnabled, entry.Snapshot["status"])

	listed, err := f.svc.GetConfigurations(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, listed)

	view, err := f.svc.GetConfiguration(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConfigurationStatusDeleted, view.Status)

	err = f.svc.DeleteConfiguration(ctx, created.ID, admin)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteConfiguration_NoReplacement(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.CreateConfiguration(ctx, ConfigurationValues{Name: strPtr("Bot")}, admin)
	require.NoError(t, err)
	f.configurations.referenced[created.ID] = true
	f.configurations.noReplacement = true

	err = f.svc.DeleteConfiguration(ctx, created.ID, admin)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Len(t, f.audit.entries, 1)
}

func TestDeleteConfiguration_NotFound(t *testing.T) {
	f := newFixture()

	err := f.svc.DeleteConfiguration(context.Background(), 9, admin)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Empty(t, f.audit.entries)
}

func TestGetConfigurations_EnabledOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.CreateConfiguration(ctx, ConfigurationValues{Name: strPtr("On"), Enabled: boolPtr(true)}, admin)
	require.NoError(t, err)
	_, err = f.svc.CreateConfiguration(ctx, ConfigurationValues{Name: strPtr("Off")}, admin)
	require.NoError(t, err)

	all, err := f.svc.GetConfigurations(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	enabled, err := f.svc.GetConfigurations(ctx, true)
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, "On", enabled[0].Name)
	assert.NotNil(t, enabled[0].ChatSuggestions)
}

func TestDuplicateConfiguration(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	source, err := f.svc.CreateConfiguration(ctx, ConfigurationValues{
		Name:            strPtr("Bot"),
		Enabled:         boolPtr(true),
		ChatSuggestions: &[]models.ChatSuggestion{{Title: "Hi", Text: "Hello"}},
		UserGroupIDs:    []string{"sales"},
	}, admin)
	require.NoError(t, err)
	original := createOpenAI(t, f, source.ID)
	f.extensions.items[99] = &models.Extension{ID: 99, ConfigurationID: source.ID, Name: "retired", Values: models.JSONMap{}}
	f.audit.entries = nil

	copied, err := f.svc.DuplicateConfiguration(ctx, source.ID, admin)
	require.NoError(t, err)

	assert.NotEqual(t, source.ID, copied.ID)
	assert.Equal(t, "Bot (copy)", copied.Name)
	assert.True(t, copied.Enabled)
	assert.Equal(t, []string{"sales"}, copied.UserGroupIDs)
	assert.Equal(t, source.ChatSuggestions, copied.ChatSuggestions)

	views, err := f.svc.GetExtensions(ctx, copied.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "open-ai-model", views[0].Name)
	assert.NotEqual(t, original.ExternalID, views[0].ExternalID)
	assert.Equal(t, "secret123", f.extensions.items[views[0].ID].Values["apiKey"])

	require.Len(t, f.audit.entries, 2)
	assert.Equal(t, models.EntityTypeConfiguration, f.audit.entries[0].EntityType)
	assert.Equal(t, models.AuditActionCreate, f.audit.entries[0].Action)
	assert.Equal(t, "Bot (copy)", f.audit.entries[0].Snapshot["name"])
	assert.Equal(t, models.EntityTypeExtension, f.audit.entries[1].EntityType)
	assert.Equal(t, "Bot (copy)", f.audit.entries[1].Snapshot["configurationName"])
	assert.Equal(t, audit.Redacted, f.audit.entries[1].Snapshot["values"].(map[string]interface{})["apiKey"])

	sourceViews, err := f.svc.GetExtensions(ctx, source.ID)
	require.NoError(t, err)
	assert.Len(t, sourceViews, 1)
}

func TestDuplicateConfiguration_NotFound(t *testing.T) {
	f := newFixture()
	id := createBot(t, f)
	f.configurations.referenced[id] = true
	require.NoError(t, f.svc.DeleteConfiguration(context.Background(), id, admin))

	_, err := f.svc.DuplicateConfiguration(context.Background(), id, admin)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = f.svc.DuplicateConfiguration(context.Background(), 404, admin)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
