package auditlog

import (
	"bytes"
	"context"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/codecentric/c4-genai-suite/backend/internal/apperr"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/repositories"
	"github.com/codecentric/c4-genai-suite/backend/internal/domain/paging"
)

type memoryStore struct {
	entries []*models.AuditLog
	listed  int
}

var base = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func (m *memoryStore) add(entityType, entityID, action string, snapshot models.JSONMap) *models.AuditLog {
	l := &models.AuditLog{
		ID:         int64(len(m.entries) + 1),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		UserID:     "u1",
		Snapshot:   snapshot,
		CreatedAt:  base.Add(time.Duration(len(m.entries)) * time.Minute),
	}
	m.entries = append(m.entries, l)
	return l
}

func (m *memoryStore) matches(l *models.AuditLog, f repositories.AuditFilters) bool {
	if f.EntityType != nil && l.EntityType != *f.EntityType {
		return false
	}
	if f.EntityID != nil && l.EntityID != *f.EntityID {
		return false
	}
	if f.ConfigurationID != nil {
		id := *f.ConfigurationID
		switch l.EntityType {
		case models.EntityTypeConfiguration:
			return l.EntityID == strconv.FormatInt(id, 10)
		case models.EntityTypeExtension:
			v, ok := l.Snapshot["configurationId"].(float64)
			return ok && int64(v) == id
		default:
			return false
		}
	}
	return true
}

func (m *memoryStore) ListAuditLogs(_ context.Context, f repositories.AuditFilters, limit, offset int) ([]*models.AuditLog, int, error) {
	m.listed++
	var out []*models.AuditLog
	for _, l := range m.entries {
		if m.matches(l, f) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	total := len(out)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return out[offset:end], total, nil
}

func (m *memoryStore) GetAuditLog(_ context.Context, id int64) (*models.AuditLog, error) {
	for _, l := range m.entries {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memoryStore) GetPreviousAuditLog(_ context.Context, log *models.AuditLog) (*models.AuditLog, error) {
	var prev *models.AuditLog
	for _, l := range m.entries {
		if l.EntityType == log.EntityType && l.EntityID == log.EntityID && l.ID < log.ID {
			prev = l
		}
	}
	if prev == nil {
		return nil, repositories.ErrNotFound
	}
	return prev, nil
}

func strPtr(s string) *string { return &s }

func TestGetAuditLogs_Pagination(t *testing.T) {
	store := &memoryStore{}
	for i := 0; i < 25; i++ {
		store.add(models.EntityTypeConfiguration, "7", models.AuditActionUpdate, models.JSONMap{"n": float64(i)})
	}
	svc := NewService(store)

	page, err := svc.GetAuditLogs(context.Background(), Query{Request: paging.Request{Page: 2, PageSize: 10}})
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	require.Len(t, page.Items, 5)
	assert.Equal(t, int64(5), page.Items[0].ID)
	assert.Equal(t, int64(1), page.Items[4].ID)

	first, err := svc.GetAuditLogs(context.Background(), Query{})
	require.NoError(t, err)
	assert.Len(t, first.Items, paging.DefaultPageSize)
	assert.Equal(t, int64(25), first.Items[0].ID)
}

func TestGetAuditLogs_Filters(t *testing.T) {
	store := &memoryStore{}
	store.add(models.EntityTypeConfiguration, "7", models.AuditActionCreate, models.JSONMap{"id": float64(7)})
	store.add(models.EntityTypeExtension, "1", models.AuditActionCreate, models.JSONMap{"configurationId": float64(7)})
	store.add(models.EntityTypeExtension, "2", models.AuditActionCreate, models.JSONMap{"configurationId": float64(8)})
	store.add(models.EntityTypeBucket, "7", models.AuditActionCreate, models.JSONMap{})
	svc := NewService(store)
	ctx := context.Background()

	configurationID := int64(7)
	page, err := svc.GetAuditLogs(ctx, Query{ConfigurationID: &configurationID})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	page, err = svc.GetAuditLogs(ctx, Query{ConfigurationID: &configurationID, EntityType: strPtr(models.EntityTypeExtension)})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "1", page.Items[0].EntityID)

	page, err = svc.GetAuditLogs(ctx, Query{EntityID: strPtr("7")})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	_, err = svc.GetAuditLogs(ctx, Query{EntityType: strPtr("conversation")})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestGetAuditLogByID_Previous(t *testing.T) {
	store := &memoryStore{}
	store.add(models.EntityTypeConfiguration, "7", models.AuditActionCreate, models.JSONMap{"name": "Bot"})
	store.add(models.EntityTypeConfiguration, "8", models.AuditActionCreate, models.JSONMap{"name": "Other"})
	store.add(models.EntityTypeConfiguration, "7", models.AuditActionUpdate, models.JSONMap{"name": "Bot 2"})
	svc := NewService(store)
	ctx := context.Background()

	entry, err := svc.GetAuditLogByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Bot 2", entry.Snapshot["name"])
	assert.Equal(t, "Bot", entry.PreviousSnapshot["name"])

	first, err := svc.GetAuditLogByID(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, first.PreviousSnapshot)

	_, err = svc.GetAuditLogByID(ctx, 99)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestExportAuditLogs(t *testing.T) {
	store := &memoryStore{}
	for i := 0; i < 150; i++ {
		store.add(models.EntityTypeSettings, "1", models.AuditActionUpdate, models.JSONMap{"name": "c4"})
	}
	store.add(models.EntityTypeBucket, "3", models.AuditActionDelete, models.JSONMap{"headers": "********"})
	svc := NewService(store)

	result, err := svc.ExportAuditLogs(context.Background(), Query{EntityType: strPtr(models.EntityTypeSettings)})
	require.NoError(t, err)
	assert.Equal(t, 150, result.Rows)
	assert.Equal(t, 2, store.listed)
	assert.Contains(t, result.FileName, ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(result.FileContent))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 151)
	assert.Equal(t, "Entity Type", rows[0][2])
	assert.Equal(t, "150", rows[1][0])
	assert.Equal(t, "settings", rows[1][2])
	assert.Equal(t, `{"name":"c4"}`, rows[1][7])
}

func TestExportAuditLogs_TruncatesOversizedSnapshot(t *testing.T) {
	store := &memoryStore{}
	long := strings.Repeat("a", 40000)
	store.add(models.EntityTypeSettings, "1", models.AuditActionUpdate, models.JSONMap{"welcomeText": long})
	svc := NewService(store)

	result, err := svc.ExportAuditLogs(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Rows)

	f, err := excelize.OpenReader(bytes.NewReader(result.FileContent))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	cell := rows[1][7]
	assert.Len(t, []rune(cell), excelize.TotalCellChars)
	assert.True(t, strings.HasSuffix(cell, truncatedMarker))
	assert.True(t, strings.HasPrefix(cell, `{"welcomeText":"aaaa`))
}

func TestFitCell(t *testing.T) {
	assert.Equal(t, "short", fitCell("short"))

	exact := strings.Repeat("ü", excelize.TotalCellChars)
	assert.Equal(t, exact, fitCell(exact))

	over := fitCell(strings.Repeat("ü", excelize.TotalCellChars+1))
	assert.Equal(t, excelize.TotalCellChars, utf8.RuneCountInString(over))
	assert.True(t, strings.HasSuffix(over, truncatedMarker))
}
