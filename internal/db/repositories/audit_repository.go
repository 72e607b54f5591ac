// audit_repository.go implements AuditRepository, providing database queries for appending
// and reading audit log entries with filtered, paginated listing.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
)

const auditColumns = `id, entity_type, entity_id, action, user_id, user_name, snapshot, created_at`

// AuditRepository handles audit log database operations
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// AuditFilters contains filters for querying audit logs. All set filters must match.
type AuditFilters struct {
	EntityType *string
	EntityID   *string
	// ConfigurationID matches the configuration itself and the extensions whose
	// snapshot belongs to it.
	ConfigurationID *int64
}

// CreateAuditLog inserts an entry and sets its id and creation time
func (r *AuditRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.Snapshot == nil {
		log.Snapshot = models.JSONMap{}
	}
	return r.db.QueryRowxContext(ctx, `
		INSERT INTO audit_log (entity_type, entity_id, action, user_id, user_name, snapshot)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		log.EntityType, log.EntityID, log.Action, log.UserID, log.UserName, log.Snapshot,
	).Scan(&log.ID, &log.CreatedAt)
}

// ListAuditLogs retrieves audit logs with optional filters and pagination, newest first
func (r *AuditRepository) ListAuditLogs(ctx context.Context, filters AuditFilters, limit, offset int) ([]*models.AuditLog, int, error) {
	countQuery := `SELECT COUNT(*) FROM audit_log WHERE 1=1`
	query := `SELECT ` + auditColumns + ` FROM audit_log WHERE 1=1`

	args := make([]interface{}, 0)
	paramIndex := 1

	if filters.EntityType != nil {
		countQuery += fmt.Sprintf(` AND entity_type = $%d`, paramIndex)
		query += fmt.Sprintf(` AND entity_type = $%d`, paramIndex)
		args = append(args, *filters.EntityType)
		paramIndex++
	}

	if filters.EntityID != nil {
		countQuery += fmt.Sprintf(` AND entity_id = $%d`, paramIndex)
		query += fmt.Sprintf(` AND entity_id = $%d`, paramIndex)
		args = append(args, *filters.EntityID)
		paramIndex++
	}

	if filters.ConfigurationID != nil {
		clause := fmt.Sprintf(
			` AND ((entity_type = 'configuration' AND entity_id = $%d) OR (entity_type = 'extension' AND snapshot->>'configurationId' = $%d))`,
			paramIndex, paramIndex)
		countQuery += clause
		query += clause
		args = append(args, fmt.Sprintf("%d", *filters.ConfigurationID))
		paramIndex++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, paramIndex, paramIndex+1)
	args = append(args, limit, offset)

	logs := make([]*models.AuditLog, 0)
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// GetAuditLog retrieves a single audit log entry by id
func (r *AuditRepository) GetAuditLog(ctx context.Context, id int64) (*models.AuditLog, error) {
	var log models.AuditLog
	err := r.db.GetContext(ctx, &log, `SELECT `+auditColumns+` FROM audit_log WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// GetPreviousAuditLog returns the entry for the same entity written right before log.
func (r *AuditRepository) GetPreviousAuditLog(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error) {
	var prev models.AuditLog
	err := r.db.GetContext(ctx, &prev, `
		SELECT `+auditColumns+` FROM audit_log
		WHERE entity_type = $1 AND entity_id = $2 AND (created_at, id) < ($3, $4)
		ORDER BY created_at DESC, id DESC
		LIMIT 1`,
		log.EntityType, log.EntityID, log.CreatedAt, log.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &prev, nil
}
