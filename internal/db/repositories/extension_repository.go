// extension_repository.go implements ExtensionRepository for the providers attached to configurations.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
)

const extensionColumns = `id, configuration_id, name, external_id, enabled, "values", configurable_arguments, state`

// ExtensionRepository handles extension database operations
type ExtensionRepository struct {
	db *sqlx.DB
}

// NewExtensionRepository creates a new ExtensionRepository
func NewExtensionRepository(db *sqlx.DB) *ExtensionRepository {
	return &ExtensionRepository{db: db}
}

// Get returns an extension by id
func (r *ExtensionRepository) Get(ctx context.Context, id int64) (*models.Extension, error) {
	var e models.Extension
	err := r.db.GetContext(ctx, &e, `SELECT `+extensionColumns+` FROM extensions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListByConfiguration returns the extensions of a configuration ordered by id
func (r *ExtensionRepository) ListByConfiguration(ctx context.Context, configurationID int64) ([]*models.Extension, error) {
	extensions := make([]*models.Extension, 0)
	err := r.db.SelectContext(ctx, &extensions,
		`SELECT `+extensionColumns+` FROM extensions WHERE configuration_id = $1 ORDER BY id`, configurationID)
	return extensions, err
}

// Create inserts an extension and sets its id
func (r *ExtensionRepository) Create(ctx context.Context, e *models.Extension) error {
	return r.db.QueryRowxContext(ctx, `
		INSERT INTO extensions (configuration_id, name, external_id, enabled, "values", configurable_arguments, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		e.ConfigurationID, e.Name, e.ExternalID, e.Enabled, e.Values, e.ConfigurableArguments, e.State,
	).Scan(&e.ID)
}

// Update writes all mutable columns of e
func (r *ExtensionRepository) Update(ctx context.Context, e *models.Extension) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE extensions SET
			name = $2, external_id = $3, enabled = $4, "values" = $5, configurable_arguments = $6, state = $7
		WHERE id = $1`,
		e.ID, e.Name, e.ExternalID, e.Enabled, e.Values, e.ConfigurableArguments, e.State)
	if err != nil {
		return err
	}
	return checkAffected(res.RowsAffected())
}

// Delete removes an extension. ErrNotFound means nothing was deleted.
func (r *ExtensionRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM extensions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(res.RowsAffected())
}

// ExistsWithValues reports whether any extension's values contain the given JSON object.
func (r *ExtensionRepository) ExistsWithValues(ctx context.Context, values map[string]interface{}) (bool, error) {
	doc, err := json.Marshal(values)
	if err != nil {
		return false, err
	}
	var exists bool
	err = r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM extensions WHERE "values" @> $1::jsonb)`, string(doc))
	return exists, err
}
