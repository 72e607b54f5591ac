// configuration_repository.go implements ConfigurationRepository, providing database queries for
// assistants, their user group assignments, and the hard/soft delete paths.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
)

const configurationColumns = `id, name, description, agent_name, chat_footer, chat_suggestions,
	executor_endpoint, executor_headers, status, created_at, updated_at`

// ConfigurationRepository handles configuration database operations
type ConfigurationRepository struct {
	db *sqlx.DB
}

// NewConfigurationRepository creates a new ConfigurationRepository
func NewConfigurationRepository(db *sqlx.DB) *ConfigurationRepository {
	return &ConfigurationRepository{db: db}
}

// Get returns a configuration by id regardless of its status.
func (r *ConfigurationRepository) Get(ctx context.Context, id int64) (*models.Configuration, error) {
	var c models.Configuration
	err := r.db.GetContext(ctx, &c, `SELECT `+configurationColumns+` FROM configurations WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.db.SelectContext(ctx, &c.UserGroupIDs,
		`SELECT user_group_id FROM configurations_user_groups WHERE configuration_id = $1 ORDER BY user_group_id`, id); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all configurations that are not soft-deleted, optionally only the enabled ones.
func (r *ConfigurationRepository) List(ctx context.Context, enabledOnly bool) ([]*models.Configuration, error) {
	query := `SELECT ` + configurationColumns + ` FROM configurations WHERE status <> 'deleted'`
	if enabledOnly {
		query += ` AND status = 'enabled'`
	}
	query += ` ORDER BY id`

	configs := make([]*models.Configuration, 0)
	if err := r.db.SelectContext(ctx, &configs, query); err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return configs, nil
	}

	ids := make([]int64, len(configs))
	byID := make(map[int64]*models.Configuration, len(configs))
	for i, c := range configs {
		ids[i] = c.ID
		byID[c.ID] = c
	}

	var links []struct {
		ConfigurationID int64  `db:"configuration_id"`
		UserGroupID     string `db:"user_group_id"`
	}
	err := r.db.SelectContext(ctx, &links,
		`SELECT configuration_id, user_group_id FROM configurations_user_groups
		 WHERE configuration_id = ANY($1) ORDER BY configuration_id, user_group_id`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	for _, l := range links {
		if c, ok := byID[l.ConfigurationID]; ok {
			c.UserGroupIDs = append(c.UserGroupIDs, l.UserGroupID)
		}
	}
	return configs, nil
}

// Create inserts a configuration and its user group links. ID and timestamps are set from the database.
func (r *ConfigurationRepository) Create(ctx context.Context, c *models.Configuration) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // nolint:errcheck

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO configurations (name, description, agent_name, chat_footer, chat_suggestions,
			executor_endpoint, executor_headers, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		c.Name, c.Description, c.AgentName, c.ChatFooter, c.ChatSuggestions,
		c.ExecutorEndpoint, c.ExecutorHeaders, c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return err
	}

	if err := insertConfigurationUserGroups(ctx, tx, c.ID, c.UserGroupIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// Update writes all columns of c and replaces its user group links.
func (r *ConfigurationRepository) Update(ctx context.Context, c *models.Configuration) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // nolint:errcheck

	err = tx.QueryRowxContext(ctx, `
		UPDATE configurations SET
			name = $2, description = $3, agent_name = $4, chat_footer = $5, chat_suggestions = $6,
			executor_endpoint = $7, executor_headers = $8, status = $9, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		c.ID, c.Name, c.Description, c.AgentName, c.ChatFooter, c.ChatSuggestions,
		c.ExecutorEndpoint, c.ExecutorHeaders, c.Status,
	).Scan(&c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM configurations_user_groups WHERE configuration_id = $1`, c.ID); err != nil {
		return err
	}
	if err := insertConfigurationUserGroups(ctx, tx, c.ID, c.UserGroupIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes the conversations of the configuration that were never used and then the
// configuration itself. A configuration still referenced by chat history yields ErrReferenced.
func (r *ConfigurationRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // nolint:errcheck

	if err := deleteEmptyConversations(ctx, tx, id); err != nil {
		return mapDeleteError(err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM configurations WHERE id = $1`, id)
	if err != nil {
		return mapDeleteError(err)
	}
	n, err := res.RowsAffected()
	if err := checkAffected(n, err); err != nil {
		return err
	}
	return mapDeleteError(tx.Commit())
}

// SoftDelete hands the conversations of the configuration over to the first other enabled
// configuration and marks it as deleted.
func (r *ConfigurationRepository) SoftDelete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // nolint:errcheck

	var current int64
	err = tx.GetContext(ctx, &current, `SELECT id FROM configurations WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	var replacement int64
	err = tx.GetContext(ctx, &replacement, `
		SELECT id FROM configurations
		WHERE id <> $1 AND status = 'enabled'
		ORDER BY id ASC LIMIT 1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoReplacement
	}
	if err != nil {
		return err
	}

	if err := deleteEmptyConversations(ctx, tx, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE conversations SET configuration_id = $2 WHERE configuration_id = $1`, id, replacement); err != nil {
		return fmt.Errorf("failed to reassign conversations: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE configurations SET status = 'deleted', updated_at = now() WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteEmptyConversations(ctx context.Context, tx *sqlx.Tx, configurationID int64) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM conversations
		WHERE configuration_id = $1 AND llm IS NULL AND name IS NULL`, configurationID)
	return err
}

func insertConfigurationUserGroups(ctx context.Context, tx *sqlx.Tx, configurationID int64, groupIDs []string) error {
	for _, groupID := range groupIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO configurations_user_groups (configuration_id, user_group_id) VALUES ($1, $2)`,
			configurationID, groupID); err != nil {
			return err
		}
	}
	return nil
}

func mapDeleteError(err error) error {
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: %v", ErrReferenced, err)
	}
	return err
}
