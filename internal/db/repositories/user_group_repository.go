// user_group_repository.go implements UserGroupRepository for user groups and their member counts.
package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
)

const userGroupColumns = `id, name, is_admin, is_builtin, monthly_user_tokens`

// UserGroupRepository handles user group database operations
type UserGroupRepository struct {
	db *sqlx.DB
}

// NewUserGroupRepository creates a new UserGroupRepository
func NewUserGroupRepository(db *sqlx.DB) *UserGroupRepository {
	return &UserGroupRepository{db: db}
}

// Get returns a user group by id
func (r *UserGroupRepository) Get(ctx context.Context, id string) (*models.UserGroup, error) {
	var g models.UserGroup
	err := r.db.GetContext(ctx, &g, `SELECT `+userGroupColumns+` FROM user_groups WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// List returns all user groups ordered by name
func (r *UserGroupRepository) List(ctx context.Context) ([]*models.UserGroup, error) {
	groups := make([]*models.UserGroup, 0)
	err := r.db.SelectContext(ctx, &groups, `SELECT `+userGroupColumns+` FROM user_groups ORDER BY name`)
	return groups, err
}

// FindByIDs returns the groups matching ids. Unknown ids are ignored.
func (r *UserGroupRepository) FindByIDs(ctx context.Context, ids []string) ([]*models.UserGroup, error) {
	groups := make([]*models.UserGroup, 0, len(ids))
	if len(ids) == 0 {
		return groups, nil
	}
	err := r.db.SelectContext(ctx, &groups,
		`SELECT `+userGroupColumns+` FROM user_groups WHERE id = ANY($1) ORDER BY id`, pq.Array(ids))
	return groups, err
}

// Create inserts a user group
func (r *UserGroupRepository) Create(ctx context.Context, g *models.UserGroup) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_groups (id, name, is_admin, is_builtin, monthly_user_tokens)
		VALUES ($1, $2, $3, $4, $5)`,
		g.ID, g.Name, g.IsAdmin, g.IsBuiltIn, g.MonthlyUserTokens)
	return err
}

// Update writes the editable columns of g
func (r *UserGroupRepository) Update(ctx context.Context, g *models.UserGroup) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE user_groups SET name = $2, is_admin = $3, monthly_user_tokens = $4
		WHERE id = $1`,
		g.ID, g.Name, g.IsAdmin, g.MonthlyUserTokens)
	if err != nil {
		return err
	}
	return checkAffected(res.RowsAffected())
}

// Delete removes a user group
func (r *UserGroupRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_groups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(res.RowsAffected())
}

// CountUsers returns the number of users assigned to the group
func (r *UserGroupRepository) CountUsers(ctx context.Context, id string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users_user_groups WHERE user_group_id = $1`, id)
	return count, err
}
