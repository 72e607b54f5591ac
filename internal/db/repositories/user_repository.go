// user_repository.go implements UserRepository for user accounts and their group memberships.
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

const userColumns = `id, name, email, api_key, password_hash`

// UserRepository handles user database operations
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Get returns a user with its group ids
func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.db.SelectContext(ctx, &u.UserGroupIDs,
		`SELECT user_group_id FROM users_user_groups WHERE user_id = $1 ORDER BY user_group_id`, id); err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns a page of users whose name or email contains query, and the total match count.
func (r *UserRepository) List(ctx context.Context, query string, limit, offset int) ([]*models.User, int, error) {
	countQuery := `SELECT COUNT(*) FROM users WHERE 1=1`
	selectQuery := `SELECT ` + userColumns + ` FROM users WHERE 1=1`

	args := make([]interface{}, 0)
	paramIndex := 1

	if query != "" {
		filter := fmt.Sprintf(` AND (name ILIKE $%d OR email ILIKE $%d)`, paramIndex, paramIndex)
		countQuery += filter
		selectQuery += filter
		args = append(args, "%"+query+"%")
		paramIndex++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	selectQuery += fmt.Sprintf(` ORDER BY name, id LIMIT $%d OFFSET $%d`, paramIndex, paramIndex+1)
	args = append(args, limit, offset)

	users := make([]*models.User, 0)
	if err := r.db.SelectContext(ctx, &users, selectQuery, args...); err != nil {
		return nil, 0, err
	}
	if len(users) == 0 {
		return users, total, nil
	}

	ids := make([]string, len(users))
	byID := make(map[string]*models.User, len(users))
	for i, u := range users {
		ids[i] = u.ID
		byID[u.ID] = u
	}

	var links []struct {
		UserID      string `db:"user_id"`
		UserGroupID string `db:"user_group_id"`
	}
	err := r.db.SelectContext(ctx, &links,
		`SELECT user_id, user_group_id FROM users_user_groups
		 WHERE user_id = ANY($1) ORDER BY user_id, user_group_id`, pq.Array(ids))
	if err != nil {
		return nil, 0, err
	}
	for _, l := range links {
		if u, ok := byID[l.UserID]; ok {
			u.UserGroupIDs = append(u.UserGroupIDs, l.UserGroupID)
		}
	}
	return users, total, nil
}

// Create inserts a user and its group links
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // nolint:errcheck

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, name, email, api_key, password_hash)
		VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Name, u.Email, u.APIKey, u.PasswordHash); err != nil {
		return mapUniqueViolation(err)
	}
	if err := insertUserGroups(ctx, tx, u.ID, u.UserGroupIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// Update writes all mutable columns of u and replaces its group links
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // nolint:errcheck

	res, err := tx.ExecContext(ctx, `
		UPDATE users SET name = $2, email = $3, api_key = $4, password_hash = $5
		WHERE id = $1`,
		u.ID, u.Name, u.Email, u.APIKey, u.PasswordHash)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if err := checkAffected(res.RowsAffected()); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM users_user_groups WHERE user_id = $1`, u.ID); err != nil {
		return err
	}
	if err := insertUserGroups(ctx, tx, u.ID, u.UserGroupIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a user. Group links are removed by the cascade.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(res.RowsAffected())
}

func insertUserGroups(ctx context.Context, tx *sqlx.Tx, userID string, groupIDs []string) error {
	for _, groupID := range groupIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users_user_groups (user_id, user_group_id) VALUES ($1, $2)`, userID, groupID); err != nil {
			return err
		}
	}
	return nil
}
