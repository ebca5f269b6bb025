package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/dbx"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts user, generating an ID when none is set. A username that
// collides with an existing one (case and whitespace aside) yields
// common.ErrConflict.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO users (id, username, normalized_email, password_hash, name)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.UserName, user.NormalizedEmail, user.PasswordHash, user.Name).Scan(&user.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: username %q", common.ErrConflict, user.UserName)
		}
		return nil, dbx.Wrap(err)
	}

	return user, nil
}

const selectUser = `SELECT id, username, normalized_email, password_hash, name, created_at FROM users`

func (r *PostgresRepository) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	query := selectUser + `
		 WHERE lower(btrim(username)) = $1
		 `
	return r.getOne(ctx, query, common.NormalizeUsername(userName))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}
	query := selectUser + `
		 WHERE id = $1
		 `
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.UserName, &user.NormalizedEmail, &user.PasswordHash, &user.Name, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, dbx.Wrap(err)
	}

	return user, nil
}

func (r *PostgresRepository) ExistsByUserName(ctx context.Context, userName string) (bool, error) {
	query :=
		`SELECT EXISTS (SELECT 1 FROM users WHERE lower(btrim(username)) = $1)
		 `

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, common.NormalizeUsername(userName)).Scan(&exists); err != nil {
		return false, dbx.Wrap(err)
	}
	return exists, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	query := selectUser + `
		 ORDER BY username
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, dbx.Wrap(err)
	}
	defer rows.Close()

	result := make([]*models.User, 0)
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.UserName, &user.NormalizedEmail, &user.PasswordHash, &user.Name, &user.CreatedAt); err != nil {
			return nil, dbx.Wrap(err)
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.Wrap(err)
	}

	return result, nil
}
