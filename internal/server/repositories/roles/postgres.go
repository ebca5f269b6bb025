package roles

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/dbx"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Ensure(ctx context.Context, name string) (*models.Role, error) {
	query :=
		`INSERT INTO roles (name) VALUES ($1)
		 ON CONFLICT (name) DO NOTHING
		 RETURNING id
		 `

	role := &models.Role{Name: name}
	err := r.db.QueryRowContext(ctx, query, name).Scan(&role.ID)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, dbx.Wrap(err)
	}

	// lost the insert race or the role was already there
	return r.GetByName(ctx, name)
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	query :=
		`SELECT id, name FROM roles
		 WHERE name = $1
		 `

	role := &models.Role{}
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&role.ID, &role.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, dbx.Wrap(err)
	}
	return role, nil
}

func (r *PostgresRepository) Assign(ctx context.Context, userID string, roleID int64) error {
	query :=
		`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, role_id) DO NOTHING
		 `

	if _, err := r.db.ExecContext(ctx, query, userID, roleID); err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return common.ErrorNotFound
		}
		return dbx.Wrap(err)
	}
	return nil
}

func (r *PostgresRepository) ListForUser(ctx context.Context, userID string) ([]*models.Role, error) {
	query :=
		`SELECT r.id, r.name FROM user_roles ur
		 JOIN roles r ON r.id = ur.role_id
		 WHERE ur.user_id = $1
		 ORDER BY ur.assigned_at, r.name
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, dbx.Wrap(err)
	}
	defer rows.Close()

	result := make([]*models.Role, 0, 1)
	for rows.Next() {
		role := &models.Role{}
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, dbx.Wrap(err)
		}
		result = append(result, role)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.Wrap(err)
	}
	return result, nil
}
