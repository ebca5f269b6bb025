package categories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Category, error) {
	query :=
		`SELECT id, name, created_at FROM categories
		 ORDER BY name
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, dbx.Wrap(err)
	}
	defer rows.Close()

	result := make([]*models.Category, 0)
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, dbx.Wrap(err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.Wrap(err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Category, error) {
	query :=
		`SELECT id, name, created_at FROM categories
		 WHERE id = $1
		 `

	c := &models.Category{}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, dbx.Wrap(err)
	}
	return c, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, dbx.Wrap(err)
	}
	return exists, nil
}

func (r *PostgresRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE lower(btrim(name)) = lower(btrim($1)))`, name).Scan(&exists)
	if err != nil {
		return false, dbx.Wrap(err)
	}
	return exists, nil
}

func (r *PostgresRepository) Create(ctx context.Context, name string) (*models.Category, error) {
	query :=
		`INSERT INTO categories (name) VALUES ($1)
		 RETURNING id, created_at
		 `

	c := &models.Category{Name: name}
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&c.ID, &c.CreatedAt); err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: category %q", common.ErrConflict, name)
		}
		return nil, dbx.Wrap(err)
	}
	return c, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE categories SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("%w: category %q", common.ErrConflict, name)
		}
		return dbx.Wrap(err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: category %d still has products", common.ErrConflict, id)
		}
		return dbx.Wrap(err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return dbx.Wrap(err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
