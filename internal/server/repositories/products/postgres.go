package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

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

const selectProduct = `SELECT p.id, p.name, p.description, p.price, p.img_url, p.sku, p.stock,
		p.category_id, c.name, p.created_at, p.updated_at
		FROM products p
		JOIN categories c ON c.id = p.category_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (*models.Product, error) {
	p := &models.Product{}
	err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImgURL, &p.SKU, &p.Stock,
		&p.CategoryID, &p.CategoryName, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbx.Wrap(err)
	}
	defer rows.Close()

	result := make([]*models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, dbx.Wrap(err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.Wrap(err)
	}
	return result, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Product, error) {
	return r.query(ctx, selectProduct+`
		ORDER BY p.id`)
}

func (r *PostgresRepository) ListPage(ctx context.Context, offset, limit int) ([]*models.Product, error) {
	return r.query(ctx, selectProduct+`
		ORDER BY p.id
		OFFSET $1 LIMIT $2`, offset, limit)
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM products`).Scan(&n); err != nil {
		return 0, dbx.Wrap(err)
	}
	return n, nil
}

func (r *PostgresRepository) ListByCategory(ctx context.Context, categoryID int64) ([]*models.Product, error) {
	return r.query(ctx, selectProduct+`
		WHERE p.category_id = $1
		ORDER BY p.id`, categoryID)
}

func (r *PostgresRepository) Search(ctx context.Context, term string) ([]*models.Product, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(term)) + "%"
	return r.query(ctx, selectProduct+`
		WHERE p.name ILIKE $1 OR p.description ILIKE $1
		ORDER BY p.id`, pattern)
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, selectProduct+`
		WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, dbx.Wrap(err)
	}
	return p, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, dbx.Wrap(err)
	}
	return exists, nil
}

func (r *PostgresRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE lower(btrim(name)) = lower(btrim($1)))`, name).Scan(&exists)
	if err != nil {
		return false, dbx.Wrap(err)
	}
	return exists, nil
}

func (r *PostgresRepository) Create(ctx context.Context, in *models.ProductInput) (*models.Product, error) {
	query :=
		`INSERT INTO products (name, description, price, img_url, sku, stock, category_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id
		 `

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		in.Name, in.Description, in.Price, in.ImgURL, in.SKU, in.Stock, in.CategoryID).Scan(&id)
	if err != nil {
		return nil, mapWriteError(err, in.Name)
	}

	return r.Get(ctx, id)
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, in *models.ProductInput) error {
	query :=
		`UPDATE products
		 SET name = $2, description = $3, price = $4, img_url = $5, sku = $6, stock = $7,
		     category_id = $8, updated_at = now()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		id, in.Name, in.Description, in.Price, in.ImgURL, in.SKU, in.Stock, in.CategoryID)
	if err != nil {
		return mapWriteError(err, in.Name)
	}
	return expectOne(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return dbx.Wrap(err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) Buy(ctx context.Context, name string, quantity int) error {
	query :=
		`UPDATE products
		 SET stock = stock - $2, updated_at = now()
		 WHERE lower(btrim(name)) = lower(btrim($1)) AND stock >= $2
		 `

	res, err := r.db.ExecContext(ctx, query, name, quantity)
	if err != nil {
		return dbx.Wrap(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return dbx.Wrap(err)
	}
	if n == 0 {
		return common.ErrInsufficientStock
	}
	return nil
}

func mapWriteError(err error, name string) error {
	switch {
	case dbx.IsUniqueViolation(err):
		return fmt.Errorf("%w: product %q", common.ErrConflict, name)
	case dbx.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: category does not exist", common.ErrValidation)
	default:
		return dbx.Wrap(err)
	}
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

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
