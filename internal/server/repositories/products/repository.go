package products

import (
	"context"

	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]*models.Product, error)
	ListPage(ctx context.Context, offset, limit int) ([]*models.Product, error)
	Count(ctx context.Context) (int, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]*models.Product, error)
	// Search matches term against name or description, case-insensitively.
	Search(ctx context.Context, term string) ([]*models.Product, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, in *models.ProductInput) (*models.Product, error)
	Update(ctx context.Context, id int64, in *models.ProductInput) error
	Delete(ctx context.Context, id int64) error
	// Buy takes quantity units off the stock of the named product. It fails
	// with common.ErrInsufficientStock when not enough units are left.
	Buy(ctx context.Context, name string, quantity int) error
}
