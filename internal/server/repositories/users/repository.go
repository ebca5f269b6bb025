package users

import (
	"context"

	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
)

// Repository persists user records. Username lookups compare the
// normalized form (trimmed, lowercased).
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	ExistsByUserName(ctx context.Context, userName string) (bool, error)
	List(ctx context.Context) ([]*models.User, error)
}
