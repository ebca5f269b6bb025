package roles

import (
	"context"

	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
)

// Repository persists roles and user-role memberships.
type Repository interface {
	// Ensure returns the role called name, creating it if missing.
	// Concurrent callers converge on a single row.
	Ensure(ctx context.Context, name string) (*models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
	// Assign links a user to a role. Assigning twice is a no-op.
	Assign(ctx context.Context, userID string, roleID int64) error
	// ListForUser returns the user's roles, oldest assignment first.
	ListForUser(ctx context.Context, userID string) ([]*models.Role, error)
}
