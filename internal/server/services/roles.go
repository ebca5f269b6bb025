package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/roles"
)

// RoleRegistry creates roles on first use and manages memberships.
type RoleRegistry struct {
	roles roles.Repository
}

func NewRoleRegistry(repo roles.Repository) *RoleRegistry {
	return &RoleRegistry{roles: repo}
}

// EnsureRole returns the role called name, creating it if needed.
func (r *RoleRegistry) EnsureRole(ctx context.Context, name string) (*models.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewReasonsError(common.ErrValidation, "role name required")
	}
	return r.roles.Ensure(ctx, name)
}

// AssignRole is idempotent.
func (r *RoleRegistry) AssignRole(ctx context.Context, userID string, role *models.Role) error {
	return r.roles.Assign(ctx, userID, role.ID)
}

func (r *RoleRegistry) ListRoles(ctx context.Context, userID string) ([]*models.Role, error) {
	return r.roles.ListForUser(ctx, userID)
}
