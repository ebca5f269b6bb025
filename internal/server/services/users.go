package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/repomanager"
)

// UserService serves the admin views of user accounts.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager) *UserService {
	return &UserService{db: db, repomanager: m}
}

func (s *UserService) List(ctx context.Context) ([]*models.UserProfile, error) {
	list, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.UserProfile, 0, len(list))
	for _, u := range list {
		out = append(out, u.Profile())
	}
	return out, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.UserProfile, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Profile(), nil
}
