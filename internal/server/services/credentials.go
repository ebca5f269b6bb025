// Package services contains the server-side business logic: credential
// storage, roles, authentication and the product catalog.
package services

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/users"
)

// PasswordHasher is implemented by cryptox.Hasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(encoded, password string) bool
}

const minPasswordLength = 6

// PasswordPolicyViolations lists every rule password breaks. An empty
// result means the password is acceptable.
func PasswordPolicyViolations(password string) []string {
	var reasons []string
	if len([]rune(password)) < minPasswordLength {
		reasons = append(reasons, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	var digit, lower, upper bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		}
	}
	if !digit {
		reasons = append(reasons, "password must contain at least one digit")
	}
	if !lower {
		reasons = append(reasons, "password must contain at least one lowercase letter")
	}
	if !upper {
		reasons = append(reasons, "password must contain at least one uppercase letter")
	}
	return reasons
}

// CredentialStore owns user records and their password hashes. Plaintext
// passwords go in, only hashes are stored.
type CredentialStore struct {
	users  users.Repository
	hasher PasswordHasher
}

func NewCredentialStore(repo users.Repository, hasher PasswordHasher) *CredentialStore {
	return &CredentialStore{users: repo, hasher: hasher}
}

// Create enforces the password policy, hashes password and persists user.
// Policy failures are *common.ReasonsError of kind common.ErrValidation;
// a taken username is common.ErrConflict.
func (s *CredentialStore) Create(ctx context.Context, user *models.User, password string) (*models.User, error) {
	if reasons := PasswordPolicyViolations(password); len(reasons) > 0 {
		return nil, common.NewReasonsError(common.ErrValidation, reasons...)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := *user
	u.UserName = strings.TrimSpace(u.UserName)
	u.PasswordHash = hash

	return s.users.Create(ctx, &u)
}

func (s *CredentialStore) FindByUserName(ctx context.Context, userName string) (*models.User, error) {
	return s.users.GetByUserName(ctx, userName)
}

func (s *CredentialStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *CredentialStore) Exists(ctx context.Context, userName string) (bool, error) {
	return s.users.ExistsByUserName(ctx, userName)
}

// Verify checks password against the stored hash of user.
func (s *CredentialStore) Verify(user *models.User, password string) bool {
	return s.hasher.Verify(user.PasswordHash, password)
}
