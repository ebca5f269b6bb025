package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/dbx"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/repomanager"
	"github.com/samber/oops"
)

// Login outcome messages.
const (
	MsgUsernameRequired   = "username required"
	MsgUserNotFound       = "username not found"
	MsgPasswordRequired   = "password required"
	MsgInvalidCredentials = "invalid credentials"
	MsgLoginSuccessful    = "login successful"
)

// TokenIssuer is implemented by auth.TokenIssuer.
type TokenIssuer interface {
	Issue(claims models.TokenClaims, ttl time.Duration) (string, error)
	Validate(token string) (*models.TokenClaims, error)
}

// AuthService logs users in and registers new accounts.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	issuer      TokenIssuer
	tokenTTL    time.Duration
	log         logging.Logger
	dummyHash   string
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, hasher PasswordHasher, issuer TokenIssuer, tokenTTL time.Duration, log logging.Logger) *AuthService {
	// Verified against when the username is unknown.
	dummy, _ := hasher.Hash("dummy-password-for-timing")

	return &AuthService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		issuer:      issuer,
		tokenTTL:    tokenTTL,
		log:         log.With("module", "auth"),
		dummyHash:   dummy,
	}
}

func (s *AuthService) credentials(db dbx.DBTX) *CredentialStore {
	return NewCredentialStore(s.repomanager.Users(db), s.hasher)
}

func (s *AuthService) roles(db dbx.DBTX) *RoleRegistry {
	return NewRoleRegistry(s.repomanager.Roles(db))
}

// Login checks the credentials and issues a token. Rejected credentials are
// reported in the result message with a nil error; the error is reserved
// for failures of the store or the signer.
func (s *AuthService) Login(ctx context.Context, userName, password string) (*models.LoginResult, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return &models.LoginResult{Message: MsgUsernameRequired}, nil
	}

	creds := s.credentials(s.db)

	user, err := creds.FindByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(s.dummyHash, password)
			return &models.LoginResult{Message: MsgUserNotFound}, nil
		}
		return nil, oops.In("auth").Code("AUTH_LOOKUP_FAILED").With("username", userName).Wrap(err)
	}

	if password == "" {
		return &models.LoginResult{Message: MsgPasswordRequired}, nil
	}

	if !creds.Verify(user, password) {
		s.log.Info(ctx, "login rejected", "user_id", user.ID)
		return &models.LoginResult{Message: MsgInvalidCredentials}, nil
	}

	roles, err := s.roles(s.db).ListRoles(ctx, user.ID)
	if err != nil {
		return nil, oops.In("auth").Code("AUTH_ROLES_FAILED").With("user_id", user.ID).Wrap(err)
	}
	role := ""
	if len(roles) > 0 {
		role = roles[0].Name
	}

	token, err := s.issuer.Issue(models.TokenClaims{UserID: user.ID, UserName: user.UserName, Role: role}, s.tokenTTL)
	if err != nil {
		return nil, oops.In("auth").Code("AUTH_SIGN_FAILED").With("user_id", user.ID).
			Wrap(fmt.Errorf("%w: signing token: %w", common.ErrDependency, err))
	}

	s.log.Info(ctx, "login succeeded", "user_id", user.ID, "role", role)
	return &models.LoginResult{Token: token, User: user.Profile(), Message: MsgLoginSuccessful}, nil
}

// Register creates the account, gives it req.Role (default "User") and
// returns the stored profile. The user row and role membership are written
// in one transaction.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.UserProfile, error) {
	userName := strings.TrimSpace(req.UserName)
	if userName == "" {
		return nil, common.NewReasonsError(common.ErrValidation, "username required")
	}
	if req.Password == "" {
		return nil, common.NewReasonsError(common.ErrValidation, "password required")
	}

	roleName := strings.TrimSpace(req.Role)
	if roleName == "" {
		roleName = common.RoleUser
	}

	candidate := &models.User{
		UserName:        userName,
		NormalizedEmail: strings.ToUpper(userName),
		Name:            req.Name,
	}

	var profile *models.UserProfile
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.credentials(tx).Create(ctx, candidate, req.Password)
		if err != nil {
			return err
		}

		registry := s.roles(tx)
		role, err := registry.EnsureRole(ctx, roleName)
		if err != nil {
			return err
		}
		if err := registry.AssignRole(ctx, user.ID, role); err != nil {
			return err
		}

		stored, err := s.credentials(tx).FindByID(ctx, user.ID)
		if err != nil {
			return err
		}
		profile = stored.Profile()
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrValidation) || errors.Is(err, common.ErrConflict) {
			return nil, err
		}
		s.log.Error(ctx, "registration failed", logging.ErrAttrs(err)...)
		return nil, oops.In("auth").Code("AUTH_REGISTER_FAILED").With("username", userName).Wrap(asDependency(err))
	}

	s.log.Info(ctx, "user registered", "user_id", profile.ID, "role", roleName)
	return profile, nil
}

// IsUniqueUser reports whether no account uses userName yet, ignoring case
// and surrounding whitespace.
func (s *AuthService) IsUniqueUser(ctx context.Context, userName string) (bool, error) {
	exists, err := s.credentials(s.db).Exists(ctx, userName)
	if err != nil {
		return false, oops.In("auth").Code("AUTH_LOOKUP_FAILED").With("username", userName).Wrap(err)
	}
	return !exists, nil
}

// Authenticate validates a bearer token and returns its claims.
func (s *AuthService) Authenticate(_ context.Context, token string) (*models.TokenClaims, error) {
	if token == "" {
		return nil, common.ErrInvalidToken
	}
	return s.issuer.Validate(token)
}

// ConcealLoginFailure returns res with the "username not found",
// "password required" and "invalid credentials" outcomes all reported as
// invalid credentials.
func ConcealLoginFailure(res *models.LoginResult) *models.LoginResult {
	if res == nil {
		return nil
	}
	switch res.Message {
	case MsgUserNotFound, MsgPasswordRequired:
		out := *res
		out.Message = MsgInvalidCredentials
		return &out
	}
	return res
}

func asDependency(err error) error {
	if errors.Is(err, common.ErrDependency) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrDependency, err)
}
