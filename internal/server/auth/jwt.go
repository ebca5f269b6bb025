// Package auth issues and validates the HS256 bearer tokens handed out on
// login.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the JWT payload: the registered claims plus id, username and a
// single role.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"id"`
	UserName string `json:"username"`
	Role     string `json:"role"`
}

// SigningConfig holds the process-wide HMAC key. It is built once at startup
// and never changes; the key is copied in and never handed out.
type SigningConfig struct {
	key []byte
}

// NewSigningConfig fails with common.ErrConfiguration when secret is blank.
func NewSigningConfig(secret string) (SigningConfig, error) {
	if strings.TrimSpace(secret) == "" {
		return SigningConfig{}, fmt.Errorf("%w: signing secret is empty", common.ErrConfiguration)
	}
	return SigningConfig{key: []byte(secret)}, nil
}

// TokenIssuer signs and validates access tokens with a SigningConfig.
type TokenIssuer struct {
	cfg SigningConfig
	now func() time.Time
}

func NewTokenIssuer(cfg SigningConfig) (*TokenIssuer, error) {
	if len(cfg.key) == 0 {
		return nil, fmt.Errorf("%w: signing config has no key", common.ErrConfiguration)
	}
	return &TokenIssuer{cfg: cfg, now: time.Now}, nil
}

// Issue signs claims with exp = now + ttl.
func (i *TokenIssuer) Issue(claims models.TokenClaims, ttl time.Duration) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:   claims.UserID,
		UserName: claims.UserName,
		Role:     claims.Role,
	})

	tokenString, err := token.SignedString(i.cfg.key)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Validate checks signature, algorithm and expiry and returns the claims.
// Expired tokens yield common.ErrTokenExpired, anything else that fails
// yields common.ErrInvalidToken.
func (i *TokenIssuer) Validate(tokenString string) (*models.TokenClaims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.cfg.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	out := &models.TokenClaims{
		UserID:   claims.UserID,
		UserName: claims.UserName,
		Role:     claims.Role,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
