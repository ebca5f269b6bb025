package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/cryptox"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastParams = cryptox.Params{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32}

func TestPasswordPolicyViolations(t *testing.T) {
	tests := []struct {
		password string
		want     int
	}{
		{"Secret123", 0},
		{"Ab1", 1},
		{"secret123", 1},
		{"SECRET123", 1},
		{"SecretOnly", 1},
		{"", 4},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			got := PasswordPolicyViolations(tt.password)
			assert.Len(t, got, tt.want, "%v", got)
		})
	}
}

func TestCredentialStore_Create_HashesPassword(t *testing.T) {
	repo := newFakeUsersRepo()
	store := NewCredentialStore(repo, cryptox.NewHasher(fastParams))

	u, err := store.Create(context.Background(), &models.User{UserName: "  alice "}, "Secret123")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.UserName)
	assert.True(t, strings.HasPrefix(u.PasswordHash, "$argon2id$"))
	assert.NotContains(t, u.PasswordHash, "Secret123")

	assert.True(t, store.Verify(u, "Secret123"))
	assert.False(t, store.Verify(u, "secret123"))
}

func TestCredentialStore_Create_PolicyFailure(t *testing.T) {
	repo := newFakeUsersRepo()
	store := NewCredentialStore(repo, cryptox.NewHasher(fastParams))

	_, err := store.Create(context.Background(), &models.User{UserName: "alice"}, "weakpw")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.NotContains(t, err.Error(), "weakpw")

	var re *common.ReasonsError
	require.True(t, errors.As(err, &re))
	assert.Len(t, re.Reasons, 2)
	assert.Empty(t, repo.created)
}

func TestCredentialStore_Create_Duplicate(t *testing.T) {
	repo := newFakeUsersRepo()
	store := NewCredentialStore(repo, cryptox.NewHasher(fastParams))
	ctx := context.Background()

	_, err := store.Create(ctx, &models.User{UserName: "alice"}, "Secret123")
	require.NoError(t, err)

	_, err = store.Create(ctx, &models.User{UserName: " ALICE"}, "Secret123")
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestRoleRegistry(t *testing.T) {
	repo := newFakeRolesRepo()
	reg := NewRoleRegistry(repo)
	ctx := context.Background()

	_, err := reg.EnsureRole(ctx, "  ")
	assert.ErrorIs(t, err, common.ErrValidation)

	admin, err := reg.EnsureRole(ctx, "Admin")
	require.NoError(t, err)
	again, err := reg.EnsureRole(ctx, "Admin")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	require.NoError(t, reg.AssignRole(ctx, "u1", admin))
	require.NoError(t, reg.AssignRole(ctx, "u1", admin))

	list, err := reg.ListRoles(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Admin", list[0].Name)
}
