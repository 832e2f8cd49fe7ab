package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/homestay/backend/internal/domain"
)

func sampleUser() domain.User {
	return domain.User{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       uuid.NewString() + "@example.com",
		ImageURL:    "https://example.com/ada.png",
		Authorities: []string{domain.AuthorityTenant},
	}
}

func TestUserRepo_Create(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	got, err := r.users.Create(ctx, sampleUser())

	require.NoError(t, err)
	assert.NotZero(t, got.ID)
	assert.NotEqual(t, uuid.Nil, got.PublicID)
	assert.Equal(t, "Ada", got.FirstName)
	assert.Equal(t, []string{domain.AuthorityTenant}, got.Authorities)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestUserRepo_GetByEmail_NotFound(t *testing.T) {
	r := newTestRepos(t)

	_, err := r.users.GetByEmail(context.Background(), "nobody@example.com")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepo_GetByPublicID(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	created, err := r.users.Create(ctx, sampleUser())
	require.NoError(t, err)

	got, err := r.users.GetByPublicID(ctx, created.PublicID)

	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Email, got.Email)
}

func TestUserRepo_Update_KeepsExistingAuthorities(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	u := sampleUser()
	u.Authorities = []string{domain.AuthorityLandlord}
	_, err := r.users.Create(ctx, u)
	require.NoError(t, err)

	u.FirstName = "Augusta"
	u.Authorities = []string{domain.AuthorityTenant}
	got, err := r.users.Update(ctx, u)

	require.NoError(t, err)
	assert.Equal(t, "Augusta", got.FirstName)
	assert.Equal(t, []string{domain.AuthorityLandlord, domain.AuthorityTenant}, got.Authorities)
}

func TestUserRepo_Update_NotFound(t *testing.T) {
	r := newTestRepos(t)

	_, err := r.users.Update(context.Background(), sampleUser())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepo_AddAuthority_Idempotent(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	created, err := r.users.Create(ctx, sampleUser())
	require.NoError(t, err)

	require.NoError(t, r.users.AddAuthority(ctx, created.ID, domain.AuthorityLandlord))
	require.NoError(t, r.users.AddAuthority(ctx, created.ID, domain.AuthorityLandlord))

	got, err := r.users.GetByPublicID(ctx, created.PublicID)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.AuthorityLandlord, domain.AuthorityTenant}, got.Authorities)
}
