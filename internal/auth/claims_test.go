package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/homestay/backend/internal/auth"
	"github.com/pkordes/homestay/backend/internal/domain"
)

func TestMapClaimsToUser(t *testing.T) {
	t.Parallel()

	u, err := auth.MapClaimsToUser(domain.IdentityClaims{
		"email":                          "Ada@Example.com",
		"given_name":                     "Ada",
		"family_name":                    "Lovelace",
		"picture":                        "https://img/ada.png",
		"https://homestay.example/roles": []any{"ROLE_LANDLORD", "ROLE_TENANT"},
	})

	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, "Ada", u.FirstName)
	assert.Equal(t, "Lovelace", u.LastName)
	assert.Equal(t, "https://img/ada.png", u.ImageURL)
	assert.Equal(t, []string{domain.AuthorityLandlord, domain.AuthorityTenant}, u.Authorities)
}

func TestMapClaimsToUser_FallsBackToName(t *testing.T) {
	t.Parallel()

	u, err := auth.MapClaimsToUser(domain.IdentityClaims{
		"email": "grace@example.com",
		"name":  "Grace Brewster Hopper",
	})

	require.NoError(t, err)
	assert.Equal(t, "Grace", u.FirstName)
	assert.Equal(t, "Brewster Hopper", u.LastName)
	assert.Equal(t, []string{domain.AuthorityTenant}, u.Authorities)
}

func TestMapClaimsToUser_EmailRequired(t *testing.T) {
	t.Parallel()

	_, err := auth.MapClaimsToUser(domain.IdentityClaims{"name": "Nobody"})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestClaimsUpdatedAt(t *testing.T) {
	t.Parallel()

	want := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	got, ok := auth.ClaimsUpdatedAt(domain.IdentityClaims{"updated_at": "2030-01-02T03:04:05Z"})
	require.True(t, ok)
	assert.True(t, want.Equal(got))

	got, ok = auth.ClaimsUpdatedAt(domain.IdentityClaims{"updated_at": float64(want.Unix())})
	require.True(t, ok)
	assert.True(t, want.Equal(got))

	_, ok = auth.ClaimsUpdatedAt(domain.IdentityClaims{"updated_at": "yesterday"})
	assert.False(t, ok)

	_, ok = auth.ClaimsUpdatedAt(domain.IdentityClaims{})
	assert.False(t, ok)
}
