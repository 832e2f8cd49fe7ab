package auth

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/pkordes/homestay/backend/internal/domain"
)

// rolesClaimSuffix matches the namespaced custom claim the identity provider
// uses to carry role names, e.g. "https://homestay.example/roles".
const rolesClaimSuffix = "/roles"

// MapClaimsToUser builds a User from identity provider claims. Every user is a
// tenant; other authorities come from the roles claim.
func MapClaimsToUser(claims domain.IdentityClaims) (domain.User, error) {
	email := stringClaim(claims, "email")
	if email == "" {
		return domain.User{}, fmt.Errorf("auth.MapClaimsToUser: %w: email claim is required", domain.ErrValidation)
	}

	u := domain.User{
		Email:     strings.ToLower(email),
		FirstName: stringClaim(claims, "given_name"),
		LastName:  stringClaim(claims, "family_name"),
		ImageURL:  stringClaim(claims, "picture"),
	}
	if u.FirstName == "" && u.LastName == "" {
		u.FirstName, u.LastName = splitName(stringClaim(claims, "name"))
	}

	authorities := []string{domain.AuthorityTenant}
	for key, value := range claims {
		if !strings.HasSuffix(key, rolesClaimSuffix) {
			continue
		}
		roles, _ := value.([]any)
		for _, r := range roles {
			if name, ok := r.(string); ok && name != "" && !slices.Contains(authorities, name) {
				authorities = append(authorities, name)
			}
		}
	}
	slices.Sort(authorities)
	u.Authorities = authorities
	return u, nil
}

// ClaimsUpdatedAt returns the provider's last profile change time.
// The claim may be an RFC 3339 string or epoch seconds.
func ClaimsUpdatedAt(claims domain.IdentityClaims) (time.Time, bool) {
	switch v := claims["updated_at"].(type) {
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	case float64:
		return time.Unix(int64(v), 0).UTC(), true
	case time.Time:
		return v, true
	}
	return time.Time{}, false
}

func stringClaim(claims domain.IdentityClaims, key string) string {
	s, _ := claims[key].(string)
	return strings.TrimSpace(s)
}

func splitName(name string) (first, last string) {
	first, last, _ = strings.Cut(strings.TrimSpace(name), " ")
	return first, strings.TrimSpace(last)
}
