// Package domain contains the core data types for the Homestay marketplace.
// Apart from uuid it has no external dependencies and is imported by every
// other internal package (repo, service, handler).
package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Authority names granted to users. Every user is a tenant; creating a first
// listing adds the landlord authority.
const (
	AuthorityTenant   = "ROLE_TENANT"
	AuthorityLandlord = "ROLE_LANDLORD"
)

// User is the internal record of a person authenticated by the identity
// provider. Email is the join key with the provider's claims.
type User struct {
	ID          int64
	PublicID    uuid.UUID
	FirstName   string
	LastName    string
	Email       string
	ImageURL    string
	Authorities []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasAuthority reports whether the user has been granted the named authority.
func (u User) HasAuthority(name string) bool {
	return slices.Contains(u.Authorities, name)
}

// IdentityClaims is the raw claim set returned by the identity provider's
// userinfo endpoint. It always contains "email"; "updated_at" is used to
// decide whether the local copy is stale.
type IdentityClaims map[string]any

// LandlordProfile is the public part of a landlord shown on a listing page.
type LandlordProfile struct {
	FirstName string
	ImageURL  string
}
