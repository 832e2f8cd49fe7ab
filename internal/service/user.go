package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/homestay/backend/internal/auth"
	"github.com/pkordes/homestay/backend/internal/domain"
	"github.com/pkordes/homestay/backend/internal/repo"
)

// IdentityManager changes a user's account at the identity provider.
// Satisfied by *auth.Management.
type IdentityManager interface {
	AddLandlordRole(ctx context.Context, u domain.User) error
}

// UserService keeps the local user table in step with the identity provider.
type UserService struct {
	users repo.UserRepo
	idp   IdentityManager
	log   *slog.Logger
}

// NewUserService constructs a UserService. idp may be nil when no identity
// provider management API is configured; role changes then stay local.
func NewUserService(users repo.UserRepo, idp IdentityManager, log *slog.Logger) *UserService {
	return &UserService{users: users, idp: idp, log: log}
}

// GetAuthenticated returns the user behind a verified session token.
// Returns domain.ErrNotFound if the user was never synced.
func (s *UserService) GetAuthenticated(ctx context.Context, email string) (domain.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.GetAuthenticated: %w", err)
	}
	return u, nil
}

// GetByEmail returns domain.ErrNotFound if no user has that email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.GetByEmail: %w", err)
	}
	return u, nil
}

// GetByPublicID returns domain.ErrNotFound if no user has that public id.
func (s *UserService) GetByPublicID(ctx context.Context, publicID uuid.UUID) (domain.User, error) {
	u, err := s.users.GetByPublicID(ctx, publicID)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.GetByPublicID: %w", err)
	}
	return u, nil
}

// SyncWithIdp creates or refreshes the local copy of the user described by
// claims. An existing user is rewritten only when forceResync is set or the
// provider reports a profile change newer than the local record.
// Returns domain.ErrValidation if the claims carry no email.
func (s *UserService) SyncWithIdp(ctx context.Context, claims domain.IdentityClaims, forceResync bool) (domain.User, error) {
	incoming, err := auth.MapClaimsToUser(claims)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.SyncWithIdp: %w", err)
	}

	existing, err := s.users.GetByEmail(ctx, incoming.Email)
	if errors.Is(err, domain.ErrNotFound) {
		created, err := s.users.Create(ctx, incoming)
		if err != nil {
			return domain.User{}, fmt.Errorf("service.UserService.SyncWithIdp: %w", err)
		}
		s.log.InfoContext(ctx, "user created from identity provider", "user_id", created.PublicID)
		return created, nil
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.SyncWithIdp: %w", err)
	}

	updatedAt, ok := auth.ClaimsUpdatedAt(claims)
	stale := ok && updatedAt.After(existing.UpdatedAt)
	if !forceResync && !stale {
		return existing, nil
	}

	updated, err := s.users.Update(ctx, incoming)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.SyncWithIdp: %w", err)
	}
	return updated, nil
}

// AddLandlordRole grants the landlord authority locally, then at the identity
// provider. A provider failure is logged and the local grant is kept.
func (s *UserService) AddLandlordRole(ctx context.Context, u domain.User) error {
	if u.HasAuthority(domain.AuthorityLandlord) {
		return nil
	}
	if err := s.users.AddAuthority(ctx, u.ID, domain.AuthorityLandlord); err != nil {
		return fmt.Errorf("service.UserService.AddLandlordRole: %w", err)
	}
	if s.idp == nil {
		return nil
	}
	if err := s.idp.AddLandlordRole(ctx, u); err != nil {
		s.log.WarnContext(ctx, "identity provider role assignment failed",
			"user_id", u.PublicID, "err", err)
	}
	return nil
}
