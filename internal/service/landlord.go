package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/homestay/backend/internal/domain"
	"github.com/pkordes/homestay/backend/internal/repo"
)

// LandlordService implements the landlord side of listings: publishing,
// managing, and the listing lookups other workflows depend on.
type LandlordService struct {
	listings repo.ListingRepo
	pictures *PictureService
	users    *UserService
	log      *slog.Logger
}

// NewLandlordService constructs a LandlordService.
func NewLandlordService(listings repo.ListingRepo, pictures *PictureService, users *UserService, log *slog.Logger) *LandlordService {
	return &LandlordService{listings: listings, pictures: pictures, users: users, log: log}
}

// Create publishes a listing owned by caller with its pictures and grants
// caller the landlord authority. Returns the new listing's public id.
// Returns domain.ErrValidation if the listing or a picture is invalid.
func (s *LandlordService) Create(ctx context.Context, caller domain.User, in domain.NewListing) (uuid.UUID, error) {
	if err := validateNewListing(&in); err != nil {
		return uuid.Nil, fmt.Errorf("service.LandlordService.Create: %w", err)
	}

	listing, err := s.listings.Create(ctx, domain.Listing{
		Title:            strings.TrimSpace(in.Title),
		Description:      in.Description,
		Guests:           in.Guests,
		Bedrooms:         in.Bedrooms,
		Beds:             in.Beds,
		Bathrooms:        in.Bathrooms,
		Price:            in.Price,
		Category:         in.Category,
		Location:         strings.TrimSpace(in.Location),
		LandlordPublicID: caller.PublicID,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("service.LandlordService.Create: %w", err)
	}

	saved, err := s.pictures.SaveAll(ctx, listing, in.Pictures)
	if err != nil {
		// Without pictures the listing cannot be displayed; take it down again.
		s.rollbackCreate(ctx, caller, listing, nil)
		return uuid.Nil, fmt.Errorf("service.LandlordService.Create: %w", err)
	}

	if err := s.users.AddLandlordRole(ctx, caller); err != nil {
		s.rollbackCreate(ctx, caller, listing, saved)
		return uuid.Nil, fmt.Errorf("service.LandlordService.Create: %w", err)
	}

	s.log.InfoContext(ctx, "listing created", "listing_id", listing.PublicID, "landlord_id", caller.PublicID)
	return listing.PublicID, nil
}

// rollbackCreate removes a listing that failed to publish, with its picture
// rows (by cascade) and the given picture objects.
func (s *LandlordService) rollbackCreate(ctx context.Context, caller domain.User, listing domain.Listing, pics []domain.Picture) {
	if _, err := s.listings.DeleteByPublicIDAndLandlord(ctx, listing.PublicID, caller.PublicID); err != nil {
		s.log.ErrorContext(ctx, "rollback of unpublished listing failed",
			"listing_id", listing.PublicID, "err", err)
	}
	s.pictures.DeleteAll(ctx, pics)
}

// GetAllProperties returns the cards of every listing owned by caller.
func (s *LandlordService) GetAllProperties(ctx context.Context, caller domain.User) ([]domain.DisplayCard, error) {
	listings, err := s.listings.ListByLandlordWithCover(ctx, caller.PublicID)
	if err != nil {
		return nil, fmt.Errorf("service.LandlordService.GetAllProperties: %w", err)
	}
	return toCards(listings), nil
}

// Delete removes a listing owned by caller together with its bookings and
// pictures. Returns domain.ErrUnauthorized when caller owns no listing with
// that id, including when the listing does not exist.
func (s *LandlordService) Delete(ctx context.Context, caller domain.User, publicID uuid.UUID) (uuid.UUID, error) {
	listing, err := s.listings.GetByPublicID(ctx, publicID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return uuid.Nil, fmt.Errorf("service.LandlordService.Delete: %w", err)
	}

	n, err := s.listings.DeleteByPublicIDAndLandlord(ctx, publicID, caller.PublicID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("service.LandlordService.Delete: %w", err)
	}
	if n == 0 {
		return uuid.Nil, fmt.Errorf("service.LandlordService.Delete: %w: User not authorized to delete this listing", domain.ErrUnauthorized)
	}

	s.pictures.DeleteAll(ctx, listing.Pictures)
	return publicID, nil
}

// GetByListingPublicID returns what the booking workflow needs to know about
// a listing. Returns domain.ErrNotFound if it does not exist.
func (s *LandlordService) GetByListingPublicID(ctx context.Context, publicID uuid.UUID) (domain.ListingBookingInfo, error) {
	l, err := s.listings.GetByPublicID(ctx, publicID)
	if err != nil {
		return domain.ListingBookingInfo{}, fmt.Errorf("service.LandlordService.GetByListingPublicID: %w", err)
	}
	return bookingInfo(l), nil
}

// GetCardDisplayByListingPublicIDs returns the cards of the listings that
// exist among ids. Unknown ids are skipped.
func (s *LandlordService) GetCardDisplayByListingPublicIDs(ctx context.Context, ids []uuid.UUID) ([]domain.DisplayCard, error) {
	listings, err := s.listings.ListByPublicIDsWithCover(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("service.LandlordService.GetCardDisplayByListingPublicIDs: %w", err)
	}
	return toCards(listings), nil
}

// GetByPublicIDAndLandlordPublicID returns the card of a listing only if it is
// owned by landlordPublicID. Returns domain.ErrNotFound otherwise.
func (s *LandlordService) GetByPublicIDAndLandlordPublicID(ctx context.Context, listingPublicID, landlordPublicID uuid.UUID) (domain.DisplayCard, error) {
	l, err := s.listings.GetByPublicIDAndLandlordWithCover(ctx, listingPublicID, landlordPublicID)
	if err != nil {
		return domain.DisplayCard{}, fmt.Errorf("service.LandlordService.GetByPublicIDAndLandlordPublicID: %w", err)
	}
	return l.ToDisplayCard(), nil
}

func bookingInfo(l domain.Listing) domain.ListingBookingInfo {
	return domain.ListingBookingInfo{
		PublicID:         l.PublicID,
		Price:            l.Price,
		LandlordPublicID: l.LandlordPublicID,
	}
}

func toCards(listings []domain.Listing) []domain.DisplayCard {
	cards := make([]domain.DisplayCard, 0, len(listings))
	for _, l := range listings {
		cards = append(cards, l.ToDisplayCard())
	}
	return cards
}

// validateNewListing enforces the publishing rules and normalises the cover
// flag: with no cover chosen the first picture becomes the cover.
//   - Title and location are required.
//   - Price and every count must be at least 1.
//   - Category must be a concrete category, not ALL.
//   - At least one picture, at most one cover.
func validateNewListing(in *domain.NewListing) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if strings.TrimSpace(in.Location) == "" {
		return fmt.Errorf("%w: location is required", domain.ErrValidation)
	}
	if in.Price < 1 {
		return fmt.Errorf("%w: price must be positive", domain.ErrValidation)
	}
	if in.Guests < 1 || in.Bedrooms < 1 || in.Beds < 1 || in.Bathrooms < 1 {
		return fmt.Errorf("%w: guests, bedrooms, beds and bathrooms must be at least 1", domain.ErrValidation)
	}
	if _, err := domain.ParseCategory(string(in.Category)); err != nil || in.Category == domain.CategoryAll || in.Category == "" {
		return fmt.Errorf("%w: a listing category is required", domain.ErrValidation)
	}
	if len(in.Pictures) == 0 {
		return fmt.Errorf("%w: at least one picture is required", domain.ErrValidation)
	}

	covers := 0
	for _, p := range in.Pictures {
		if p.IsCover {
			covers++
		}
	}
	switch {
	case covers > 1:
		return fmt.Errorf("%w: only one picture can be the cover", domain.ErrValidation)
	case covers == 0:
		in.Pictures = slices.Clone(in.Pictures)
		in.Pictures[0].IsCover = true
	}
	return nil
}
