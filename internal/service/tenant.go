package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/homestay/backend/internal/domain"
	"github.com/pkordes/homestay/backend/internal/repo"
)

// TenantService implements the public browsing side: category pages, the
// listing page, and search.
type TenantService struct {
	listings repo.ListingRepo
	bookings *BookingService
	users    *UserService
}

// NewTenantService constructs a TenantService.
func NewTenantService(listings repo.ListingRepo, bookings *BookingService, users *UserService) *TenantService {
	return &TenantService{listings: listings, bookings: bookings, users: users}
}

// GetAllByCategory returns one page of listing cards. CategoryAll lists every
// listing.
func (s *TenantService) GetAllByCategory(ctx context.Context, p domain.PaginationParams, category domain.Category) (domain.Page[domain.DisplayCard], error) {
	var (
		listings []domain.Listing
		total    int64
		err      error
	)
	if category == domain.CategoryAll || category == "" {
		listings, total, err = s.listings.ListAllWithCover(ctx, p)
	} else {
		listings, total, err = s.listings.ListByCategoryWithCover(ctx, category, p)
	}
	if err != nil {
		return domain.Page[domain.DisplayCard]{}, fmt.Errorf("service.TenantService.GetAllByCategory: %w", err)
	}
	return domain.NewPage(toCards(listings), p, total), nil
}

// GetOne returns the full listing page. The landlord profile is omitted when
// the owning user cannot be found.
// Returns domain.ErrNotFound if the listing does not exist.
func (s *TenantService) GetOne(ctx context.Context, publicID uuid.UUID) (domain.ListingDetail, error) {
	l, err := s.listings.GetByPublicID(ctx, publicID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ListingDetail{}, fmt.Errorf("service.TenantService.GetOne: %w: Listing doesn't exist", domain.ErrNotFound)
	}
	if err != nil {
		return domain.ListingDetail{}, fmt.Errorf("service.TenantService.GetOne: %w", err)
	}

	detail := domain.ListingDetail{
		PublicID:    l.PublicID,
		Title:       l.Title,
		Description: l.Description,
		Guests:      l.Guests,
		Bedrooms:    l.Bedrooms,
		Beds:        l.Beds,
		Bathrooms:   l.Bathrooms,
		Price:       l.Price,
		Category:    l.Category,
		Location:    l.Location,
		Pictures:    l.Pictures,
	}
	if detail.Pictures == nil {
		detail.Pictures = []domain.Picture{}
	}

	landlord, err := s.users.GetByPublicID(ctx, l.LandlordPublicID)
	switch {
	case err == nil:
		detail.Landlord = &domain.LandlordProfile{FirstName: landlord.FirstName, ImageURL: landlord.ImageURL}
	case !errors.Is(err, domain.ErrNotFound):
		return domain.ListingDetail{}, fmt.Errorf("service.TenantService.GetOne: %w", err)
	}
	return detail, nil
}

// Search returns one page of listings matching the criteria exactly that are
// free for the whole requested range.
func (s *TenantService) Search(ctx context.Context, p domain.PaginationParams, c domain.SearchCriteria) (domain.Page[domain.DisplayCard], error) {
	listings, total, err := s.listings.Search(ctx, c, p)
	if err != nil {
		return domain.Page[domain.DisplayCard]{}, fmt.Errorf("service.TenantService.Search: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(listings))
	for _, l := range listings {
		ids = append(ids, l.PublicID)
	}
	booked, err := s.bookings.MatchingListingIDs(ctx, ids, c.Range)
	if err != nil {
		return domain.Page[domain.DisplayCard]{}, fmt.Errorf("service.TenantService.Search: %w", err)
	}

	excluded := make(map[uuid.UUID]struct{}, len(booked))
	for _, id := range booked {
		excluded[id] = struct{}{}
	}
	free := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		if _, ok := excluded[l.PublicID]; !ok {
			free = append(free, l)
		}
	}
	total -= int64(len(listings) - len(free))

	return domain.NewPage(toCards(free), p, total), nil
}
