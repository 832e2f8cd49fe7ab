package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pkordes/homestay/backend/internal/domain"
	"github.com/pkordes/homestay/backend/internal/events"
	"github.com/pkordes/homestay/backend/internal/repo"
)

const dateLayout = time.DateOnly

// BookingService implements reservations: creating, cancelling, and the
// availability and reservation views built on them.
type BookingService struct {
	bookings  repo.BookingRepo
	landlords *LandlordService
	publisher events.Publisher
	log       *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewBookingService constructs a BookingService. Spans go to the global
// tracer provider.
func NewBookingService(bookings repo.BookingRepo, landlords *LandlordService, publisher events.Publisher, log *slog.Logger) *BookingService {
	return &BookingService{
		bookings:  bookings,
		landlords: landlords,
		publisher: publisher,
		log:       log,
		tracer:    otel.Tracer("github.com/pkordes/homestay/backend/internal/service"),
		now:       time.Now,
	}
}

// Create books a listing for caller.
// Returns domain.ErrValidation if the range is empty or inverted,
// domain.ErrNotFound if the listing does not exist, and domain.ErrConflict if
// the range overlaps an existing booking of the listing.
func (s *BookingService) Create(ctx context.Context, caller domain.User, in domain.NewBooking) (err error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.Create", trace.WithAttributes(
		attribute.String("listing.id", in.ListingPublicID.String()),
	))
	defer func() { endSpan(span, err) }()

	dr, err := domain.NewDateRange(in.StartDate, in.EndDate)
	if err != nil {
		return fmt.Errorf("service.BookingService.Create: %w", err)
	}

	listing, err := s.landlords.GetByListingPublicID(ctx, in.ListingPublicID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("service.BookingService.Create: %w: Landlord public id not found", domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("service.BookingService.Create: %w", err)
	}

	taken, err := s.bookings.ExistsAtInterval(ctx, listing.PublicID, dr)
	if err != nil {
		return fmt.Errorf("service.BookingService.Create: %w", err)
	}
	if taken {
		return fmt.Errorf("service.BookingService.Create: %w: This booking overlaps with an existing one", domain.ErrConflict)
	}

	created, err := s.bookings.Create(ctx, domain.Booking{
		Range:           dr,
		TotalPrice:      dr.Nights() * listing.Price,
		Guests:          1,
		ListingPublicID: listing.PublicID,
		TenantPublicID:  caller.PublicID,
	})
	if errors.Is(err, domain.ErrConflict) {
		return fmt.Errorf("service.BookingService.Create: %w: This booking overlaps with an existing one", domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("service.BookingService.Create: %w", err)
	}

	span.SetAttributes(attribute.String("booking.id", created.PublicID.String()))
	s.publish(ctx, events.Event{
		Type:            events.TypeBookingCreated,
		BookingPublicID: created.PublicID,
		ListingPublicID: created.ListingPublicID,
		TenantPublicID:  created.TenantPublicID,
		StartDate:       created.Range.Start.Format(dateLayout),
		EndDate:         created.Range.End.Format(dateLayout),
		TotalPrice:      created.TotalPrice,
	})
	return nil
}

// CheckAvailability returns every booked interval of the listing, ordered by
// start date. It has no side effects.
func (s *BookingService) CheckAvailability(ctx context.Context, listingPublicID uuid.UUID) ([]domain.BookedDate, error) {
	bookings, err := s.bookings.ListByListing(ctx, listingPublicID)
	if err != nil {
		return nil, fmt.Errorf("service.BookingService.CheckAvailability: %w", err)
	}
	dates := make([]domain.BookedDate, 0, len(bookings))
	for _, b := range bookings {
		dates = append(dates, domain.BookedDate{StartDate: b.Range.Start, EndDate: b.Range.End})
	}
	return dates, nil
}

// Cancel deletes a booking. A tenant may cancel only their own bookings; with
// byLandlord set, caller may cancel any booking on a listing they own.
// The listing named in the cancelled event is the one the deleted booking was
// for. Returns the cancelled booking's id, or domain.ErrNotFound when no
// booking matched the ownership rule.
func (s *BookingService) Cancel(ctx context.Context, caller domain.User, bookingPublicID, listingPublicID uuid.UUID, byLandlord bool) (_ uuid.UUID, err error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.Cancel", trace.WithAttributes(
		attribute.String("booking.id", bookingPublicID.String()),
		attribute.Bool("by_landlord", byLandlord),
	))
	defer func() { endSpan(span, err) }()

	var listingID uuid.UUID
	if byLandlord {
		listingID, err = s.cancelAsLandlord(ctx, caller, bookingPublicID, listingPublicID)
	} else {
		listingID, err = s.bookings.DeleteByTenantAndPublicID(ctx, caller.PublicID, bookingPublicID)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return uuid.Nil, fmt.Errorf("service.BookingService.Cancel: %w: Booking not found", domain.ErrNotFound)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("service.BookingService.Cancel: %w", err)
	}

	s.publish(ctx, events.Event{
		Type:            events.TypeBookingCancelled,
		BookingPublicID: bookingPublicID,
		ListingPublicID: listingID,
	})
	return bookingPublicID, nil
}

// cancelAsLandlord returns domain.ErrNotFound without deleting anything when
// caller does not own the listing.
func (s *BookingService) cancelAsLandlord(ctx context.Context, caller domain.User, bookingPublicID, listingPublicID uuid.UUID) (uuid.UUID, error) {
	if _, err := s.landlords.GetByPublicIDAndLandlordPublicID(ctx, listingPublicID, caller.PublicID); err != nil {
		return uuid.Nil, err
	}
	return s.bookings.DeleteByPublicIDAndListing(ctx, bookingPublicID, listingPublicID)
}

// GetBookedListings returns caller's bookings joined with the listing cards.
// Bookings whose listing no longer exists are skipped.
func (s *BookingService) GetBookedListings(ctx context.Context, caller domain.User) ([]domain.BookedListing, error) {
	bookings, err := s.bookings.ListByTenant(ctx, caller.PublicID)
	if err != nil {
		return nil, fmt.Errorf("service.BookingService.GetBookedListings: %w", err)
	}

	cards, err := s.landlords.GetCardDisplayByListingPublicIDs(ctx, listingIDsOf(bookings))
	if err != nil {
		return nil, fmt.Errorf("service.BookingService.GetBookedListings: %w", err)
	}
	return joinBookedListings(bookings, cards), nil
}

// GetBookedListingsForLandlord returns the bookings made on any listing
// caller owns.
func (s *BookingService) GetBookedListingsForLandlord(ctx context.Context, caller domain.User) ([]domain.BookedListing, error) {
	cards, err := s.landlords.GetAllProperties(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("service.BookingService.GetBookedListingsForLandlord: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.PublicID)
	}
	bookings, err := s.bookings.ListByListingPublicIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("service.BookingService.GetBookedListingsForLandlord: %w", err)
	}
	return joinBookedListings(bookings, cards), nil
}

// MatchingListingIDs returns the subset of listingPublicIDs that have a
// booking overlapping dr.
func (s *BookingService) MatchingListingIDs(ctx context.Context, listingPublicIDs []uuid.UUID, dr domain.DateRange) ([]uuid.UUID, error) {
	ids, err := s.bookings.ListOverlappingListingIDs(ctx, listingPublicIDs, dr)
	if err != nil {
		return nil, fmt.Errorf("service.BookingService.MatchingListingIDs: %w", err)
	}
	return ids, nil
}

// publish sends e and logs failures. The booking is already committed.
func (s *BookingService) publish(ctx context.Context, e events.Event) {
	e.OccurredAt = s.now().UTC()
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.log.WarnContext(ctx, "event publish failed", "type", e.Type, "booking_id", e.BookingPublicID, "err", err)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func listingIDsOf(bookings []domain.Booking) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(bookings))
	ids := make([]uuid.UUID, 0, len(bookings))
	for _, b := range bookings {
		if _, ok := seen[b.ListingPublicID]; ok {
			continue
		}
		seen[b.ListingPublicID] = struct{}{}
		ids = append(ids, b.ListingPublicID)
	}
	return ids
}

func joinBookedListings(bookings []domain.Booking, cards []domain.DisplayCard) []domain.BookedListing {
	byID := make(map[uuid.UUID]domain.DisplayCard, len(cards))
	for _, c := range cards {
		byID[c.PublicID] = c
	}
	out := make([]domain.BookedListing, 0, len(bookings))
	for _, b := range bookings {
		card, ok := byID[b.ListingPublicID]
		if !ok {
			continue
		}
		out = append(out, domain.BookedListing{
			Cover:           card.Cover,
			Location:        card.Location,
			Range:           b.Range,
			TotalPrice:      b.TotalPrice,
			BookingPublicID: b.PublicID,
			ListingPublicID: b.ListingPublicID,
		})
	}
	return out
}
