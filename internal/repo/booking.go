package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/homestay/backend/internal/domain"
)

// BookingRepo defines the persistence operations for Bookings.
// Bookings reference listings by surrogate id in the schema; every method
// here speaks in listing public ids and resolves the join itself.
type BookingRepo interface {
	// Create inserts a booking. Returns domain.ErrNotFound if the listing does
	// not exist and domain.ErrConflict if the range overlaps an existing
	// booking of the same listing.
	Create(ctx context.Context, b domain.Booking) (domain.Booking, error)

	// ExistsAtInterval reports whether any booking of the listing overlaps r.
	ExistsAtInterval(ctx context.Context, listingPublicID uuid.UUID, r domain.DateRange) (bool, error)

	// ListByListing returns every booking of the listing ordered by start date.
	ListByListing(ctx context.Context, listingPublicID uuid.UUID) ([]domain.Booking, error)

	// ListByTenant returns every booking made by the tenant, most recent stay first.
	ListByTenant(ctx context.Context, tenantPublicID uuid.UUID) ([]domain.Booking, error)

	// ListByListingPublicIDs returns every booking of any of the listings.
	ListByListingPublicIDs(ctx context.Context, listingPublicIDs []uuid.UUID) ([]domain.Booking, error)

	// ListOverlappingListingIDs returns the subset of listingPublicIDs that
	// have at least one booking overlapping r.
	ListOverlappingListingIDs(ctx context.Context, listingPublicIDs []uuid.UUID, r domain.DateRange) ([]uuid.UUID, error)

	// DeleteByTenantAndPublicID deletes a booking only if the tenant owns it
	// and returns the public id of the listing it was for.
	// Returns domain.ErrNotFound if nothing was deleted.
	DeleteByTenantAndPublicID(ctx context.Context, tenantPublicID, bookingPublicID uuid.UUID) (uuid.UUID, error)

	// DeleteByPublicIDAndListing deletes a booking only if it belongs to the
	// listing and returns that listing's public id.
	// Returns domain.ErrNotFound if nothing was deleted.
	DeleteByPublicIDAndListing(ctx context.Context, bookingPublicID, listingPublicID uuid.UUID) (uuid.UUID, error)
}

type pgBookingRepo struct {
	db db
}

// NewBookingRepo constructs a BookingRepo backed by the provided db connection.
func NewBookingRepo(db db) BookingRepo {
	return &pgBookingRepo{db: db}
}

const selectBooking = `
	SELECT b.id, b.public_id, b.start_date, b.end_date, b.total_price, b.guests,
	       l.public_id, b.tenant_public_id, b.created_at
	FROM bookings b
	JOIN listings l ON l.id = b.listing_id`

func (r *pgBookingRepo) Create(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	const q = `
		WITH ins AS (
			INSERT INTO bookings (listing_id, tenant_public_id, start_date, end_date, total_price, guests)
			SELECT l.id, @tenant_public_id::uuid, @start_date::date, @end_date::date, @total_price::int, @guests::int
			FROM listings l
			WHERE l.public_id = @listing_public_id
			RETURNING id, public_id, start_date, end_date, total_price, guests, tenant_public_id, created_at
		)
		SELECT ins.id, ins.public_id, ins.start_date, ins.end_date, ins.total_price, ins.guests,
		       @listing_public_id::uuid, ins.tenant_public_id, ins.created_at
		FROM ins`

	created, err := scanBooking(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"tenant_public_id":  b.TenantPublicID,
		"start_date":        b.Range.Start,
		"end_date":          b.Range.End,
		"total_price":       b.TotalPrice,
		"guests":            b.Guests,
		"listing_public_id": b.ListingPublicID,
	}))
	if err != nil {
		switch pgErrorCode(err) {
		case sqlStateExclusionViolation:
			return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Create: %w", domain.ErrConflict)
		case sqlStateCheckViolation:
			return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Create: %w", domain.ErrValidation)
		}
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Create: %w", err)
	}
	return created, nil
}

func (r *pgBookingRepo) ExistsAtInterval(ctx context.Context, listingPublicID uuid.UUID, dr domain.DateRange) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1
			FROM bookings b
			JOIN listings l ON l.id = b.listing_id
			WHERE l.public_id = @listing_public_id
			  AND b.start_date < @end_date::date
			  AND @start_date::date < b.end_date
		)`

	var exists bool
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"listing_public_id": listingPublicID,
		"start_date":        dr.Start,
		"end_date":          dr.End,
	}).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("repo.BookingRepo.ExistsAtInterval: %w", err)
	}
	return exists, nil
}

func (r *pgBookingRepo) ListByListing(ctx context.Context, listingPublicID uuid.UUID) ([]domain.Booking, error) {
	const q = selectBooking + `
	WHERE l.public_id = @listing_public_id
	ORDER BY b.start_date, b.id`

	bookings, err := r.list(ctx, q, pgx.NamedArgs{"listing_public_id": listingPublicID})
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.ListByListing: %w", err)
	}
	return bookings, nil
}

func (r *pgBookingRepo) ListByTenant(ctx context.Context, tenantPublicID uuid.UUID) ([]domain.Booking, error) {
	const q = selectBooking + `
	WHERE b.tenant_public_id = @tenant_public_id
	ORDER BY b.start_date DESC, b.id DESC`

	bookings, err := r.list(ctx, q, pgx.NamedArgs{"tenant_public_id": tenantPublicID})
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.ListByTenant: %w", err)
	}
	return bookings, nil
}

func (r *pgBookingRepo) ListByListingPublicIDs(ctx context.Context, listingPublicIDs []uuid.UUID) ([]domain.Booking, error) {
	if len(listingPublicIDs) == 0 {
		return nil, nil
	}
	const q = selectBooking + `
	WHERE l.public_id = ANY(@ids::uuid[])
	ORDER BY b.start_date DESC, b.id DESC`

	bookings, err := r.list(ctx, q, pgx.NamedArgs{"ids": uuidStrings(listingPublicIDs)})
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.ListByListingPublicIDs: %w", err)
	}
	return bookings, nil
}

func (r *pgBookingRepo) ListOverlappingListingIDs(ctx context.Context, listingPublicIDs []uuid.UUID, dr domain.DateRange) ([]uuid.UUID, error) {
	if len(listingPublicIDs) == 0 {
		return nil, nil
	}
	const q = `
		SELECT DISTINCT l.public_id
		FROM bookings b
		JOIN listings l ON l.id = b.listing_id
		WHERE l.public_id = ANY(@ids::uuid[])
		  AND b.start_date < @end_date::date
		  AND @start_date::date < b.end_date`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"ids":        uuidStrings(listingPublicIDs),
		"start_date": dr.Start,
		"end_date":   dr.End,
	})
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.ListOverlappingListingIDs: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("repo.BookingRepo.ListOverlappingListingIDs: scan: %w", err)
		}
		ids = append(ids, fromPgUUID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.ListOverlappingListingIDs: rows: %w", err)
	}
	return ids, nil
}

func (r *pgBookingRepo) DeleteByTenantAndPublicID(ctx context.Context, tenantPublicID, bookingPublicID uuid.UUID) (uuid.UUID, error) {
	const q = `
		DELETE FROM bookings b
		USING listings l
		WHERE l.id = b.listing_id
		  AND b.tenant_public_id = @tenant_public_id
		  AND b.public_id = @public_id
		RETURNING l.public_id`

	listingID, err := r.deleteReturningListing(ctx, q, pgx.NamedArgs{
		"tenant_public_id": tenantPublicID,
		"public_id":        bookingPublicID,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("repo.BookingRepo.DeleteByTenantAndPublicID: %w", err)
	}
	return listingID, nil
}

func (r *pgBookingRepo) DeleteByPublicIDAndListing(ctx context.Context, bookingPublicID, listingPublicID uuid.UUID) (uuid.UUID, error) {
	const q = `
		DELETE FROM bookings b
		USING listings l
		WHERE l.id = b.listing_id
		  AND b.public_id = @public_id
		  AND l.public_id = @listing_public_id
		RETURNING l.public_id`

	listingID, err := r.deleteReturningListing(ctx, q, pgx.NamedArgs{
		"public_id":         bookingPublicID,
		"listing_public_id": listingPublicID,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("repo.BookingRepo.DeleteByPublicIDAndListing: %w", err)
	}
	return listingID, nil
}

func (r *pgBookingRepo) deleteReturningListing(ctx context.Context, q string, args pgx.NamedArgs) (uuid.UUID, error) {
	var listingID pgtype.UUID
	if err := r.db.QueryRow(ctx, q, args).Scan(&listingID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, domain.ErrNotFound
		}
		return uuid.Nil, err
	}
	return fromPgUUID(listingID), nil
}
