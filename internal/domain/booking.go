package domain

import (
	"time"

	"github.com/google/uuid"
)

// Booking reserves a listing for a tenant over a half-open date range.
// For a given listing no two bookings may overlap; the database enforces this.
type Booking struct {
	ID              int64
	PublicID        uuid.UUID
	Range           DateRange
	TotalPrice      int
	Guests          int
	ListingPublicID uuid.UUID
	TenantPublicID  uuid.UUID
	CreatedAt       time.Time
}

// NewBooking is the tenant's request to book a listing.
type NewBooking struct {
	StartDate       time.Time
	EndDate         time.Time
	ListingPublicID uuid.UUID
}

// BookedDate is one unavailable interval on a listing's calendar.
type BookedDate struct {
	StartDate time.Time
	EndDate   time.Time
}

// BookedListing is a booking joined with the card of the listing it is for,
// as shown on "my trips" and "my reservations" pages.
type BookedListing struct {
	Cover           Picture
	Location        string
	Range           DateRange
	TotalPrice      int
	BookingPublicID uuid.UUID
	ListingPublicID uuid.UUID
}
