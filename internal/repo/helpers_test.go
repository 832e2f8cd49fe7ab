package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/homestay/backend/internal/domain"
	"github.com/pkordes/homestay/backend/internal/repo"
	"github.com/pkordes/homestay/backend/testutil"
)

// repos bundles every repo backed by the same transaction so tests can build
// listing → booking hierarchies that are rolled back afterwards.
type repos struct {
	users    repo.UserRepo
	listings repo.ListingRepo
	pictures repo.PictureRepo
	bookings repo.BookingRepo
}

func newTestRepos(t *testing.T) repos {
	t.Helper()
	tx := testutil.NewTx(t)
	return repos{
		users:    repo.NewUserRepo(tx),
		listings: repo.NewListingRepo(tx),
		pictures: repo.NewPictureRepo(tx),
		bookings: repo.NewBookingRepo(tx),
	}
}

// uniqueLocation keeps search tests independent of rows committed by other
// runs against the same database.
func uniqueLocation() string {
	return "loc-" + uuid.NewString()
}

func sampleListing(landlord uuid.UUID, location string) domain.Listing {
	return domain.Listing{
		Title:            "Sea view flat",
		Description:      "Two steps from the beach",
		Guests:           2,
		Bedrooms:         1,
		Beds:             1,
		Bathrooms:        1,
		Price:            100,
		Category:         domain.CategoryBeach,
		Location:         location,
		LandlordPublicID: landlord,
	}
}

func createListing(t *testing.T, r repos, l domain.Listing) domain.Listing {
	t.Helper()
	created, err := r.listings.Create(context.Background(), l)
	require.NoError(t, err, "create listing")
	return created
}

func createBooking(t *testing.T, r repos, listing uuid.UUID, tenant uuid.UUID, dr domain.DateRange) domain.Booking {
	t.Helper()
	b, err := r.bookings.Create(context.Background(), domain.Booking{
		Range:           dr,
		TotalPrice:      100 * dr.Nights(),
		Guests:          1,
		ListingPublicID: listing,
		TenantPublicID:  tenant,
	})
	require.NoError(t, err, "create booking")
	return b
}

func day(m time.Month, d int) time.Time {
	return time.Date(2030, m, d, 0, 0, 0, 0, time.UTC)
}

func dateRange(t *testing.T, start, end time.Time) domain.DateRange {
	t.Helper()
	dr, err := domain.NewDateRange(start, end)
	require.NoError(t, err)
	return dr
}
