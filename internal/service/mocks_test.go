package service_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/homestay/backend/internal/blob"
	"github.com/pkordes/homestay/backend/internal/domain"
	"github.com/pkordes/homestay/backend/internal/events"
	"github.com/pkordes/homestay/backend/internal/repo"
	"github.com/pkordes/homestay/backend/internal/service"
)

// Hand-written test doubles. A nil function field means the test does not
// expect that call; hitting it panics with a nil func call, which fails the test.

// ---- repo.UserRepo ---------------------------------------------------------

type mockUserRepo struct {
	getByEmail    func(ctx context.Context, email string) (domain.User, error)
	getByPublicID func(ctx context.Context, id uuid.UUID) (domain.User, error)
	create        func(ctx context.Context, u domain.User) (domain.User, error)
	update        func(ctx context.Context, u domain.User) (domain.User, error)
	addAuthority  func(ctx context.Context, userID int64, name string) error
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return m.getByEmail(ctx, email)
}
func (m *mockUserRepo) GetByPublicID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return m.getByPublicID(ctx, id)
}
func (m *mockUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	return m.create(ctx, u)
}
func (m *mockUserRepo) Update(ctx context.Context, u domain.User) (domain.User, error) {
	return m.update(ctx, u)
}
func (m *mockUserRepo) AddAuthority(ctx context.Context, userID int64, name string) error {
	return m.addAuthority(ctx, userID, name)
}

var _ repo.UserRepo = (*mockUserRepo)(nil)

// ---- repo.ListingRepo ------------------------------------------------------

type mockListingRepo struct {
	create                            func(ctx context.Context, l domain.Listing) (domain.Listing, error)
	getByPublicID                     func(ctx context.Context, id uuid.UUID) (domain.Listing, error)
	getByPublicIDAndLandlordWithCover func(ctx context.Context, id, landlord uuid.UUID) (domain.Listing, error)
	listAllWithCover                  func(ctx context.Context, p domain.PaginationParams) ([]domain.Listing, int64, error)
	listByCategoryWithCover           func(ctx context.Context, c domain.Category, p domain.PaginationParams) ([]domain.Listing, int64, error)
	listByLandlordWithCover           func(ctx context.Context, landlord uuid.UUID) ([]domain.Listing, error)
	listByPublicIDsWithCover          func(ctx context.Context, ids []uuid.UUID) ([]domain.Listing, error)
	search                            func(ctx context.Context, c domain.SearchCriteria, p domain.PaginationParams) ([]domain.Listing, int64, error)
	deleteByPublicIDAndLandlord       func(ctx context.Context, id, landlord uuid.UUID) (int64, error)
}

func (m *mockListingRepo) Create(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	return m.create(ctx, l)
}
func (m *mockListingRepo) GetByPublicID(ctx context.Context, id uuid.UUID) (domain.Listing, error) {
	return m.getByPublicID(ctx, id)
}
func (m *mockListingRepo) GetByPublicIDAndLandlordWithCover(ctx context.Context, id, landlord uuid.UUID) (domain.Listing, error) {
	return m.getByPublicIDAndLandlordWithCover(ctx, id, landlord)
}
func (m *mockListingRepo) ListAllWithCover(ctx context.Context, p domain.PaginationParams) ([]domain.Listing, int64, error) {
	return m.listAllWithCover(ctx, p)
}
func (m *mockListingRepo) ListByCategoryWithCover(ctx context.Context, c domain.Category, p domain.PaginationParams) ([]domain.Listing, int64, error) {
	return m.listByCategoryWithCover(ctx, c, p)
}
func (m *mockListingRepo) ListByLandlordWithCover(ctx context.Context, landlord uuid.UUID) ([]domain.Listing, error) {
	return m.listByLandlordWithCover(ctx, landlord)
}
func (m *mockListingRepo) ListByPublicIDsWithCover(ctx context.Context, ids []uuid.UUID) ([]domain.Listing, error) {
	return m.listByPublicIDsWithCover(ctx, ids)
}
func (m *mockListingRepo) Search(ctx context.Context, c domain.SearchCriteria, p domain.PaginationParams) ([]domain.Listing, int64, error) {
	return m.search(ctx, c, p)
}
func (m *mockListingRepo) DeleteByPublicIDAndLandlord(ctx context.Context, id, landlord uuid.UUID) (int64, error) {
	return m.deleteByPublicIDAndLandlord(ctx, id, landlord)
}

var _ repo.ListingRepo = (*mockListingRepo)(nil)

// ---- repo.PictureRepo ------------------------------------------------------

type mockPictureRepo struct {
	createMany func(ctx context.Context, listingID int64, pics []domain.Picture) error
}

func (m *mockPictureRepo) CreateMany(ctx context.Context, listingID int64, pics []domain.Picture) error {
	return m.createMany(ctx, listingID, pics)
}

var _ repo.PictureRepo = (*mockPictureRepo)(nil)

// ---- repo.BookingRepo ------------------------------------------------------

type mockBookingRepo struct {
	create                     func(ctx context.Context, b domain.Booking) (domain.Booking, error)
	existsAtInterval           func(ctx context.Context, listing uuid.UUID, dr domain.DateRange) (bool, error)
	listByListing              func(ctx context.Context, listing uuid.UUID) ([]domain.Booking, error)
	listByTenant               func(ctx context.Context, tenant uuid.UUID) ([]domain.Booking, error)
	listByListingPublicIDs     func(ctx context.Context, ids []uuid.UUID) ([]domain.Booking, error)
	listOverlappingListingIDs  func(ctx context.Context, ids []uuid.UUID, dr domain.DateRange) ([]uuid.UUID, error)
	deleteByTenantAndPublicID  func(ctx context.Context, tenant, booking uuid.UUID) (uuid.UUID, error)
	deleteByPublicIDAndListing func(ctx context.Context, booking, listing uuid.UUID) (uuid.UUID, error)
}

func (m *mockBookingRepo) Create(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	return m.create(ctx, b)
}
func (m *mockBookingRepo) ExistsAtInterval(ctx context.Context, listing uuid.UUID, dr domain.DateRange) (bool, error) {
	return m.existsAtInterval(ctx, listing, dr)
}
func (m *mockBookingRepo) ListByListing(ctx context.Context, listing uuid.UUID) ([]domain.Booking, error) {
	return m.listByListing(ctx, listing)
}
func (m *mockBookingRepo) ListByTenant(ctx context.Context, tenant uuid.UUID) ([]domain.Booking, error) {
	return m.listByTenant(ctx, tenant)
}
func (m *mockBookingRepo) ListByListingPublicIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Booking, error) {
	return m.listByListingPublicIDs(ctx, ids)
}
func (m *mockBookingRepo) ListOverlappingListingIDs(ctx context.Context, ids []uuid.UUID, dr domain.DateRange) ([]uuid.UUID, error) {
	return m.listOverlappingListingIDs(ctx, ids, dr)
}
func (m *mockBookingRepo) DeleteByTenantAndPublicID(ctx context.Context, tenant, booking uuid.UUID) (uuid.UUID, error) {
	return m.deleteByTenantAndPublicID(ctx, tenant, booking)
}
func (m *mockBookingRepo) DeleteByPublicIDAndListing(ctx context.Context, booking, listing uuid.UUID) (uuid.UUID, error) {
	return m.deleteByPublicIDAndListing(ctx, booking, listing)
}

var _ repo.BookingRepo = (*mockBookingRepo)(nil)

// ---- blob.Store ------------------------------------------------------------

// memStore records puts and deletes in memory.
type memStore struct {
	put     func(ctx context.Context, key string, content []byte, contentType string) (string, error)
	deleted []string
}

func (m *memStore) Put(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	if m.put != nil {
		return m.put(ctx, key, content, contentType)
	}
	return "http://blob/" + key, nil
}
func (m *memStore) Delete(_ context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	return nil
}

var _ blob.Store = (*memStore)(nil)

// ---- IdentityManager / events.Publisher ------------------------------------

type mockIdentityManager struct {
	addLandlordRole func(ctx context.Context, u domain.User) error
}

func (m *mockIdentityManager) AddLandlordRole(ctx context.Context, u domain.User) error {
	return m.addLandlordRole(ctx, u)
}

var _ service.IdentityManager = (*mockIdentityManager)(nil)

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	published []events.Event
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.published = append(p.published, e)
	return p.err
}
func (p *recordingPublisher) Close() error { return nil }

var _ events.Publisher = (*recordingPublisher)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
