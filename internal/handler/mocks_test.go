package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/homestay/backend/internal/auth"
	"github.com/pkordes/homestay/backend/internal/domain"
	"github.com/pkordes/homestay/backend/internal/handler"
	"github.com/pkordes/homestay/backend/internal/middleware"
)

// Test doubles. Set only the method fields your test needs.

type mockUsers struct {
	syncWithIdp func(ctx context.Context, claims domain.IdentityClaims, force bool) (domain.User, error)
}

func (m *mockUsers) SyncWithIdp(ctx context.Context, claims domain.IdentityClaims, force bool) (domain.User, error) {
	return m.syncWithIdp(ctx, claims, force)
}

type mockTenants struct {
	getAllByCategory func(ctx context.Context, p domain.PaginationParams, c domain.Category) (domain.Page[domain.DisplayCard], error)
	getOne           func(ctx context.Context, id uuid.UUID) (domain.ListingDetail, error)
	search           func(ctx context.Context, p domain.PaginationParams, c domain.SearchCriteria) (domain.Page[domain.DisplayCard], error)
}

func (m *mockTenants) GetAllByCategory(ctx context.Context, p domain.PaginationParams, c domain.Category) (domain.Page[domain.DisplayCard], error) {
	return m.getAllByCategory(ctx, p, c)
}
func (m *mockTenants) GetOne(ctx context.Context, id uuid.UUID) (domain.ListingDetail, error) {
	return m.getOne(ctx, id)
}
func (m *mockTenants) Search(ctx context.Context, p domain.PaginationParams, c domain.SearchCriteria) (domain.Page[domain.DisplayCard], error) {
	return m.search(ctx, p, c)
}

type mockLandlords struct {
	create           func(ctx context.Context, caller domain.User, in domain.NewListing) (uuid.UUID, error)
	getAllProperties func(ctx context.Context, caller domain.User) ([]domain.DisplayCard, error)
	delete           func(ctx context.Context, caller domain.User, id uuid.UUID) (uuid.UUID, error)
}

func (m *mockLandlords) Create(ctx context.Context, caller domain.User, in domain.NewListing) (uuid.UUID, error) {
	return m.create(ctx, caller, in)
}
func (m *mockLandlords) GetAllProperties(ctx context.Context, caller domain.User) ([]domain.DisplayCard, error) {
	return m.getAllProperties(ctx, caller)
}
func (m *mockLandlords) Delete(ctx context.Context, caller domain.User, id uuid.UUID) (uuid.UUID, error) {
	return m.delete(ctx, caller, id)
}

type mockBookings struct {
	create                       func(ctx context.Context, caller domain.User, in domain.NewBooking) error
	checkAvailability            func(ctx context.Context, listing uuid.UUID) ([]domain.BookedDate, error)
	cancel                       func(ctx context.Context, caller domain.User, booking, listing uuid.UUID, byLandlord bool) (uuid.UUID, error)
	getBookedListings            func(ctx context.Context, caller domain.User) ([]domain.BookedListing, error)
	getBookedListingsForLandlord func(ctx context.Context, caller domain.User) ([]domain.BookedListing, error)
}

func (m *mockBookings) Create(ctx context.Context, caller domain.User, in domain.NewBooking) error {
	return m.create(ctx, caller, in)
}
func (m *mockBookings) CheckAvailability(ctx context.Context, listing uuid.UUID) ([]domain.BookedDate, error) {
	return m.checkAvailability(ctx, listing)
}
func (m *mockBookings) Cancel(ctx context.Context, caller domain.User, booking, listing uuid.UUID, byLandlord bool) (uuid.UUID, error) {
	return m.cancel(ctx, caller, booking, listing, byLandlord)
}
func (m *mockBookings) GetBookedListings(ctx context.Context, caller domain.User) ([]domain.BookedListing, error) {
	return m.getBookedListings(ctx, caller)
}
func (m *mockBookings) GetBookedListingsForLandlord(ctx context.Context, caller domain.User) ([]domain.BookedListing, error) {
	return m.getBookedListingsForLandlord(ctx, caller)
}

type mockIdP struct {
	exchange func(ctx context.Context, code string) (domain.IdentityClaims, error)
}

func (m *mockIdP) AuthorizationURL(state string) string {
	return "https://idp.test/authorize?state=" + state
}
func (m *mockIdP) Exchange(ctx context.Context, code string) (domain.IdentityClaims, error) {
	return m.exchange(ctx, code)
}
func (m *mockIdP) LogoutURL(returnTo string) string {
	return "https://idp.test/v2/logout?returnTo=" + returnTo
}

type mockTokens struct{}

func (mockTokens) Issue(u domain.User) (string, error) { return "token-for-" + u.Email, nil }

// memStates is an in-memory auth.StateStore.
type memStates struct {
	states map[string]bool
}

func (m *memStates) Put(_ context.Context, state string) error {
	if m.states == nil {
		m.states = map[string]bool{}
	}
	m.states[state] = true
	return nil
}
func (m *memStates) Consume(_ context.Context, state string) (bool, error) {
	ok := m.states[state]
	delete(m.states, state)
	return ok, nil
}

// compile-time checks
var (
	_ handler.UserServicer     = (*mockUsers)(nil)
	_ handler.TenantServicer   = (*mockTenants)(nil)
	_ handler.LandlordServicer = (*mockLandlords)(nil)
	_ handler.BookingServicer  = (*mockBookings)(nil)
	_ handler.IdentityProvider = (*mockIdP)(nil)
	_ handler.TokenIssuer      = mockTokens{}
	_ auth.StateStore          = (*memStates)(nil)
)

// ---- helpers ---------------------------------------------------------------

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAuthenticate lets a request through as user when it carries any
// Authorization header, and rejects it otherwise.
func fakeAuthenticate(user domain.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(middleware.WithUser(r.Context(), user)))
		})
	}
}

// newHTTPHandler wires a Server with the given dependencies into its router,
// authenticating every request that carries an Authorization header as user.
func newHTTPHandler(d handler.Deps, user domain.User) http.Handler {
	if d.Log == nil {
		d.Log = discardLogger()
	}
	return handler.NewServer(d).Routes(handler.Middleware{Authenticate: fakeAuthenticate(user)})
}

func tenantUser() domain.User {
	return domain.User{ID: 1, PublicID: uuid.New(), Email: "tenant@example.com", Authorities: []string{domain.AuthorityTenant}}
}

func landlordUser() domain.User {
	return domain.User{ID: 2, PublicID: uuid.New(), Email: "landlord@example.com",
		Authorities: []string{domain.AuthorityLandlord, domain.AuthorityTenant}}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decode[T any](t *testing.T, r io.Reader) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(r).Decode(&v))
	return v
}

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}
