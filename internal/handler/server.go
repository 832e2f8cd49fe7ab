// Package handler implements the HTTP handlers for the Homestay API.
// All handlers are methods on Server. Methods are split into area files
// (auth.go, listing.go, booking.go, landlord.go) and mounted by Routes.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pkordes/homestay/backend/internal/auth"
	"github.com/pkordes/homestay/backend/internal/domain"
	"github.com/pkordes/homestay/backend/internal/middleware"
)

// UserServicer keeps local users in step with the identity provider.
type UserServicer interface {
	SyncWithIdp(ctx context.Context, claims domain.IdentityClaims, forceResync bool) (domain.User, error)
}

// TenantServicer is the public browsing side of listings.
type TenantServicer interface {
	GetAllByCategory(ctx context.Context, p domain.PaginationParams, category domain.Category) (domain.Page[domain.DisplayCard], error)
	GetOne(ctx context.Context, publicID uuid.UUID) (domain.ListingDetail, error)
	Search(ctx context.Context, p domain.PaginationParams, c domain.SearchCriteria) (domain.Page[domain.DisplayCard], error)
}

// LandlordServicer is the landlord side of listings.
type LandlordServicer interface {
	Create(ctx context.Context, caller domain.User, in domain.NewListing) (uuid.UUID, error)
	GetAllProperties(ctx context.Context, caller domain.User) ([]domain.DisplayCard, error)
	Delete(ctx context.Context, caller domain.User, publicID uuid.UUID) (uuid.UUID, error)
}

// BookingServicer is the booking workflow.
type BookingServicer interface {
	Create(ctx context.Context, caller domain.User, in domain.NewBooking) error
	CheckAvailability(ctx context.Context, listingPublicID uuid.UUID) ([]domain.BookedDate, error)
	Cancel(ctx context.Context, caller domain.User, bookingPublicID, listingPublicID uuid.UUID, byLandlord bool) (uuid.UUID, error)
	GetBookedListings(ctx context.Context, caller domain.User) ([]domain.BookedListing, error)
	GetBookedListingsForLandlord(ctx context.Context, caller domain.User) ([]domain.BookedListing, error)
}

// IdentityProvider drives the OAuth2 login against the identity provider.
// Satisfied by *auth.Provider.
type IdentityProvider interface {
	AuthorizationURL(state string) string
	Exchange(ctx context.Context, code string) (domain.IdentityClaims, error)
	LogoutURL(returnTo string) string
}

// TokenIssuer signs session tokens. Satisfied by *auth.TokenIssuer.
type TokenIssuer interface {
	Issue(u domain.User) (string, error)
}

// Deps are the collaborators of Server. LogoutReturnTo is where the identity
// provider sends the browser after logout.
type Deps struct {
	Users          UserServicer
	Tenants        TenantServicer
	Landlords      LandlordServicer
	Bookings       BookingServicer
	IdP            IdentityProvider
	Tokens         TokenIssuer
	States         auth.StateStore
	OpenAPI        []byte
	LogoutReturnTo string
	Log            *slog.Logger
}

// Server holds the dependencies shared by every handler.
type Server struct {
	users          UserServicer
	tenants        TenantServicer
	landlords      LandlordServicer
	bookings       BookingServicer
	idp            IdentityProvider
	tokens         TokenIssuer
	states         auth.StateStore
	openAPI        []byte
	logoutReturnTo string
	log            *slog.Logger
	validate       *validator.Validate
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps) *Server {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		users:          d.Users,
		tenants:        d.Tenants,
		landlords:      d.Landlords,
		bookings:       d.Bookings,
		idp:            d.IdP,
		tokens:         d.Tokens,
		states:         d.States,
		openAPI:        d.OpenAPI,
		logoutReturnTo: d.LogoutReturnTo,
		log:            log,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Middleware carries the request guards Routes applies per route group.
// A nil field means no guard.
type Middleware struct {
	// Authenticate resolves the caller and stores it with middleware.WithUser.
	Authenticate func(http.Handler) http.Handler
	// AuthRateLimit throttles the login and callback routes.
	AuthRateLimit func(http.Handler) http.Handler
}

// Routes returns the API router. Global middleware (request id, logging,
// CORS, body limit) is applied by the caller.
func (s *Server) Routes(mw Middleware) chi.Router {
	authn := orPassthrough(mw.Authenticate)
	limit := orPassthrough(mw.AuthRateLimit)
	landlordOnly := middleware.RequireAuthority(domain.AuthorityLandlord)

	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/auth", func(r chi.Router) {
		r.With(limit).Get("/login", s.Login)
		r.With(limit).Get("/callback", s.Callback)
		r.Post("/logout", s.Logout)
		r.With(authn).Get("/me", s.Me)
	})

	r.Route("/listings", func(r chi.Router) {
		r.Get("/", s.ListListings)
		r.Post("/search", s.SearchListings)
		r.Get("/{id}", s.GetListing)
		r.Get("/{id}/availability", s.GetAvailability)
	})

	r.Group(func(r chi.Router) {
		r.Use(authn)

		r.Post("/bookings", s.CreateBooking)
		r.Delete("/bookings/{id}", s.CancelBooking)
		r.Get("/me/bookings", s.ListMyBookings)

		r.Post("/landlord/listings", s.CreateListing)
		r.With(landlordOnly).Get("/landlord/listings", s.ListMyListings)
		r.With(landlordOnly).Delete("/landlord/listings/{id}", s.DeleteListing)
		r.With(landlordOnly).Get("/landlord/reservations", s.ListReservations)
	})

	return r
}

func orPassthrough(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw != nil {
		return mw
	}
	return func(next http.Handler) http.Handler { return next }
}
