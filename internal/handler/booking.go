package handler

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/homestay/backend/internal/domain"
	"github.com/pkordes/homestay/backend/internal/middleware"
)

// CreateBookingRequest is the body of POST /bookings. Dates are YYYY-MM-DD;
// end_date is the checkout day.
type CreateBookingRequest struct {
	ListingPublicID uuid.UUID          `json:"listing_public_id" validate:"required"`
	StartDate       openapi_types.Date `json:"start_date" validate:"required"`
	EndDate         openapi_types.Date `json:"end_date" validate:"required"`
}

// CreateBooking handles POST /bookings.
func (s *Server) CreateBooking(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		decodeError(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		validationError(w, r, err)
		return
	}

	err := s.bookings.Create(r.Context(), caller, domain.NewBooking{
		StartDate:       req.StartDate.Time,
		EndDate:         req.EndDate.Time,
		ListingPublicID: req.ListingPublicID,
	})
	if err != nil {
		s.serviceError(w, r, "handler.CreateBooking", err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// CancelBooking handles DELETE /bookings/{id}?listing_id=&as_landlord=.
// With as_landlord=true the caller cancels a reservation on one of their own
// listings; otherwise one of their own trips.
func (s *Server) CancelBooking(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}
	listingID, err := uuid.Parse(r.URL.Query().Get("listing_id"))
	if err != nil {
		requestError(w, r, "listing_id must be a UUID")
		return
	}
	var asLandlord *bool
	if err := runtime.BindQueryParameter("form", true, false, "as_landlord", r.URL.Query(), &asLandlord); err != nil {
		requestError(w, r, err.Error())
		return
	}
	byLandlord := asLandlord != nil && *asLandlord
	if byLandlord && !caller.HasAuthority(domain.AuthorityLandlord) {
		writeErrorBody(w, r, http.StatusForbidden, "forbidden", "insufficient permissions")
		return
	}

	id, err := s.bookings.Cancel(r.Context(), caller, bookingID, listingID, byLandlord)
	if err != nil {
		s.serviceError(w, r, "handler.CancelBooking", err)
		return
	}
	render.JSON(w, r, PublicIDResponse{PublicID: id})
}

// ListMyBookings handles GET /me/bookings: the caller's trips.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}

	bookings, err := s.bookings.GetBookedListings(r.Context(), caller)
	if err != nil {
		s.serviceError(w, r, "handler.ListMyBookings", err)
		return
	}
	renderBookedListings(w, r, bookings)
}

// ListReservations handles GET /landlord/reservations: bookings made on the
// caller's listings. Supports ?format=csv like ListMyBookings.
func (s *Server) ListReservations(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}

	bookings, err := s.bookings.GetBookedListingsForLandlord(r.Context(), caller)
	if err != nil {
		s.serviceError(w, r, "handler.ListReservations", err)
		return
	}
	renderBookedListings(w, r, bookings)
}

// caller returns the authenticated user. Routes guard every handler that
// calls it, so a miss means the router was wired without Authenticate.
func (s *Server) caller(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeErrorBody(w, r, http.StatusUnauthorized, "unauthorized", "authentication required")
	}
	return u, ok
}
