package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/homestay/backend/internal/domain"
)

// SearchRequest is the body of POST /listings/search. The counts are matched
// exactly.
type SearchRequest struct {
	Location  string             `json:"location" validate:"required"`
	StartDate openapi_types.Date `json:"start_date" validate:"required"`
	EndDate   openapi_types.Date `json:"end_date" validate:"required"`
	Guests    int                `json:"guests" validate:"gte=0"`
	Bedrooms  int                `json:"bedrooms" validate:"gte=0"`
	Beds      int                `json:"beds" validate:"gte=0"`
	Bathrooms int                `json:"bathrooms" validate:"gte=0"`
}

// ListListings handles GET /listings.
// Supports ?category= (default ALL) plus ?page= and ?limit=.
func (s *Server) ListListings(w http.ResponseWriter, r *http.Request) {
	params, err := paginationParams(r)
	if err != nil {
		requestError(w, r, err.Error())
		return
	}

	var raw *string
	if err := runtime.BindQueryParameter("form", true, false, "category", r.URL.Query(), &raw); err != nil {
		requestError(w, r, err.Error())
		return
	}
	category := domain.CategoryAll
	if raw != nil {
		if category, err = domain.ParseCategory(*raw); err != nil {
			requestError(w, r, domain.Message(err))
			return
		}
	}

	page, err := s.tenants.GetAllByCategory(r.Context(), params, category)
	if err != nil {
		s.serviceError(w, r, "handler.ListListings", err)
		return
	}
	render.JSON(w, r, cardPageToResponse(page))
}

// GetListing handles GET /listings/{id}.
func (s *Server) GetListing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	listing, err := s.tenants.GetOne(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, "handler.GetListing", err)
		return
	}
	render.JSON(w, r, listingToResponse(listing))
}

// SearchListings handles POST /listings/search.
func (s *Server) SearchListings(w http.ResponseWriter, r *http.Request) {
	params, err := paginationParams(r)
	if err != nil {
		requestError(w, r, err.Error())
		return
	}

	var req SearchRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		decodeError(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		validationError(w, r, err)
		return
	}
	dr, err := domain.NewDateRange(req.StartDate.Time, req.EndDate.Time)
	if err != nil {
		requestError(w, r, domain.Message(err))
		return
	}

	page, err := s.tenants.Search(r.Context(), params, domain.SearchCriteria{
		Location:  req.Location,
		Range:     dr,
		Bathrooms: req.Bathrooms,
		Bedrooms:  req.Bedrooms,
		Guests:    req.Guests,
		Beds:      req.Beds,
	})
	if err != nil {
		s.serviceError(w, r, "handler.SearchListings", err)
		return
	}
	render.JSON(w, r, cardPageToResponse(page))
}

// GetAvailability handles GET /listings/{id}/availability.
// It lists the booked intervals of the listing, earliest first.
func (s *Server) GetAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	dates, err := s.bookings.CheckAvailability(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, "handler.GetAvailability", err)
		return
	}
	render.JSON(w, r, bookedDatesToResponse(dates))
}

// pathID parses the {id} path parameter, writing a 422 when it is not a UUID.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		requestError(w, r, "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
