package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/render"

	"github.com/pkordes/homestay/backend/internal/domain"
)

// maxMultipartMemory is how much of a listing upload is buffered in memory
// before the rest spills to temporary files.
const maxMultipartMemory = 32 << 20

// CreateListingRequest is the "listing" part of POST /landlord/listings.
// CoverIndex selects which uploaded picture is the cover; without it the
// first picture is.
type CreateListingRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Guests      int    `json:"guests" validate:"min=1"`
	Bedrooms    int    `json:"bedrooms" validate:"min=1"`
	Beds        int    `json:"beds" validate:"min=1"`
	Bathrooms   int    `json:"bathrooms" validate:"min=1"`
	Price       int    `json:"price" validate:"min=1"`
	Category    string `json:"category" validate:"required"`
	Location    string `json:"location" validate:"required"`
	CoverIndex  *int   `json:"cover_index" validate:"omitempty,min=0"`
}

// CreateListing handles POST /landlord/listings.
// The body is multipart/form-data: a "listing" field holding
// CreateListingRequest as JSON and one "pictures" file part per image.
func (s *Server) CreateListing(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			decodeError(w, r, err)
			return
		}
		requestError(w, r, "request must be multipart/form-data")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	var req CreateListingRequest
	if err := json.Unmarshal([]byte(r.FormValue("listing")), &req); err != nil {
		requestError(w, r, "listing field must hold the listing as JSON")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		validationError(w, r, err)
		return
	}
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		requestError(w, r, domain.Message(err))
		return
	}

	pictures, err := readPictures(r.MultipartForm.File["pictures"])
	if err != nil {
		requestError(w, r, err.Error())
		return
	}
	if req.CoverIndex != nil {
		if *req.CoverIndex >= len(pictures) {
			requestError(w, r, "cover_index is out of range")
			return
		}
		pictures[*req.CoverIndex].IsCover = true
	}

	id, err := s.landlords.Create(r.Context(), caller, domain.NewListing{
		Title:       req.Title,
		Description: req.Description,
		Guests:      req.Guests,
		Bedrooms:    req.Bedrooms,
		Beds:        req.Beds,
		Bathrooms:   req.Bathrooms,
		Price:       req.Price,
		Category:    category,
		Location:    req.Location,
		Pictures:    pictures,
	})
	if err != nil {
		s.serviceError(w, r, "handler.CreateListing", err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, PublicIDResponse{PublicID: id})
}

// ListMyListings handles GET /landlord/listings.
func (s *Server) ListMyListings(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}

	cards, err := s.landlords.GetAllProperties(r.Context(), caller)
	if err != nil {
		s.serviceError(w, r, "handler.ListMyListings", err)
		return
	}
	render.JSON(w, r, cardsToResponse(cards))
}

// DeleteListing handles DELETE /landlord/listings/{id}.
func (s *Server) DeleteListing(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	deleted, err := s.landlords.Delete(r.Context(), caller, id)
	if err != nil {
		s.serviceError(w, r, "handler.DeleteListing", err)
		return
	}
	render.JSON(w, r, PublicIDResponse{PublicID: deleted})
}

func readPictures(files []*multipart.FileHeader) ([]domain.NewPicture, error) {
	pictures := make([]domain.NewPicture, 0, len(files))
	for _, fh := range files {
		content, err := readPart(fh)
		if err != nil {
			return nil, fmt.Errorf("picture %q: %w", fh.Filename, err)
		}
		pictures = append(pictures, domain.NewPicture{
			Content:     content,
			ContentType: fh.Header.Get("Content-Type"),
		})
	}
	return pictures, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
