package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/homestay/backend/internal/domain"
)

// --- responses --------------------------------------------------------------

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type PageResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Picture struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	IsCover     bool   `json:"is_cover"`
}

type DisplayCard struct {
	PublicID uuid.UUID `json:"public_id"`
	Price    int       `json:"price"`
	Location string    `json:"location"`
	Category string    `json:"category"`
	Cover    *Picture  `json:"cover"`
}

type Landlord struct {
	FirstName string `json:"first_name"`
	ImageURL  string `json:"image_url"`
}

type Listing struct {
	PublicID    uuid.UUID `json:"public_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Guests      int       `json:"guests"`
	Bedrooms    int       `json:"bedrooms"`
	Beds        int       `json:"beds"`
	Bathrooms   int       `json:"bathrooms"`
	Price       int       `json:"price"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Pictures    []Picture `json:"pictures"`
	Landlord    *Landlord `json:"landlord"`
}

type BookedDate struct {
	StartDate openapi_types.Date `json:"start_date"`
	EndDate   openapi_types.Date `json:"end_date"`
}

type BookedListing struct {
	BookingPublicID uuid.UUID          `json:"booking_public_id"`
	ListingPublicID uuid.UUID          `json:"listing_public_id"`
	Location        string             `json:"location"`
	Cover           *Picture           `json:"cover"`
	StartDate       openapi_types.Date `json:"start_date"`
	EndDate         openapi_types.Date `json:"end_date"`
	TotalPrice      int                `json:"total_price"`
}

type User struct {
	PublicID    uuid.UUID `json:"public_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	ImageURL    string    `json:"image_url"`
	Authorities []string  `json:"authorities"`
}

type PublicIDResponse struct {
	PublicID uuid.UUID `json:"public_id"`
}

type TokenResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type LogoutResponse struct {
	LogoutURL string `json:"logout_url"`
}

// --- mapping helpers --------------------------------------------------------

func pictureToResponse(p domain.Picture) Picture {
	return Picture{URL: p.URL, ContentType: p.ContentType, IsCover: p.IsCover}
}

// coverToResponse returns nil for a listing without pictures.
func coverToResponse(p domain.Picture) *Picture {
	if p.URL == "" && p.Key == "" {
		return nil
	}
	resp := pictureToResponse(p)
	return &resp
}

func cardToResponse(c domain.DisplayCard) DisplayCard {
	return DisplayCard{
		PublicID: c.PublicID,
		Price:    c.Price,
		Location: c.Location,
		Category: string(c.Category),
		Cover:    coverToResponse(c.Cover),
	}
}

func cardsToResponse(cards []domain.DisplayCard) []DisplayCard {
	out := make([]DisplayCard, len(cards))
	for i, c := range cards {
		out[i] = cardToResponse(c)
	}
	return out
}

func cardPageToResponse(p domain.Page[domain.DisplayCard]) PageResponse[DisplayCard] {
	return PageResponse[DisplayCard]{
		Data:       cardsToResponse(p.Items),
		Pagination: Pagination{Page: p.Page, Limit: p.Limit, Total: p.Total},
	}
}

func listingToResponse(l domain.ListingDetail) Listing {
	resp := Listing{
		PublicID:    l.PublicID,
		Title:       l.Title,
		Description: l.Description,
		Guests:      l.Guests,
		Bedrooms:    l.Bedrooms,
		Beds:        l.Beds,
		Bathrooms:   l.Bathrooms,
		Price:       l.Price,
		Category:    string(l.Category),
		Location:    l.Location,
		Pictures:    make([]Picture, len(l.Pictures)),
	}
	for i, p := range l.Pictures {
		resp.Pictures[i] = pictureToResponse(p)
	}
	if l.Landlord != nil {
		resp.Landlord = &Landlord{FirstName: l.Landlord.FirstName, ImageURL: l.Landlord.ImageURL}
	}
	return resp
}

func bookedDatesToResponse(dates []domain.BookedDate) []BookedDate {
	out := make([]BookedDate, len(dates))
	for i, d := range dates {
		out[i] = BookedDate{
			StartDate: openapi_types.Date{Time: d.StartDate},
			EndDate:   openapi_types.Date{Time: d.EndDate},
		}
	}
	return out
}

func bookedListingsToResponse(bookings []domain.BookedListing) []BookedListing {
	out := make([]BookedListing, len(bookings))
	for i, b := range bookings {
		out[i] = BookedListing{
			BookingPublicID: b.BookingPublicID,
			ListingPublicID: b.ListingPublicID,
			Location:        b.Location,
			Cover:           coverToResponse(b.Cover),
			StartDate:       openapi_types.Date{Time: b.Range.Start},
			EndDate:         openapi_types.Date{Time: b.Range.End},
			TotalPrice:      b.TotalPrice,
		}
	}
	return out
}

func userToResponse(u domain.User) User {
	authorities := u.Authorities
	if authorities == nil {
		authorities = []string{}
	}
	return User{
		PublicID:    u.PublicID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		ImageURL:    u.ImageURL,
		Authorities: authorities,
	}
}

// --- parameter binding ------------------------------------------------------

// paginationParams binds the optional ?page= and ?limit= query parameters.
func paginationParams(r *http.Request) (domain.PaginationParams, error) {
	var page, limit *int
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "page", q, &page); err != nil {
		return domain.PaginationParams{}, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &limit); err != nil {
		return domain.PaginationParams{}, err
	}
	return domain.NewPaginationParams(page, limit), nil
}
