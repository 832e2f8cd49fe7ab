package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Category classifies a listing for the browse tabs.
// CategoryAll is a query wildcard and is never stored on a listing.
type Category string

const (
	CategoryAll              Category = "ALL"
	CategoryAmazingViews     Category = "AMAZING_VIEWS"
	CategoryOMG              Category = "OMG"
	CategoryTreehouses       Category = "TREEHOUSES"
	CategoryBeach            Category = "BEACH"
	CategoryFarms            Category = "FARMS"
	CategoryTinyHomes        Category = "TINY_HOMES"
	CategoryLake             Category = "LAKE"
	CategoryContainers       Category = "CONTAINERS"
	CategoryCamping          Category = "CAMPING"
	CategoryCastle           Category = "CASTLE"
	CategorySkiing           Category = "SKIING"
	CategoryCampers          Category = "CAMPERS"
	CategoryArctic           Category = "ARCTIC"
	CategoryBoat             Category = "BOAT"
	CategoryBedAndBreakfasts Category = "BED_AND_BREAKFASTS"
	CategoryRooms            Category = "ROOMS"
	CategoryEarthHomes       Category = "EARTH_HOMES"
	CategoryTower            Category = "TOWER"
	CategoryCaves            Category = "CAVES"
	CategoryLuxes            Category = "LUXES"
	CategoryChefsKitchen     Category = "CHEFS_KITCHEN"
)

var categories = map[Category]struct{}{
	CategoryAll: {}, CategoryAmazingViews: {}, CategoryOMG: {}, CategoryTreehouses: {},
	CategoryBeach: {}, CategoryFarms: {}, CategoryTinyHomes: {}, CategoryLake: {},
	CategoryContainers: {}, CategoryCamping: {}, CategoryCastle: {}, CategorySkiing: {},
	CategoryCampers: {}, CategoryArctic: {}, CategoryBoat: {}, CategoryBedAndBreakfasts: {},
	CategoryRooms: {}, CategoryEarthHomes: {}, CategoryTower: {}, CategoryCaves: {},
	CategoryLuxes: {}, CategoryChefsKitchen: {},
}

// ParseCategory converts a raw string into a Category.
// An empty string means CategoryAll.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return CategoryAll, nil
	}
	c := Category(s)
	if _, ok := categories[c]; !ok {
		return "", fmt.Errorf("%w: unknown category %q", ErrValidation, s)
	}
	return c, nil
}

// Listing is a property offered for rent by a landlord.
// Price is the nightly price in whole currency units.
type Listing struct {
	ID               int64
	PublicID         uuid.UUID
	Title            string
	Description      string
	Guests           int
	Bedrooms         int
	Beds             int
	Bathrooms        int
	Price            int
	Category         Category
	Location         string
	LandlordPublicID uuid.UUID
	Pictures         []Picture
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Cover returns the listing's cover picture, falling back to the first
// picture. The zero Picture is returned when the listing has none.
func (l Listing) Cover() Picture {
	for _, p := range l.Pictures {
		if p.IsCover {
			return p
		}
	}
	if len(l.Pictures) > 0 {
		return l.Pictures[0]
	}
	return Picture{}
}

// NewListing is the input for creating a listing.
type NewListing struct {
	Title       string
	Description string
	Guests      int
	Bedrooms    int
	Beds        int
	Bathrooms   int
	Price       int
	Category    Category
	Location    string
	Pictures    []NewPicture
}

// ListingBookingInfo is the slice of a listing the booking workflow needs.
type ListingBookingInfo struct {
	PublicID         uuid.UUID
	Price            int
	LandlordPublicID uuid.UUID
}

// DisplayCard is the reduced read-only view of a listing used by list and
// search pages.
type DisplayCard struct {
	Price    int
	Location string
	Cover    Picture
	Category Category
	PublicID uuid.UUID
}

// ToDisplayCard projects a listing onto its card view.
func (l Listing) ToDisplayCard() DisplayCard {
	return DisplayCard{
		Price:    l.Price,
		Location: l.Location,
		Cover:    l.Cover(),
		Category: l.Category,
		PublicID: l.PublicID,
	}
}

// ListingDetail is the full public view of one listing.
// Landlord is nil when the owning user can no longer be resolved.
type ListingDetail struct {
	PublicID    uuid.UUID
	Title       string
	Description string
	Guests      int
	Bedrooms    int
	Beds        int
	Bathrooms   int
	Price       int
	Category    Category
	Location    string
	Pictures    []Picture
	Landlord    *LandlordProfile
}

// SearchCriteria filters listings for the tenant search page.
// The numeric fields are matched exactly.
type SearchCriteria struct {
	Location  string
	Range     DateRange
	Bathrooms int
	Bedrooms  int
	Guests    int
	Beds      int
}
