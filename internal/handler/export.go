package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/go-chi/render"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/homestay/backend/internal/domain"
)

// csvHeaders is the first row of a bookings export.
var csvHeaders = []string{
	"booking_public_id", "listing_public_id", "location",
	"start_date", "end_date", "nights", "total_price",
}

// renderBookedListings writes bookings as JSON, or as CSV when the request
// asks for ?format=csv.
func renderBookedListings(w http.ResponseWriter, r *http.Request, bookings []domain.BookedListing) {
	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		requestError(w, r, err.Error())
		return
	}

	switch {
	case format == nil || *format == "json":
		render.JSON(w, r, bookedListingsToResponse(bookings))
	case *format == "csv":
		writeCSV(w, bookings)
	default:
		requestError(w, r, "format must be json or csv")
	}
}

func writeCSV(w http.ResponseWriter, bookings []domain.BookedListing) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	_ = cw.Write(csvHeaders)
	for _, b := range bookings {
		_ = cw.Write(bookedListingToCSVRecord(b))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

func bookedListingToCSVRecord(b domain.BookedListing) []string {
	return []string{
		b.BookingPublicID.String(),
		b.ListingPublicID.String(),
		b.Location,
		b.Range.Start.Format("2006-01-02"),
		b.Range.End.Format("2006-01-02"),
		strconv.Itoa(b.Range.Nights()),
		strconv.Itoa(b.TotalPrice),
	}
}
