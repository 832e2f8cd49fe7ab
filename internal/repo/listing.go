package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/homestay/backend/internal/domain"
)

// ListingRepo defines the persistence operations for Listings.
// Methods named *WithCover load only the cover picture (or the first picture
// when none is flagged) into Listing.Pictures; GetByPublicID loads them all.
type ListingRepo interface {
	// Create inserts a listing without its pictures and returns the persisted
	// record with id, public_id and timestamps populated.
	Create(ctx context.Context, listing domain.Listing) (domain.Listing, error)

	// GetByPublicID returns the listing with every picture.
	// Returns domain.ErrNotFound if it does not exist.
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (domain.Listing, error)

	// GetByPublicIDAndLandlordWithCover returns the listing only if it is owned
	// by landlordPublicID; otherwise domain.ErrNotFound.
	GetByPublicIDAndLandlordWithCover(ctx context.Context, publicID, landlordPublicID uuid.UUID) (domain.Listing, error)

	// ListAllWithCover returns one page of all listings, newest first, and the total count.
	ListAllWithCover(ctx context.Context, p domain.PaginationParams) ([]domain.Listing, int64, error)

	// ListByCategoryWithCover returns one page of listings in a category and the total count.
	ListByCategoryWithCover(ctx context.Context, category domain.Category, p domain.PaginationParams) ([]domain.Listing, int64, error)

	// ListByLandlordWithCover returns every listing owned by the landlord, newest first.
	ListByLandlordWithCover(ctx context.Context, landlordPublicID uuid.UUID) ([]domain.Listing, error)

	// ListByPublicIDsWithCover returns the listings whose public ids are in ids.
	// Unknown ids are silently skipped.
	ListByPublicIDsWithCover(ctx context.Context, ids []uuid.UUID) ([]domain.Listing, error)

	// Search returns one page of listings exactly matching the location and
	// the four numeric amenities that have no booking overlapping the range,
	// together with the total number of such listings.
	Search(ctx context.Context, c domain.SearchCriteria, p domain.PaginationParams) ([]domain.Listing, int64, error)

	// DeleteByPublicIDAndLandlord removes a listing owned by the landlord and
	// returns the number of rows deleted (0 or 1). Pictures and bookings cascade.
	DeleteByPublicIDAndLandlord(ctx context.Context, publicID, landlordPublicID uuid.UUID) (int64, error)
}

// pgListingRepo is the Postgres implementation of ListingRepo.
type pgListingRepo struct {
	db db
}

// NewListingRepo constructs a ListingRepo backed by the provided db connection.
func NewListingRepo(db db) ListingRepo {
	return &pgListingRepo{db: db}
}

const listingColumns = `
	l.id, l.public_id, l.title, l.description, l.guests, l.bedrooms, l.beds, l.bathrooms,
	l.price, l.category, l.location, l.landlord_public_id, l.created_at, l.updated_at`

// selectListingWithCover joins the single cover picture of each listing.
// The cover columns are NULL when the listing has no pictures.
const selectListingWithCover = `
	SELECT` + listingColumns + `,
	       c.object_key, c.url, c.content_type, c.is_cover
	FROM listings l
	LEFT JOIN LATERAL (
		SELECT p.object_key, p.url, p.content_type, p.is_cover
		FROM listing_pictures p
		WHERE p.listing_id = l.id
		ORDER BY p.is_cover DESC, p.id
		LIMIT 1
	) c ON true`

func (r *pgListingRepo) Create(ctx context.Context, listing domain.Listing) (domain.Listing, error) {
	const q = `
		INSERT INTO listings AS l (title, description, guests, bedrooms, beds, bathrooms,
		                           price, category, location, landlord_public_id)
		VALUES (@title, @description, @guests, @bedrooms, @beds, @bathrooms,
		        @price, @category, @location, @landlord_public_id)
		RETURNING` + listingColumns

	args := pgx.NamedArgs{
		"title":              listing.Title,
		"description":        listing.Description,
		"guests":             listing.Guests,
		"bedrooms":           listing.Bedrooms,
		"beds":               listing.Beds,
		"bathrooms":          listing.Bathrooms,
		"price":              listing.Price,
		"category":           string(listing.Category),
		"location":           listing.Location,
		"landlord_public_id": listing.LandlordPublicID,
	}

	created, err := scanListing(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Listing{}, fmt.Errorf("repo.ListingRepo.Create: %w", err)
	}
	return created, nil
}

func (r *pgListingRepo) GetByPublicID(ctx context.Context, publicID uuid.UUID) (domain.Listing, error) {
	const q = `SELECT` + listingColumns + ` FROM listings l WHERE l.public_id = @public_id`

	listing, err := scanListing(r.db.QueryRow(ctx, q, pgx.NamedArgs{"public_id": publicID}))
	if err != nil {
		return domain.Listing{}, fmt.Errorf("repo.ListingRepo.GetByPublicID: %w", err)
	}

	const pq = `
		SELECT object_key, url, content_type, is_cover
		FROM listing_pictures
		WHERE listing_id = @listing_id
		ORDER BY is_cover DESC, id`

	rows, err := r.db.Query(ctx, pq, pgx.NamedArgs{"listing_id": listing.ID})
	if err != nil {
		return domain.Listing{}, fmt.Errorf("repo.ListingRepo.GetByPublicID: pictures: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Picture
		if err := rows.Scan(&p.Key, &p.URL, &p.ContentType, &p.IsCover); err != nil {
			return domain.Listing{}, fmt.Errorf("repo.ListingRepo.GetByPublicID: scan picture: %w", err)
		}
		listing.Pictures = append(listing.Pictures, p)
	}
	if err := rows.Err(); err != nil {
		return domain.Listing{}, fmt.Errorf("repo.ListingRepo.GetByPublicID: rows: %w", err)
	}
	return listing, nil
}

func (r *pgListingRepo) GetByPublicIDAndLandlordWithCover(ctx context.Context, publicID, landlordPublicID uuid.UUID) (domain.Listing, error) {
	const q = selectListingWithCover + `
	WHERE l.public_id = @public_id AND l.landlord_public_id = @landlord_public_id`

	listing, err := scanListingWithCover(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"public_id":          publicID,
		"landlord_public_id": landlordPublicID,
	}))
	if err != nil {
		return domain.Listing{}, fmt.Errorf("repo.ListingRepo.GetByPublicIDAndLandlordWithCover: %w", err)
	}
	return listing, nil
}

func (r *pgListingRepo) ListAllWithCover(ctx context.Context, p domain.PaginationParams) ([]domain.Listing, int64, error) {
	const q = selectListingWithCover + `
	ORDER BY l.created_at DESC, l.id DESC
	LIMIT @limit OFFSET @offset`

	const cq = `SELECT count(*) FROM listings`

	listings, total, err := r.page(ctx, q, cq, pgx.NamedArgs{}, p)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ListingRepo.ListAllWithCover: %w", err)
	}
	return listings, total, nil
}

func (r *pgListingRepo) ListByCategoryWithCover(ctx context.Context, category domain.Category, p domain.PaginationParams) ([]domain.Listing, int64, error) {
	const q = selectListingWithCover + `
	WHERE l.category = @category
	ORDER BY l.created_at DESC, l.id DESC
	LIMIT @limit OFFSET @offset`

	const cq = `SELECT count(*) FROM listings WHERE category = @category`

	listings, total, err := r.page(ctx, q, cq, pgx.NamedArgs{"category": string(category)}, p)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ListingRepo.ListByCategoryWithCover: %w", err)
	}
	return listings, total, nil
}

func (r *pgListingRepo) ListByLandlordWithCover(ctx context.Context, landlordPublicID uuid.UUID) ([]domain.Listing, error) {
	const q = selectListingWithCover + `
	WHERE l.landlord_public_id = @landlord_public_id
	ORDER BY l.created_at DESC, l.id DESC`

	listings, err := r.list(ctx, q, pgx.NamedArgs{"landlord_public_id": landlordPublicID})
	if err != nil {
		return nil, fmt.Errorf("repo.ListingRepo.ListByLandlordWithCover: %w", err)
	}
	return listings, nil
}

func (r *pgListingRepo) ListByPublicIDsWithCover(ctx context.Context, ids []uuid.UUID) ([]domain.Listing, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const q = selectListingWithCover + `
	WHERE l.public_id = ANY(@ids::uuid[])
	ORDER BY l.id`

	listings, err := r.list(ctx, q, pgx.NamedArgs{"ids": uuidStrings(ids)})
	if err != nil {
		return nil, fmt.Errorf("repo.ListingRepo.ListByPublicIDsWithCover: %w", err)
	}
	return listings, nil
}

// Search excludes booked listings with an anti-join so that the page is
// filled from available listings only and the total is exact.
func (r *pgListingRepo) Search(ctx context.Context, c domain.SearchCriteria, p domain.PaginationParams) ([]domain.Listing, int64, error) {
	const filter = `
	WHERE l.location  = @location
	  AND l.bathrooms = @bathrooms
	  AND l.bedrooms  = @bedrooms
	  AND l.guests    = @guests
	  AND l.beds      = @beds
	  AND NOT EXISTS (
		SELECT 1 FROM bookings b
		WHERE b.listing_id = l.id
		  AND b.start_date < @end_date::date
		  AND @start_date::date < b.end_date
	  )`

	const q = selectListingWithCover + filter + `
	ORDER BY l.created_at DESC, l.id DESC
	LIMIT @limit OFFSET @offset`

	const cq = `SELECT count(*) FROM listings l` + filter

	args := pgx.NamedArgs{
		"location":   c.Location,
		"bathrooms":  c.Bathrooms,
		"bedrooms":   c.Bedrooms,
		"guests":     c.Guests,
		"beds":       c.Beds,
		"start_date": c.Range.Start,
		"end_date":   c.Range.End,
	}

	listings, total, err := r.page(ctx, q, cq, args, p)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ListingRepo.Search: %w", err)
	}
	return listings, total, nil
}

func (r *pgListingRepo) DeleteByPublicIDAndLandlord(ctx context.Context, publicID, landlordPublicID uuid.UUID) (int64, error) {
	const q = `DELETE FROM listings WHERE public_id = @public_id AND landlord_public_id = @landlord_public_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"public_id":          publicID,
		"landlord_public_id": landlordPublicID,
	})
	if err != nil {
		return 0, fmt.Errorf("repo.ListingRepo.DeleteByPublicIDAndLandlord: %w", err)
	}
	return tag.RowsAffected(), nil
}

// page runs a paged listing query and its matching count query.
// args is shared by both; limit and offset are added for the page query only.
func (r *pgListingRepo) page(ctx context.Context, q, countQ string, args pgx.NamedArgs, p domain.PaginationParams) ([]domain.Listing, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, countQ, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	pageArgs := pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()}
	for k, v := range args {
		pageArgs[k] = v
	}

	listings, err := r.list(ctx, q, pageArgs)
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func (r *pgListingRepo) list(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Listing, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		l, err := scanListingWithCover(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return listings, nil
}

func listingDest(l *domain.Listing, publicID, landlord *pgtype.UUID, category *string) []any {
	return []any{
		&l.ID, publicID, &l.Title, &l.Description, &l.Guests, &l.Bedrooms, &l.Beds, &l.Bathrooms,
		&l.Price, category, &l.Location, landlord, &l.CreatedAt, &l.UpdatedAt,
	}
}

func scanListing(s scanner) (domain.Listing, error) {
	var (
		l                  domain.Listing
		publicID, landlord pgtype.UUID
		category           string
	)
	if err := s.Scan(listingDest(&l, &publicID, &landlord, &category)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Listing{}, domain.ErrNotFound
		}
		return domain.Listing{}, err
	}
	l.PublicID = fromPgUUID(publicID)
	l.LandlordPublicID = fromPgUUID(landlord)
	l.Category = domain.Category(category)
	return l, nil
}

// scanListingWithCover maps a row of selectListingWithCover. Pictures holds
// the cover when the listing has at least one picture.
func scanListingWithCover(s scanner) (domain.Listing, error) {
	var (
		l                  domain.Listing
		publicID, landlord pgtype.UUID
		category           string
		key, url, ctype    pgtype.Text
		isCover            pgtype.Bool
	)
	dest := append(listingDest(&l, &publicID, &landlord, &category), &key, &url, &ctype, &isCover)
	if err := s.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Listing{}, domain.ErrNotFound
		}
		return domain.Listing{}, err
	}
	l.PublicID = fromPgUUID(publicID)
	l.LandlordPublicID = fromPgUUID(landlord)
	l.Category = domain.Category(category)
	if key.Valid {
		l.Pictures = []domain.Picture{{
			Key:         key.String,
			URL:         url.String,
			ContentType: ctype.String,
			IsCover:     isCover.Bool,
		}}
	}
	return l, nil
}
