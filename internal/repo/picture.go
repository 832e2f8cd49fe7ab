package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/homestay/backend/internal/domain"
)

// PictureRepo persists the metadata of listing pictures. The bytes live in
// object storage; only the key and public URL are stored here.
type PictureRepo interface {
	// CreateMany inserts all pictures of a listing in a single round trip.
	CreateMany(ctx context.Context, listingID int64, pictures []domain.Picture) error
}

type pgPictureRepo struct {
	db db
}

// NewPictureRepo constructs a PictureRepo backed by the provided db connection.
func NewPictureRepo(db db) PictureRepo {
	return &pgPictureRepo{db: db}
}

func (r *pgPictureRepo) CreateMany(ctx context.Context, listingID int64, pictures []domain.Picture) error {
	if len(pictures) == 0 {
		return nil
	}
	const q = `
		INSERT INTO listing_pictures (listing_id, object_key, url, content_type, is_cover)
		VALUES (@listing_id, @object_key, @url, @content_type, @is_cover)`

	batch := &pgx.Batch{}
	for _, p := range pictures {
		batch.Queue(q, pgx.NamedArgs{
			"listing_id":   listingID,
			"object_key":   p.Key,
			"url":          p.URL,
			"content_type": p.ContentType,
			"is_cover":     p.IsCover,
		})
	}
	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for i := range pictures {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("repo.PictureRepo.CreateMany: picture %d: %w", i, err)
		}
	}
	return nil
}
