package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/homestay/backend/internal/blob"
	"github.com/pkordes/homestay/backend/internal/domain"
	"github.com/pkordes/homestay/backend/internal/repo"
)

// PictureService stores listing pictures: bytes in the blob store, metadata
// in Postgres.
type PictureService struct {
	pictures repo.PictureRepo
	store    blob.Store
	log      *slog.Logger
}

// NewPictureService constructs a PictureService.
func NewPictureService(pictures repo.PictureRepo, store blob.Store, log *slog.Logger) *PictureService {
	return &PictureService{pictures: pictures, store: store, log: log}
}

// SaveAll uploads every picture under listings/<listing public id>/ and then
// records them in input order. Returns domain.ErrValidation for an empty
// picture or a non-image content type; nothing is uploaded in that case.
func (s *PictureService) SaveAll(ctx context.Context, listing domain.Listing, pics []domain.NewPicture) ([]domain.Picture, error) {
	for i, p := range pics {
		if err := validatePicture(p); err != nil {
			return nil, fmt.Errorf("service.PictureService.SaveAll: picture %d: %w", i, err)
		}
	}

	saved := make([]domain.Picture, 0, len(pics))
	for _, p := range pics {
		key := fmt.Sprintf("listings/%s/%s", listing.PublicID, uuid.NewString())
		url, err := s.store.Put(ctx, key, p.Content, p.ContentType)
		if err != nil {
			s.DeleteAll(ctx, saved)
			return nil, fmt.Errorf("service.PictureService.SaveAll: %w", err)
		}
		saved = append(saved, domain.Picture{
			Key:         key,
			URL:         url,
			ContentType: p.ContentType,
			IsCover:     p.IsCover,
		})
	}

	if err := s.pictures.CreateMany(ctx, listing.ID, saved); err != nil {
		s.DeleteAll(ctx, saved)
		return nil, fmt.Errorf("service.PictureService.SaveAll: %w", err)
	}
	return saved, nil
}

// DeleteAll removes picture objects from the blob store. Failures are logged;
// an orphaned object is harmless.
func (s *PictureService) DeleteAll(ctx context.Context, pics []domain.Picture) {
	for _, p := range pics {
		if err := s.store.Delete(ctx, p.Key); err != nil {
			s.log.WarnContext(ctx, "picture delete failed", "key", p.Key, "err", err)
		}
	}
}

func validatePicture(p domain.NewPicture) error {
	if len(p.Content) == 0 {
		return fmt.Errorf("%w: picture content is empty", domain.ErrValidation)
	}
	if !strings.HasPrefix(p.ContentType, "image/") {
		return fmt.Errorf("%w: unsupported picture type %q", domain.ErrValidation, p.ContentType)
	}
	return nil
}
