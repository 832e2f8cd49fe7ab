package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/homestay/backend/internal/domain"
	"github.com/pkordes/homestay/backend/internal/service"
)

func TestPictureService_SaveAll_OK(t *testing.T) {
	listing := domain.Listing{ID: 9, PublicID: uuid.New()}
	var recorded []domain.Picture
	svc := service.NewPictureService(&mockPictureRepo{
		createMany: func(_ context.Context, listingID int64, pics []domain.Picture) error {
			assert.Equal(t, int64(9), listingID)
			recorded = pics
			return nil
		},
	}, &memStore{}, discardLogger())

	saved, err := svc.SaveAll(context.Background(), listing, []domain.NewPicture{
		{Content: []byte("a"), ContentType: "image/jpeg", IsCover: true},
		{Content: []byte("b"), ContentType: "image/webp"},
	})

	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, recorded, saved)
	for _, p := range saved {
		assert.True(t, strings.HasPrefix(p.Key, "listings/"+listing.PublicID.String()+"/"), p.Key)
		assert.Equal(t, "http://blob/"+p.Key, p.URL)
	}
	assert.True(t, saved[0].IsCover)
	assert.Equal(t, "image/webp", saved[1].ContentType)
	assert.NotEqual(t, saved[0].Key, saved[1].Key)
}

func TestPictureService_SaveAll_InvalidUploadsNothing(t *testing.T) {
	puts := 0
	store := &memStore{put: func(_ context.Context, key string, _ []byte, _ string) (string, error) {
		puts++
		return key, nil
	}}
	svc := service.NewPictureService(&mockPictureRepo{}, store, discardLogger())

	_, err := svc.SaveAll(context.Background(), domain.Listing{PublicID: uuid.New()}, []domain.NewPicture{
		{Content: []byte("a"), ContentType: "image/png"},
		{Content: []byte("b"), ContentType: "text/plain"},
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, puts)
}

func TestPictureService_SaveAll_UploadFailureCleansUp(t *testing.T) {
	calls := 0
	store := &memStore{}
	store.put = func(_ context.Context, key string, _ []byte, _ string) (string, error) {
		calls++
		if calls == 2 {
			return "", errors.New("bucket gone")
		}
		return key, nil
	}
	svc := service.NewPictureService(&mockPictureRepo{}, store, discardLogger())

	_, err := svc.SaveAll(context.Background(), domain.Listing{PublicID: uuid.New()}, []domain.NewPicture{
		{Content: []byte("a"), ContentType: "image/png"},
		{Content: []byte("b"), ContentType: "image/png"},
	})

	require.Error(t, err)
	assert.Len(t, store.deleted, 1, "the first upload is removed again")
}
