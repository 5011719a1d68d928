package repository

import (
	"context"
	"encoding/base64"

	"epaper-clip/internal/domain"
)

// InlineImageStore embeds clips as data: URLs. It is used when no database
// is configured; nothing is retrievable by key afterwards.
type InlineImageStore struct{}

func NewInlineImageStore() *InlineImageStore { return &InlineImageStore{} }

func (InlineImageStore) SaveClipImage(_ context.Context, img *domain.EncodedImage) (string, error) {
	return "data:" + img.ContentType() + ";base64," + base64.StdEncoding.EncodeToString(img.Data), nil
}

func (InlineImageStore) GetClipImage(context.Context, string) (*domain.StoredClipImage, error) {
	return nil, domain.ErrClipImageNotFound
}
