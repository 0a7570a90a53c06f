// Package service manages the farm photo gallery.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"farmshop/internal/gallery/models"
	"farmshop/internal/platform/objectstore"
	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
	"farmshop/pkg/platform/sentinel"
	"farmshop/pkg/requestcontext"
)

type Store interface {
	List(ctx context.Context) ([]*models.Image, error)
	Find(ctx context.Context, imageID id.ImageID) (*models.Image, error)
	Create(ctx context.Context, img *models.Image) error
	Update(ctx context.Context, img *models.Image) error
	Delete(ctx context.Context, imageID id.ImageID) error
	Count(ctx context.Context) (int, error)
}

type Service struct {
	store   Store
	objects objectstore.Store
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(store Store, objects objectstore.Store, opts ...Option) *Service {
	s := &Service{store: store, objects: objects, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]*models.Image, error) {
	images, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list gallery")
	}
	return images, nil
}

// Upload stores the file under gallery/<uuid><ext> and appends it at the
// end of the gallery.
func (s *Service) Upload(ctx context.Context, in models.Upload, r io.Reader) (*models.Image, error) {
	if !strings.HasPrefix(in.ContentType, "image/") {
		return nil, dErrors.New(dErrors.CodeBadRequest, "file must be an image")
	}
	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count gallery images")
	}

	key := objectstore.NewKey("gallery", in.Filename)
	url, err := s.objects.Put(ctx, objectstore.BucketGalleryImages, key, in.ContentType, r, in.Size)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to upload image")
	}

	img := &models.Image{
		ID:          id.NewImageID(),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		ImageURL:    url,
		Position:    count + 1,
		CreatedAt:   requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, img); err != nil {
		s.removeObject(ctx, key)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save gallery image")
	}
	return img, nil
}

func (s *Service) Update(ctx context.Context, imageID id.ImageID, in models.Update) (*models.Image, error) {
	if in.Position != nil && *in.Position < 1 {
		return nil, dErrors.New(dErrors.CodeValidation, "position must be at least 1")
	}
	img, err := s.store.Find(ctx, imageID)
	if err != nil {
		return nil, wrapImageErr(err)
	}
	img.Title = strings.TrimSpace(in.Title)
	img.Description = strings.TrimSpace(in.Description)
	if in.Position != nil {
		img.Position = *in.Position
	}
	if err := s.store.Update(ctx, img); err != nil {
		return nil, wrapImageErr(err)
	}
	return img, nil
}

// Delete removes the row, then the stored file best-effort.
func (s *Service) Delete(ctx context.Context, imageID id.ImageID) error {
	img, err := s.store.Find(ctx, imageID)
	if err != nil {
		return wrapImageErr(err)
	}
	if err := s.store.Delete(ctx, imageID); err != nil {
		return wrapImageErr(err)
	}
	if key := objectstore.KeyFromURL(img.ImageURL, objectstore.BucketGalleryImages); key != "" {
		s.removeObject(ctx, key)
	}
	return nil
}

func (s *Service) removeObject(ctx context.Context, key string) {
	if err := s.objects.Delete(ctx, objectstore.BucketGalleryImages, key); err != nil {
		s.logger.WarnContext(ctx, "failed to delete gallery object",
			"key", key,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

func wrapImageErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "image not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "gallery store failed")
}
