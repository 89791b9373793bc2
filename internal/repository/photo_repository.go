package repository

import (
	"context"
	"errors"
	"io"
	"strings"

	apperrors "go-skin-inspector/internal/errors"
	"go-skin-inspector/internal/logger"
	"go-skin-inspector/internal/storage"
	"go-skin-inspector/pkg/validation"

	"github.com/sirupsen/logrus"
)

// photoRepository implements PhotoRepository over HTTP and, when configured,
// one Azure storage account
type photoRepository struct {
	httpFetcher  storage.PhotoFetcher
	blobFetcher  storage.BlobFetcher
	urlValidator *validation.URLValidator
	maxDimension int
	maxBytes     int64
}

// NewPhotoRepository creates a repository. blobFetcher may be nil, in which
// case blob URLs are fetched over plain HTTP.
func NewPhotoRepository(httpFetcher storage.PhotoFetcher, blobFetcher storage.BlobFetcher, maxDimension int, maxBytes int64) PhotoRepository {
	return &photoRepository{
		httpFetcher:  httpFetcher,
		blobFetcher:  blobFetcher,
		urlValidator: validation.NewURLValidator(),
		maxDimension: maxDimension,
		maxBytes:     maxBytes,
	}
}

func (r *photoRepository) ValidatePhotoURL(photoURL string) error {
	return r.urlValidator.ValidatePhotoURL(photoURL)
}

func (r *photoRepository) FetchPhoto(ctx context.Context, photoURL string) (*Photo, error) {
	photoURL = strings.TrimSpace(photoURL)
	if err := r.ValidatePhotoURL(photoURL); err != nil {
		return nil, err
	}

	fetcher, fromBlob := r.sourceFor(photoURL)
	data, err := fetcher.FetchPhoto(ctx, photoURL)
	if err != nil {
		return nil, classifyFetchError(ctx, err)
	}

	photo, err := decodePhoto(data, r.maxDimension)
	if err != nil {
		return nil, err
	}
	photo.FromBlobSource = fromBlob

	logger.WithFields(logrus.Fields{
		"format":     photo.Format,
		"bytes":      photo.EncodedBytes,
		"width":      photo.Buffer.Width,
		"height":     photo.Buffer.Height,
		"downscaled": photo.Downscaled,
		"blob":       fromBlob,
	}).Debug("Photo decoded")

	return photo, nil
}

func (r *photoRepository) DecodePhoto(reader io.Reader) (*Photo, error) {
	data, err := io.ReadAll(io.LimitReader(reader, r.maxBytes+1))
	if err != nil {
		return nil, apperrors.NewValidationError("failed to read upload", err)
	}
	if int64(len(data)) > r.maxBytes {
		return nil, apperrors.NewValidationError("photo exceeds size limit", storage.ErrPhotoTooLarge)
	}
	return decodePhoto(data, r.maxDimension)
}

// sourceFor routes URLs of the configured storage account through the SDK
func (r *photoRepository) sourceFor(photoURL string) (storage.PhotoFetcher, bool) {
	if r.blobFetcher == nil || !validation.IsBlobStorageURL(photoURL) {
		return r.httpFetcher, false
	}
	loc, err := storage.ParseBlobURL(photoURL)
	if err != nil || loc.Account != r.blobFetcher.Account() {
		return r.httpFetcher, false
	}
	return r.blobFetcher, true
}

func classifyFetchError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, storage.ErrPhotoNotFound):
		return apperrors.NewNotFoundError("photo not found", err)
	case errors.Is(err, storage.ErrPhotoTooLarge):
		return apperrors.NewValidationError("photo exceeds size limit", err)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperrors.NewTimeoutError("photo fetch timed out", err)
	default:
		return apperrors.NewNetworkError("failed to fetch photo", err)
	}
}
