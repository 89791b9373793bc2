package repository

import (
	"context"
	"io"

	"go-skin-inspector/pkg/models"
)

// PhotoRepository turns photo sources into analysable pixel buffers
type PhotoRepository interface {
	// FetchPhoto downloads and decodes the photo at photoURL
	FetchPhoto(ctx context.Context, photoURL string) (*Photo, error)

	// DecodePhoto decodes an uploaded photo
	DecodePhoto(r io.Reader) (*Photo, error)

	// ValidatePhotoURL checks a URL before any network access
	ValidatePhotoURL(photoURL string) error
}

// Photo is a decoded, possibly downscaled photo
type Photo struct {
	Buffer *models.PixelBuffer

	Format         string
	SourceWidth    int
	SourceHeight   int
	EncodedBytes   int
	Downscaled     bool
	FromBlobSource bool
}
