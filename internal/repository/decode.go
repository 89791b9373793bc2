package repository

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	apperrors "go-skin-inspector/internal/errors"
	"go-skin-inspector/pkg/models"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// maxSourcePixels bounds the full-resolution decode before downscaling
const maxSourcePixels = 64 * 1024 * 1024

// decodePhoto decodes png, jpeg, gif or webp bytes into a pixel buffer whose
// longer side is at most maxDimension
func decodePhoto(data []byte, maxDimension int) (*Photo, error) {
	if len(data) == 0 {
		return nil, apperrors.NewInvalidImageError("photo is empty", ErrUnsupportedFormat)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewInvalidImageError("unsupported or corrupt image", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, apperrors.NewInvalidImageError("image has zero area", apperrors.ErrInvalidImageBuffer)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxSourcePixels {
		return nil, apperrors.NewInvalidImageError(
			fmt.Sprintf("image is %dx%d", cfg.Width, cfg.Height), ErrImageTooLarge)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewInvalidImageError("failed to decode image", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err))
	}

	buf, downscaled := ToPixelBuffer(img, maxDimension)
	return &Photo{
		Buffer:       buf,
		Format:       format,
		SourceWidth:  img.Bounds().Dx(),
		SourceHeight: img.Bounds().Dy(),
		EncodedBytes: len(data),
		Downscaled:   downscaled,
	}, nil
}

// ToPixelBuffer converts img to straight-alpha RGBA, downscaling with
// bilinear sampling when its longer side exceeds maxDimension
func ToPixelBuffer(img image.Image, maxDimension int) (*models.PixelBuffer, bool) {
	bounds := img.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), maxDimension)
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))

	scaled := width != bounds.Dx() || height != bounds.Dy()
	if scaled {
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	} else {
		draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	}

	return &models.PixelBuffer{
		Width:  width,
		Height: height,
		Pix:    dst.Pix,
	}, scaled
}

// fitWithin keeps the aspect ratio; maxDimension <= 0 disables scaling
func fitWithin(width, height, maxDimension int) (int, int) {
	longer := max(width, height)
	if maxDimension <= 0 || longer <= maxDimension {
		return width, height
	}
	scale := float64(maxDimension) / float64(longer)
	w := max(1, int(math.Round(float64(width)*scale)))
	h := max(1, int(math.Round(float64(height)*scale)))
	return w, h
}
