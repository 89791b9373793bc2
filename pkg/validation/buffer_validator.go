package validation

import (
	"fmt"

	apperrors "go-skin-inspector/internal/errors"
	"go-skin-inspector/pkg/models"
)

// ErrInvalidImageBuffer is matched with errors.Is on every buffer rejection
var ErrInvalidImageBuffer = apperrors.ErrInvalidImageBuffer

// ValidatePixelBuffer rejects buffers no analyzer can score: nil, zero-area,
// or with a sample count other than width*height*4.
func ValidatePixelBuffer(buf *models.PixelBuffer) error {
	if buf == nil {
		return apperrors.NewInvalidImageError("pixel buffer is nil", apperrors.ErrInvalidImageBuffer)
	}
	if buf.Width <= 0 || buf.Height <= 0 {
		return apperrors.NewInvalidImageError(
			fmt.Sprintf("zero-area pixel buffer (%dx%d)", buf.Width, buf.Height),
			apperrors.ErrInvalidImageBuffer,
		)
	}
	if want := buf.Width * buf.Height * 4; len(buf.Pix) != want {
		return apperrors.NewInvalidImageError(
			fmt.Sprintf("pixel buffer length %d does not match %dx%dx4 = %d", len(buf.Pix), buf.Width, buf.Height, want),
			apperrors.ErrInvalidImageBuffer,
		)
	}
	return nil
}
