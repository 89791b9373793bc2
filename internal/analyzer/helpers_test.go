package analyzer

import (
	"math/rand/v2"

	"go-skin-inspector/pkg/models"
)

// solidBuffer fills a buffer with one opaque color
func solidBuffer(width, height int, r, g, b uint8) *models.PixelBuffer {
	buf := models.NewPixelBuffer(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			buf.Set(x, y, r, g, b, 255)
		}
	}
	return buf
}

// noisyBuffer jitters a base color by up to +/-amplitude per channel
func noisyBuffer(width, height int, r, g, b uint8, amplitude int, seed uint64) *models.PixelBuffer {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	jitter := func(v uint8) uint8 {
		n := int(v) + rng.IntN(2*amplitude+1) - amplitude
		return uint8(clampInt(n, 0, 255))
	}

	buf := models.NewPixelBuffer(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			buf.Set(x, y, jitter(r), jitter(g), jitter(b), 255)
		}
	}
	return buf
}

// paintRect fills a rectangle of an existing buffer
func paintRect(buf *models.PixelBuffer, x0, y0, x1, y1 int, r, g, b uint8) {
	for y := y0; y < y1 && y < buf.Height; y++ {
		for x := x0; x < x1 && x < buf.Width; x++ {
			buf.Set(x, y, r, g, b, 255)
		}
	}
}

func seededConfig() AnalysisConfig {
	return DefaultConfig().WithMarkerSeed(42)
}
