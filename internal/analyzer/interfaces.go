package analyzer

import (
	"context"

	"go-skin-inspector/pkg/models"
)

// SkinAnalyzer is the aggregator facade: one call produces the full report
type SkinAnalyzer interface {
	Analyze(ctx context.Context, buf *models.PixelBuffer, profile *models.UserProfile) (*models.SkinReport, error)

	// Lifecycle management
	Close() error
}

// ColorSeparator classifies pixels into red, brown and UV-indicative buckets
type ColorSeparator interface {
	Separate(buf *models.PixelBuffer) (models.RBXResult, error)
}

// UVPredictor scores UV damage from demographics and image features
type UVPredictor interface {
	Predict(in models.UVInput) (models.UVPredictionResult, error)
}

// PorphyrinDetector scores the bacterial/acne signal
type PorphyrinDetector interface {
	Detect(in models.PorphyrinInput) (models.PorphyrinResult, error)
}

// FeatureExtractor derives the predictor inputs from raw pixels
type FeatureExtractor interface {
	UVFeatures(buf *models.PixelBuffer) models.UVImageFeatures
	PorphyrinFeatures(buf *models.PixelBuffer) (models.PorphyrinFeatures, float64)
	PhotoStats(buf *models.PixelBuffer) PhotoStats
}
