package analyzer

import (
	"fmt"

	"go-skin-inspector/pkg/models"
)

// HueBand is an inclusive hue range in degrees. A band whose Min is greater
// than its Max wraps through 0 (e.g. 345..15 for red).
type HueBand struct {
	Min float64
	Max float64
}

// Contains reports whether hue h falls inside the band
func (b HueBand) Contains(h float64) bool {
	if b.Min <= b.Max {
		return h >= b.Min && h <= b.Max
	}
	return h >= b.Min || h <= b.Max
}

// ColorThresholds drive the RBX pixel classifier and bucket scoring.
// The bands were tuned by inspection, not fitted to labelled data.
type ColorThresholds struct {
	// Red (vascular) bucket
	RedHue           HueBand
	RedMinSaturation float64
	RedMinA          float64

	// Brown (pigment) bucket
	BrownHue           HueBand
	BrownMinSaturation float64
	BrownMinL          float64
	BrownMaxL          float64
	BrownMinB          float64
	BrownReferenceL    float64

	// UV-indicative bucket: pale, flat patches
	UVMinValue      float64
	UVMaxSaturation float64
	UVReferenceL    float64

	// Pixels with alpha below this are ignored
	MinAlpha uint8

	// score = min(100, coverage_fraction * scale)
	RedScoreScale   float64
	BrownScoreScale float64
	UVScoreScale    float64

	// intensity = min(100, mean_deviation * scale)
	RedIntensityScale   float64
	BrownIntensityScale float64
	UVIntensityScale    float64

	// Confidence grows with the classified fraction and with the sample count
	ConfidenceFloor      float64
	ConfidenceGain       float64
	ConfidenceHalfSample float64
}

// FeatureThresholds drive feature extraction for the UV and porphyrin predictors
type FeatureThresholds struct {
	CellSize int

	AcneMinSaturation        float64
	AcneMinA                 float64
	AcneCellFraction         float64
	InflammationCellFraction float64

	PoreContrast          float64
	PoreStdDevs           float64
	PoreCellFraction      float64
	CongestedCellFraction float64
	PoreDensityScale      float64
	PoreSizeScale         float64

	BrownSpotScale       float64
	TextureScale         float64
	WrinkleEdgeThreshold float64
	WrinkleScale         float64
}

// UVModel holds the hand-tuned weights of the UV damage heuristic.
// It is a documented heuristic and is not clinically validated.
type UVModel struct {
	YouthAge    float64
	PlateauAge  float64
	MaxAge      float64
	YouthSlope  float64
	AdultSlope  float64
	SeniorSlope float64

	SkinToneModifiers  map[models.SkinTone]float64
	ExposureModifiers  map[models.SunExposureLevel]float64
	RegionModifiers    map[models.GeographicRegion]float64
	SunscreenModifiers map[models.SunscreenUsage]float64

	// Image features blend in below the demographic signal
	ImageWeight   float64
	BrownWeight   float64
	TextureWeight float64
	WrinkleWeight float64

	SpotsBrownWeight    float64
	SpotsFallbackFactor float64

	// Annual compound growth of the damage score per exposure level
	GrowthRates map[models.SunExposureLevel]float64

	ModerateThreshold float64
	HighThreshold     float64
	SevereThreshold   float64

	BaseConfidence        float64
	FullFeatureConfidence float64
}

// PorphyrinModel holds the weights and cut-points of the porphyrin heuristic
type PorphyrinModel struct {
	CongestionWeight   float64 // per congested-pore percent
	ClusterWeight      float64 // per unit of cluster density
	RednessWeight      float64 // per redness point
	InflammationWeight float64
	InflammationCap    int
	AcneCountWeight    float64
	AcneCountCap       int
	PoreDensityWeight  float64
	PoreSizeWeight     float64

	HistoryModifiers map[models.AcneHistory]float64
	RoutineModifiers map[models.SkincareRoutine]float64
	TeenAgeMin       int
	TeenAgeMax       int
	TeenModifier     float64

	MildThreshold     float64
	ModerateThreshold float64
	SevereThreshold   float64

	DefaultImageConfidence float64
	MissingHistoryFactor   float64
}

// MarkerConfig bounds the illustrative overlay markers
type MarkerConfig struct {
	MaxUVSpots        int
	MaxPorphyrinSpots int
	MaxVeinSegments   int
	MaxAgeSpots       int

	UVSpotsPerPoint        float64
	PorphyrinSpotsPerPoint float64
	VeinsPerPoint          float64
	AgeSpotsPerPoint       float64

	// Seed fixes the marker generator; nil seeds from the clock
	Seed *int64
}

// AnalysisConfig is the single tuning structure handed to every analyzer
type AnalysisConfig struct {
	Color     ColorThresholds
	Features  FeatureThresholds
	UV        UVModel
	Porphyrin PorphyrinModel
	Markers   MarkerConfig

	// Performance options
	SampleStride      int
	MaxWorkers        int
	ParallelThreshold int // pixel count below which scans stay sequential
}

// DefaultConfig returns the default tuning
func DefaultConfig() AnalysisConfig {
	return AnalysisConfig{
		Color: ColorThresholds{
			RedHue:               HueBand{Min: 345, Max: 15},
			RedMinSaturation:     0.25,
			RedMinA:              15,
			BrownHue:             HueBand{Min: 15, Max: 50},
			BrownMinSaturation:   0.2,
			BrownMinL:            20,
			BrownMaxL:            65,
			BrownMinB:            10,
			BrownReferenceL:      70,
			UVMinValue:           0.78,
			UVMaxSaturation:      0.12,
			UVReferenceL:         80,
			MinAlpha:             1,
			RedScoreScale:        250,
			BrownScoreScale:      300,
			UVScoreScale:         400,
			RedIntensityScale:    1.25,
			BrownIntensityScale:  2.0,
			UVIntensityScale:     5.0,
			ConfidenceFloor:      0.3,
			ConfidenceGain:       4.0,
			ConfidenceHalfSample: 500,
		},
		Features: FeatureThresholds{
			CellSize:                 16,
			AcneMinSaturation:        0.35,
			AcneMinA:                 20,
			AcneCellFraction:         0.15,
			InflammationCellFraction: 0.4,
			PoreContrast:             25,
			PoreStdDevs:              1.5,
			PoreCellFraction:         0.02,
			CongestedCellFraction:    0.10,
			PoreDensityScale:         5.0,
			PoreSizeScale:            4.0,
			BrownSpotScale:           300,
			TextureScale:             2.0,
			WrinkleEdgeThreshold:     50,
			WrinkleScale:             400,
		},
		UV: UVModel{
			YouthAge:    20,
			PlateauAge:  60,
			MaxAge:      120,
			YouthSlope:  0.5,
			AdultSlope:  1.0,
			SeniorSlope: 0.25,
			SkinToneModifiers: map[models.SkinTone]float64{
				models.SkinToneVeryLight: 15,
				models.SkinToneLight:     10,
				models.SkinToneMedium:    0,
				models.SkinToneOlive:     -5,
				models.SkinToneBrown:     -10,
				models.SkinToneDark:      -15,
			},
			ExposureModifiers: map[models.SunExposureLevel]float64{
				models.SunExposureMinimal:  0,
				models.SunExposureLow:      5,
				models.SunExposureModerate: 10,
				models.SunExposureHigh:     18,
				models.SunExposureExtreme:  25,
			},
			RegionModifiers: map[models.GeographicRegion]float64{
				models.RegionTropical:    10,
				models.RegionSubtropical: 6,
				models.RegionTemperate:   0,
				models.RegionNorthern:    -4,
			},
			SunscreenModifiers: map[models.SunscreenUsage]float64{
				models.SunscreenNever:     0,
				models.SunscreenRarely:    0,
				models.SunscreenSometimes: -3,
				models.SunscreenOften:     -8,
				models.SunscreenAlways:    -12,
			},
			ImageWeight:         0.25,
			BrownWeight:         0.5,
			TextureWeight:       0.3,
			WrinkleWeight:       0.2,
			SpotsBrownWeight:    0.6,
			SpotsFallbackFactor: 0.8,
			GrowthRates: map[models.SunExposureLevel]float64{
				models.SunExposureMinimal:  0.01,
				models.SunExposureLow:      0.015,
				models.SunExposureModerate: 0.02,
				models.SunExposureHigh:     0.03,
				models.SunExposureExtreme:  0.04,
			},
			ModerateThreshold:     30,
			HighThreshold:         60,
			SevereThreshold:       85,
			BaseConfidence:        0.6,
			FullFeatureConfidence: 0.72,
		},
		Porphyrin: PorphyrinModel{
			CongestionWeight:   0.35,
			ClusterWeight:      30,
			RednessWeight:      0.10,
			InflammationWeight: 10,
			InflammationCap:    20,
			AcneCountWeight:    5,
			AcneCountCap:       50,
			PoreDensityWeight:  5,
			PoreSizeWeight:     5,
			HistoryModifiers: map[models.AcneHistory]float64{
				models.AcneHistoryNone:     0,
				models.AcneHistoryMild:     2,
				models.AcneHistoryModerate: 4,
				models.AcneHistorySevere:   6,
			},
			RoutineModifiers: map[models.SkincareRoutine]float64{
				models.SkincareNone:      3,
				models.SkincareBasic:     1,
				models.SkincareModerate:  0,
				models.SkincareExtensive: 0,
			},
			TeenAgeMin:             13,
			TeenAgeMax:             24,
			TeenModifier:           3,
			MildThreshold:          15,
			ModerateThreshold:      35,
			SevereThreshold:        65,
			DefaultImageConfidence: 0.7,
			MissingHistoryFactor:   0.85,
		},
		Markers: MarkerConfig{
			MaxUVSpots:             100,
			MaxPorphyrinSpots:      50,
			MaxVeinSegments:        30,
			MaxAgeSpots:            40,
			UVSpotsPerPoint:        1.0,
			PorphyrinSpotsPerPoint: 0.5,
			VeinsPerPoint:          0.3,
			AgeSpotsPerPoint:       0.4,
		},
		SampleStride:      2,
		MaxWorkers:        0, // Use default CPU count
		ParallelThreshold: 65536,
	}
}

// FastConfig returns a configuration for quick previews
func FastConfig() AnalysisConfig {
	cfg := DefaultConfig()
	cfg.SampleStride = 4
	cfg.Features.CellSize = 24
	return cfg
}

// WithSampleStride sets the pixel sampling stride
func (cfg AnalysisConfig) WithSampleStride(stride int) AnalysisConfig {
	cfg.SampleStride = stride
	return cfg
}

// WithMaxWorkers sets the number of scan workers (0 = NumCPU)
func (cfg AnalysisConfig) WithMaxWorkers(workers int) AnalysisConfig {
	cfg.MaxWorkers = workers
	return cfg
}

// WithMarkerSeed makes marker synthesis reproducible
func (cfg AnalysisConfig) WithMarkerSeed(seed int64) AnalysisConfig {
	cfg.Markers.Seed = &seed
	return cfg
}

// WithParallelThreshold sets the pixel count above which scans are split across workers
func (cfg AnalysisConfig) WithParallelThreshold(pixels int) AnalysisConfig {
	cfg.ParallelThreshold = pixels
	return cfg
}

// Validate checks the configuration for values no analyzer can work with
func (cfg AnalysisConfig) Validate() error {
	if cfg.SampleStride < 1 {
		return fmt.Errorf("sample stride must be >= 1 (got %d)", cfg.SampleStride)
	}
	if cfg.MaxWorkers < 0 {
		return fmt.Errorf("max workers must be >= 0 (got %d)", cfg.MaxWorkers)
	}
	if cfg.Features.CellSize < 1 {
		return fmt.Errorf("cell size must be >= 1 (got %d)", cfg.Features.CellSize)
	}
	if cfg.Color.ConfidenceHalfSample <= 0 {
		return fmt.Errorf("confidence half sample must be > 0 (got %f)", cfg.Color.ConfidenceHalfSample)
	}
	if cfg.UV.ImageWeight < 0 || cfg.UV.ImageWeight > 1 {
		return fmt.Errorf("uv image weight must be within [0,1] (got %f)", cfg.UV.ImageWeight)
	}
	if !(cfg.UV.ModerateThreshold < cfg.UV.HighThreshold && cfg.UV.HighThreshold < cfg.UV.SevereThreshold) {
		return fmt.Errorf("uv risk thresholds must be increasing (got %.1f, %.1f, %.1f)",
			cfg.UV.ModerateThreshold, cfg.UV.HighThreshold, cfg.UV.SevereThreshold)
	}
	if !(cfg.UV.YouthAge <= cfg.UV.PlateauAge && cfg.UV.PlateauAge <= cfg.UV.MaxAge) {
		return fmt.Errorf("uv age breakpoints must be increasing (got %.0f, %.0f, %.0f)",
			cfg.UV.YouthAge, cfg.UV.PlateauAge, cfg.UV.MaxAge)
	}
	if cfg.UV.YouthSlope < 0 || cfg.UV.AdultSlope < 0 || cfg.UV.SeniorSlope < 0 {
		return fmt.Errorf("uv age slopes must be non-negative")
	}
	p := cfg.Porphyrin
	if !(p.MildThreshold < p.ModerateThreshold && p.ModerateThreshold < p.SevereThreshold) {
		return fmt.Errorf("porphyrin severity thresholds must be increasing (got %.1f, %.1f, %.1f)",
			p.MildThreshold, p.ModerateThreshold, p.SevereThreshold)
	}
	for name, w := range map[string]float64{
		"congestion":   p.CongestionWeight,
		"cluster":      p.ClusterWeight,
		"redness":      p.RednessWeight,
		"inflammation": p.InflammationWeight,
		"acne count":   p.AcneCountWeight,
		"pore density": p.PoreDensityWeight,
		"pore size":    p.PoreSizeWeight,
	} {
		if w < 0 {
			return fmt.Errorf("porphyrin %s weight must be non-negative (got %f)", name, w)
		}
	}
	return nil
}
