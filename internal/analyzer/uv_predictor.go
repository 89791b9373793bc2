package analyzer

import (
	"fmt"
	"math"

	apperrors "go-skin-inspector/internal/errors"
	"go-skin-inspector/internal/logger"
	"go-skin-inspector/pkg/models"
	"go-skin-inspector/pkg/validation"

	"github.com/sirupsen/logrus"
)

const uvComponent = "uv_predictor"

// uvPredictor implements UVPredictor with a weighted additive model.
// Demographics dominate; image features blend in at UVModel.ImageWeight.
type uvPredictor struct {
	model UVModel
}

// NewUVPredictor creates a UV damage predictor
func NewUVPredictor(cfg AnalysisConfig) UVPredictor {
	return &uvPredictor{model: cfg.UV}
}

// Predict scores UV damage. Absent profile fields take the package defaults;
// unknown enum values are rejected.
func (p *uvPredictor) Predict(in models.UVInput) (models.UVPredictionResult, error) {
	m := p.model

	tone := in.SkinTone
	if tone == "" {
		tone = models.DefaultSkinTone
	}
	toneMod, ok := m.SkinToneModifiers[tone]
	if !ok {
		return models.UVPredictionResult{}, unknownValue("skin_tone", string(tone))
	}

	exposure := in.SunExposureLevel
	if exposure == "" {
		exposure = models.DefaultSunExposure
	}
	exposureMod, ok := m.ExposureModifiers[exposure]
	if !ok {
		return models.UVPredictionResult{}, unknownValue("sun_exposure_level", string(exposure))
	}

	region := in.GeographicRegion
	if region == "" {
		region = models.DefaultRegion
	}
	regionMod, ok := m.RegionModifiers[region]
	if !ok {
		return models.UVPredictionResult{}, unknownValue("geographic_region", string(region))
	}

	sunscreen := in.SunscreenUsage
	if sunscreen == "" {
		sunscreen = models.DefaultSunscreenUsage
	}
	sunscreenMod, ok := m.SunscreenModifiers[sunscreen]
	if !ok {
		return models.UVPredictionResult{}, unknownValue("sunscreen_usage", string(sunscreen))
	}

	age := float64(models.DefaultAge)
	if in.Age != nil {
		age = validation.ClampInput(uvComponent, "age", float64(*in.Age), 0, m.MaxAge)
	}

	demographic := validation.ClampPercent(p.ageBase(age) + toneMod + exposureMod + regionMod + sunscreenMod)

	score := demographic
	brown, imageScore, hasImage := p.imageScore(in.Features)
	if hasImage {
		score = (1-m.ImageWeight)*demographic + m.ImageWeight*imageScore
	}
	damage := validation.ClampPercent(score)

	var spots float64
	if brown != nil {
		spots = m.SpotsBrownWeight*(*brown) + (1-m.SpotsBrownWeight)*damage
	} else {
		spots = m.SpotsFallbackFactor * damage
	}

	growth := m.GrowthRates[exposure]
	result := models.UVPredictionResult{
		UVDamageScore: damage,
		UVSpotsScore:  validation.ClampPercent(spots),
		Confidence:    m.BaseConfidence,
		RiskLevel:     p.riskLevel(damage),
		FutureRisk: models.FutureRisk{
			In5Years:  validation.ClampPercent(damage * math.Pow(1+growth, 5)),
			In10Years: validation.ClampPercent(damage * math.Pow(1+growth, 10)),
		},
	}
	if in.Features.Count() == 3 {
		result.Confidence = m.FullFeatureConfidence
	}

	logger.WithFields(logrus.Fields{
		"component":   uvComponent,
		"age":         age,
		"skin_tone":   tone,
		"exposure":    exposure,
		"demographic": demographic,
		"damage":      damage,
		"risk_level":  result.RiskLevel,
	}).Debug("UV prediction finished")

	return result, nil
}

// ageBase is piecewise linear: a gentle youth slope, a steady adult slope,
// then a flatter slope past the plateau age.
func (p *uvPredictor) ageBase(age float64) float64 {
	m := p.model
	youth := m.YouthAge * m.YouthSlope
	switch {
	case age <= m.YouthAge:
		return age * m.YouthSlope
	case age <= m.PlateauAge:
		return youth + (age-m.YouthAge)*m.AdultSlope
	default:
		return youth + (m.PlateauAge-m.YouthAge)*m.AdultSlope + (age-m.PlateauAge)*m.SeniorSlope
	}
}

// imageScore averages the present features with renormalised weights.
// The clamped brown-spot value is returned separately for the spots score.
func (p *uvPredictor) imageScore(f models.UVImageFeatures) (*float64, float64, bool) {
	m := p.model
	type weighted struct {
		name   string
		value  *float64
		weight float64
	}
	features := []weighted{
		{"existing_brown_spots", f.ExistingBrownSpots, m.BrownWeight},
		{"skin_texture_score", f.SkinTextureScore, m.TextureWeight},
		{"wrinkle_score", f.WrinkleScore, m.WrinkleWeight},
	}

	var brown *float64
	var sum, weights float64
	for _, feature := range features {
		if feature.value == nil {
			continue
		}
		v := validation.ClampInput(uvComponent, feature.name, *feature.value, 0, 100)
		if feature.name == "existing_brown_spots" {
			brown = &v
		}
		sum += v * feature.weight
		weights += feature.weight
	}
	if weights == 0 {
		return brown, 0, false
	}
	return brown, sum / weights, true
}

func (p *uvPredictor) riskLevel(score float64) models.RiskLevel {
	switch {
	case score >= p.model.SevereThreshold:
		return models.RiskSevere
	case score >= p.model.HighThreshold:
		return models.RiskHigh
	case score >= p.model.ModerateThreshold:
		return models.RiskModerate
	default:
		return models.RiskLow
	}
}

func unknownValue(field, value string) error {
	return apperrors.NewValidationError(fmt.Sprintf("unknown %s %q", field, value), nil)
}
