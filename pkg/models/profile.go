package models

// SkinTone is the self-reported skin tone, ordered from lightest to darkest
type SkinTone string

const (
	SkinToneVeryLight SkinTone = "very-light"
	SkinToneLight     SkinTone = "light"
	SkinToneMedium    SkinTone = "medium"
	SkinToneOlive     SkinTone = "olive"
	SkinToneBrown     SkinTone = "brown"
	SkinToneDark      SkinTone = "dark"
)

// SunExposureLevel is the habitual sun exposure, ordered from minimal to extreme
type SunExposureLevel string

const (
	SunExposureMinimal  SunExposureLevel = "minimal"
	SunExposureLow      SunExposureLevel = "low"
	SunExposureModerate SunExposureLevel = "moderate"
	SunExposureHigh     SunExposureLevel = "high"
	SunExposureExtreme  SunExposureLevel = "extreme"
)

// SunExposureLevels lists every exposure level in ascending rank
var SunExposureLevels = []SunExposureLevel{
	SunExposureMinimal,
	SunExposureLow,
	SunExposureModerate,
	SunExposureHigh,
	SunExposureExtreme,
}

// Rank returns the ordinal position of the level, or -1 when unknown
func (l SunExposureLevel) Rank() int {
	for i, level := range SunExposureLevels {
		if level == l {
			return i
		}
	}
	return -1
}

// GeographicRegion is the climate band the user lives in
type GeographicRegion string

const (
	RegionTropical    GeographicRegion = "tropical"
	RegionSubtropical GeographicRegion = "subtropical"
	RegionTemperate   GeographicRegion = "temperate"
	RegionNorthern    GeographicRegion = "northern"
)

// SunscreenUsage is how often sunscreen is applied
type SunscreenUsage string

const (
	SunscreenNever     SunscreenUsage = "never"
	SunscreenRarely    SunscreenUsage = "rarely"
	SunscreenSometimes SunscreenUsage = "sometimes"
	SunscreenOften     SunscreenUsage = "often"
	SunscreenAlways    SunscreenUsage = "always"
)

// AcneHistory is the self-reported history of breakouts
type AcneHistory string

const (
	AcneHistoryNone     AcneHistory = "none"
	AcneHistoryMild     AcneHistory = "mild"
	AcneHistoryModerate AcneHistory = "moderate"
	AcneHistorySevere   AcneHistory = "severe"
)

// SkincareRoutine describes the daily skincare effort
type SkincareRoutine string

const (
	SkincareNone      SkincareRoutine = "none"
	SkincareBasic     SkincareRoutine = "basic"
	SkincareModerate  SkincareRoutine = "moderate"
	SkincareExtensive SkincareRoutine = "extensive"
)

// Profile defaults applied when a field is absent
const (
	DefaultAge             = 30
	DefaultSkinTone        = SkinToneMedium
	DefaultSunExposure     = SunExposureModerate
	DefaultRegion          = RegionSubtropical
	DefaultSunscreenUsage  = SunscreenSometimes
	DefaultAcneHistory     = AcneHistoryNone
	DefaultSkincareRoutine = SkincareBasic
)

// UserProfile carries the optional demographic attributes supplied with a photo.
// Every field may be omitted; analyzers fall back to the package defaults.
type UserProfile struct {
	Age              *int             `json:"age,omitempty"` // out-of-range ages are clamped by the predictors
	SkinTone         SkinTone         `json:"skin_tone,omitempty" validate:"omitempty,oneof=very-light light medium olive brown dark"`
	SunExposureLevel SunExposureLevel `json:"sun_exposure_level,omitempty" validate:"omitempty,oneof=minimal low moderate high extreme"`
	GeographicRegion GeographicRegion `json:"geographic_region,omitempty" validate:"omitempty,oneof=tropical subtropical temperate northern"`
	SunscreenUsage   SunscreenUsage   `json:"sunscreen_usage,omitempty" validate:"omitempty,oneof=never rarely sometimes often always"`
	AcneHistory      AcneHistory      `json:"acne_history,omitempty" validate:"omitempty,oneof=none mild moderate severe"`
	OnTreatment      bool             `json:"on_treatment,omitempty"`
	SkincareRoutine  SkincareRoutine  `json:"skincare_routine,omitempty" validate:"omitempty,oneof=none basic moderate extensive"`
}

// HasAcneHistory reports whether any of the history fields (age included) were supplied
func (p *UserProfile) HasAcneHistory() bool {
	if p == nil {
		return false
	}
	return p.Age != nil || p.AcneHistory != "" || p.SkincareRoutine != "" || p.OnTreatment
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}

// FloatPtr returns a pointer to v
func FloatPtr(v float64) *float64 {
	return &v
}
