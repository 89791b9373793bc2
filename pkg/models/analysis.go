package models

// PixelBuffer is a decoded RGBA image, row-major with the origin at the top-left.
// Pix holds Width*Height*4 bytes; analyzers only read it.
type PixelBuffer struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Pix    []uint8 `json:"-"`
}

// NewPixelBuffer allocates a zeroed (fully transparent) buffer
func NewPixelBuffer(width, height int) *PixelBuffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

// Area returns the number of pixels
func (b *PixelBuffer) Area() int {
	return b.Width * b.Height
}

// Offset returns the index of the R sample of pixel (x, y)
func (b *PixelBuffer) Offset(x, y int) int {
	return (y*b.Width + x) * 4
}

// At returns the RGBA samples of pixel (x, y)
func (b *PixelBuffer) At(x, y int) (r, g, bl, a uint8) {
	i := b.Offset(x, y)
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]
}

// Set writes the RGBA samples of pixel (x, y)
func (b *PixelBuffer) Set(x, y int, r, g, bl, a uint8) {
	i := b.Offset(x, y)
	b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3] = r, g, bl, a
}

// ColorBucketResult summarises one RBX color bucket
type ColorBucketResult struct {
	Coverage   float64 `json:"coverage"`   // percent of sampled pixels in the bucket
	Intensity  float64 `json:"intensity"`  // 0-100, mean deviation from the neutral reference
	Score      float64 `json:"score"`      // 0-100
	Confidence float64 `json:"confidence"` // 0-1
	PixelCount int     `json:"pixel_count"`
}

// RBXResult is the output of the red/brown/UV color separation
type RBXResult struct {
	RedAreas      ColorBucketResult `json:"red_areas"`
	BrownSpots    ColorBucketResult `json:"brown_spots"`
	UVSpots       ColorBucketResult `json:"uv_spots"`
	Confidence    float64           `json:"confidence"`
	SampledPixels int               `json:"sampled_pixels"`
}

// UVImageFeatures are the image-derived inputs of the UV damage predictor.
// A nil field means the feature was not measured.
type UVImageFeatures struct {
	ExistingBrownSpots *float64 `json:"existing_brown_spots,omitempty"` // 0-100
	SkinTextureScore   *float64 `json:"skin_texture_score,omitempty"`   // 0-100
	WrinkleScore       *float64 `json:"wrinkle_score,omitempty"`        // 0-100
}

// Count returns how many features are present
func (f UVImageFeatures) Count() int {
	n := 0
	for _, v := range []*float64{f.ExistingBrownSpots, f.SkinTextureScore, f.WrinkleScore} {
		if v != nil {
			n++
		}
	}
	return n
}

// UVInput combines demographics with optional image features
type UVInput struct {
	Age              *int             `json:"age,omitempty"`
	SkinTone         SkinTone         `json:"skin_tone,omitempty"`
	SunExposureLevel SunExposureLevel `json:"sun_exposure_level,omitempty"`
	GeographicRegion GeographicRegion `json:"geographic_region,omitempty"`
	SunscreenUsage   SunscreenUsage   `json:"sunscreen_usage,omitempty"`
	Features         UVImageFeatures  `json:"features"`
}

// NewUVInput builds predictor input from an optional profile
func NewUVInput(profile *UserProfile, features UVImageFeatures) UVInput {
	in := UVInput{Features: features}
	if profile != nil {
		in.Age = profile.Age
		in.SkinTone = profile.SkinTone
		in.SunExposureLevel = profile.SunExposureLevel
		in.GeographicRegion = profile.GeographicRegion
		in.SunscreenUsage = profile.SunscreenUsage
	}
	return in
}

// RiskLevel buckets the UV damage score
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskSevere   RiskLevel = "severe"
)

// FutureRisk projects the UV damage score forward
type FutureRisk struct {
	In5Years  float64 `json:"in_5_years"`
	In10Years float64 `json:"in_10_years"`
}

// UVPredictionResult is the output of the UV damage predictor
type UVPredictionResult struct {
	UVDamageScore float64    `json:"uv_damage_score"`
	UVSpotsScore  float64    `json:"uv_spots_score"`
	Confidence    float64    `json:"confidence"`
	RiskLevel     RiskLevel  `json:"risk_level"`
	FutureRisk    FutureRisk `json:"future_risk"`
}

// PorphyrinFeatures are the acne and pore features extracted from the image
type PorphyrinFeatures struct {
	AcneCount             int     `json:"acne_count"`
	AcneClusterDensity    float64 `json:"acne_cluster_density"`    // 0-1
	PoreDensity           float64 `json:"pore_density"`            // 0-1
	AveragePoreSize       float64 `json:"average_pore_size"`       // 0-1
	CongestedPoresPercent float64 `json:"congested_pores_percent"` // 0-100
	RedAreasScore         float64 `json:"red_areas_score"`         // 0-100
	InflammationSpots     int     `json:"inflammation_spots"`
}

// UserHistory is the acne-related part of a profile
type UserHistory struct {
	Age             *int            `json:"age,omitempty"`
	AcneHistory     AcneHistory     `json:"acne_history,omitempty"`
	OnTreatment     bool            `json:"on_treatment"`
	SkincareRoutine SkincareRoutine `json:"skincare_routine,omitempty"`
}

// PorphyrinInput is the input of the porphyrin detector
type PorphyrinInput struct {
	Features        PorphyrinFeatures `json:"features"`
	History         *UserHistory      `json:"history,omitempty"`
	ImageConfidence *float64          `json:"image_confidence,omitempty"` // 0-1 hint from feature extraction
}

// NewPorphyrinInput builds detector input; history is nil unless the profile carries age or acne fields
func NewPorphyrinInput(profile *UserProfile, features PorphyrinFeatures, imageConfidence float64) PorphyrinInput {
	in := PorphyrinInput{Features: features, ImageConfidence: &imageConfidence}
	if profile.HasAcneHistory() {
		in.History = &UserHistory{
			Age:             profile.Age,
			AcneHistory:     profile.AcneHistory,
			OnTreatment:     profile.OnTreatment,
			SkincareRoutine: profile.SkincareRoutine,
		}
	}
	return in
}

// AcneSeverity buckets the porphyrin score
type AcneSeverity string

const (
	AcneNone     AcneSeverity = "none"
	AcneMild     AcneSeverity = "mild"
	AcneModerate AcneSeverity = "moderate"
	AcneSevere   AcneSeverity = "severe"
)

// TreatmentUrgency tells how soon the user should act
type TreatmentUrgency string

const (
	UrgencyNone    TreatmentUrgency = "none"
	UrgencyRoutine TreatmentUrgency = "routine"
	UrgencySoon    TreatmentUrgency = "soon"
	UrgencyUrgent  TreatmentUrgency = "urgent"
)

// PorphyrinResult is the output of the porphyrin detector
type PorphyrinResult struct {
	PorphyrinScore   float64          `json:"porphyrin_score"`
	AcneSeverity     AcneSeverity     `json:"acne_severity"`
	TreatmentUrgency TreatmentUrgency `json:"treatment_urgency"`
	Confidence       float64          `json:"confidence"`
	Recommendations  []string         `json:"recommendations"`
}
