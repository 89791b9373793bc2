package models

import "time"

// Marker is an illustrative spot location for overlays. It is not a detected
// lesion position.
type Marker struct {
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Radius float64 `json:"radius"`
}

// VeinSegment is an illustrative line segment for the vascular overlay
type VeinSegment struct {
	X1    int     `json:"x1"`
	Y1    int     `json:"y1"`
	X2    int     `json:"x2"`
	Y2    int     `json:"y2"`
	Width float64 `json:"width"`
}

// RedComponent is the VISIA-scaled vascular component
type RedComponent struct {
	Score      float64       `json:"score"` // 0-10
	Coverage   float64       `json:"coverage"`
	Intensity  float64       `json:"intensity"`
	Confidence float64       `json:"confidence"`
	Veins      []VeinSegment `json:"veins"`
}

// BrownComponent is the VISIA-scaled pigmentation component
type BrownComponent struct {
	Score      float64  `json:"score"` // 0-10
	Coverage   float64  `json:"coverage"`
	Intensity  float64  `json:"intensity"`
	Confidence float64  `json:"confidence"`
	AgeSpots   []Marker `json:"age_spots"`
}

// UVComponent is the VISIA-scaled UV damage component
type UVComponent struct {
	Score       float64    `json:"score"` // 0-10
	DamageScore float64    `json:"damage_score"`
	RiskLevel   RiskLevel  `json:"risk_level"`
	FutureRisk  FutureRisk `json:"future_risk"`
	Confidence  float64    `json:"confidence"`
	Spots       []Marker   `json:"spots"`
}

// PorphyrinComponent is the VISIA-scaled bacterial/acne component
type PorphyrinComponent struct {
	Score            float64          `json:"score"` // 0-10
	AcneSeverity     AcneSeverity     `json:"acne_severity"`
	TreatmentUrgency TreatmentUrgency `json:"treatment_urgency"`
	Recommendations  []string         `json:"recommendations"`
	Confidence       float64          `json:"confidence"`
	Spots            []Marker         `json:"spots"`
}

// RawScores keeps each analyzer's 0-100 output
type RawScores struct {
	RBX       RBXResult          `json:"rbx"`
	UV        UVPredictionResult `json:"uv"`
	Porphyrin PorphyrinResult    `json:"porphyrin"`
}

// ExtractedFeatures records the features handed to the predictors
type ExtractedFeatures struct {
	UV        UVImageFeatures   `json:"uv"`
	Porphyrin PorphyrinFeatures `json:"porphyrin"`
}

// SkinReport is the unified, UI-consumable analysis report.
// It is built once per request and never mutated afterwards.
type SkinReport struct {
	ID                string    `json:"id"`
	Timestamp         time.Time `json:"timestamp"`
	ProcessingTimeSec float64   `json:"processing_time_sec"`
	Width             int       `json:"width"`
	Height            int       `json:"height"`

	// Mean of the four 0-10 components
	OverallScore float64 `json:"overall_score"`

	Red        RedComponent       `json:"red"`
	Brown      BrownComponent     `json:"brown"`
	UV         UVComponent        `json:"uv"`
	Porphyrins PorphyrinComponent `json:"porphyrins"`

	Raw      RawScores         `json:"raw"`
	Features ExtractedFeatures `json:"features"`

	// Photo quality warnings; scores are still produced
	Warnings []string `json:"warnings,omitempty"`
}
