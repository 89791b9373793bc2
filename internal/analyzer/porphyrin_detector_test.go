package analyzer

import (
	"math"
	"testing"

	apperrors "go-skin-inspector/internal/errors"
	"go-skin-inspector/pkg/models"
)

func mildFeatures() models.PorphyrinFeatures {
	return models.PorphyrinFeatures{
		AcneCount:             2,
		AcneClusterDensity:    0.1,
		PoreDensity:           0.3,
		AveragePoreSize:       0.2,
		CongestedPoresPercent: 10,
		RedAreasScore:         20,
		InflammationSpots:     1,
	}
}

func heavyFeatures() models.PorphyrinFeatures {
	return models.PorphyrinFeatures{
		AcneCount:             25,
		AcneClusterDensity:    0.8,
		PoreDensity:           0.3,
		AveragePoreSize:       0.2,
		CongestedPoresPercent: 60,
		RedAreasScore:         20,
		InflammationSpots:     15,
	}
}

func TestPorphyrinDetector_Scenarios(t *testing.T) {
	detector := NewPorphyrinDetector(DefaultConfig())

	light, err := detector.Detect(models.PorphyrinInput{Features: mildFeatures()})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	heavy, err := detector.Detect(models.PorphyrinInput{Features: heavyFeatures()})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if light.AcneSeverity != models.AcneNone && light.AcneSeverity != models.AcneMild {
		t.Errorf("Expected none or mild, got %s (score %f)", light.AcneSeverity, light.PorphyrinScore)
	}
	if heavy.AcneSeverity != models.AcneModerate && heavy.AcneSeverity != models.AcneSevere {
		t.Errorf("Expected moderate or severe, got %s (score %f)", heavy.AcneSeverity, heavy.PorphyrinScore)
	}
	if heavy.PorphyrinScore <= light.PorphyrinScore {
		t.Errorf("Expected heavy (%f) > light (%f)", heavy.PorphyrinScore, light.PorphyrinScore)
	}
}

func TestPorphyrinDetector_Monotonic(t *testing.T) {
	detector := NewPorphyrinDetector(DefaultConfig())
	history := &models.UserHistory{Age: models.IntPtr(19), AcneHistory: models.AcneHistoryMild}

	testCases := []struct {
		name  string
		steps int
		apply func(f *models.PorphyrinFeatures, i int)
	}{
		{"cluster density", 20, func(f *models.PorphyrinFeatures, i int) { f.AcneClusterDensity = float64(i) / 20 }},
		{"congested pores", 25, func(f *models.PorphyrinFeatures, i int) { f.CongestedPoresPercent = float64(i) * 4 }},
		{"inflammation", 40, func(f *models.PorphyrinFeatures, i int) { f.InflammationSpots = i }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for _, base := range []models.PorphyrinFeatures{mildFeatures(), heavyFeatures()} {
				prev := -1.0
				for i := 0; i <= tc.steps; i++ {
					f := base
					tc.apply(&f, i)
					result, err := detector.Detect(models.PorphyrinInput{Features: f, History: history})
					if err != nil {
						t.Fatalf("Unexpected error: %v", err)
					}
					if result.PorphyrinScore < prev {
						t.Fatalf("step %d: score decreased (%f < %f)", i, result.PorphyrinScore, prev)
					}
					prev = result.PorphyrinScore
				}
			}
		})
	}
}

func TestPorphyrinDetector_Urgency(t *testing.T) {
	detector := NewPorphyrinDetector(DefaultConfig())

	severe := models.PorphyrinFeatures{CongestedPoresPercent: 100, AcneClusterDensity: 1, InflammationSpots: 20}
	moderate := models.PorphyrinFeatures{CongestedPoresPercent: 60, AcneClusterDensity: 0.8}

	testCases := []struct {
		name         string
		in           models.PorphyrinInput
		wantSeverity models.AcneSeverity
		wantUrgency  models.TreatmentUrgency
	}{
		{"severe untreated", models.PorphyrinInput{Features: severe}, models.AcneSevere, models.UrgencyUrgent},
		{"severe on treatment", models.PorphyrinInput{Features: severe, History: &models.UserHistory{OnTreatment: true}}, models.AcneSevere, models.UrgencySoon},
		{"moderate untreated", models.PorphyrinInput{Features: moderate}, models.AcneModerate, models.UrgencySoon},
		{"moderate on treatment", models.PorphyrinInput{Features: moderate, History: &models.UserHistory{OnTreatment: true}}, models.AcneModerate, models.UrgencyRoutine},
		{"mild", models.PorphyrinInput{Features: models.PorphyrinFeatures{CongestedPoresPercent: 50}}, models.AcneMild, models.UrgencyRoutine},
		{"clear skin", models.PorphyrinInput{}, models.AcneNone, models.UrgencyNone},
		{"clear skin with severe history", models.PorphyrinInput{History: &models.UserHistory{AcneHistory: models.AcneHistorySevere}}, models.AcneNone, models.UrgencyRoutine},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := detector.Detect(tc.in)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result.AcneSeverity != tc.wantSeverity {
				t.Errorf("Expected severity %s, got %s (score %f)", tc.wantSeverity, result.AcneSeverity, result.PorphyrinScore)
			}
			if result.TreatmentUrgency != tc.wantUrgency {
				t.Errorf("Expected urgency %s, got %s", tc.wantUrgency, result.TreatmentUrgency)
			}
			if len(result.Recommendations) == 0 {
				t.Error("Expected at least one recommendation")
			}
		})
	}
}

func TestPorphyrinDetector_Recommendations(t *testing.T) {
	detector := NewPorphyrinDetector(DefaultConfig())

	testCases := []struct {
		name      string
		in        models.PorphyrinInput
		wantFirst string
	}{
		{"severe", models.PorphyrinInput{Features: models.PorphyrinFeatures{CongestedPoresPercent: 100, AcneClusterDensity: 1, InflammationSpots: 20}}, recDermatologist},
		{"moderate", models.PorphyrinInput{Features: models.PorphyrinFeatures{CongestedPoresPercent: 60, AcneClusterDensity: 0.8}}, recRetinoid},
		{"mild", models.PorphyrinInput{Features: models.PorphyrinFeatures{CongestedPoresPercent: 50}}, recGentleCleansing},
		{"none", models.PorphyrinInput{}, recMaintain},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := detector.Detect(tc.in)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(result.Recommendations) == 0 || result.Recommendations[0] != tc.wantFirst {
				t.Errorf("Expected %q first, got %v", tc.wantFirst, result.Recommendations)
			}
		})
	}

	congested, _ := detector.Detect(models.PorphyrinInput{Features: models.PorphyrinFeatures{CongestedPoresPercent: 60, AcneClusterDensity: 0.8}})
	if !contains(congested.Recommendations, recExfoliant) {
		t.Errorf("Expected exfoliant advice for congested pores, got %v", congested.Recommendations)
	}
}

func TestPorphyrinDetector_Confidence(t *testing.T) {
	detector := NewPorphyrinDetector(DefaultConfig())
	history := &models.UserHistory{AcneHistory: models.AcneHistoryNone}

	testCases := []struct {
		name string
		in   models.PorphyrinInput
		want float64
	}{
		{"hint with history", models.PorphyrinInput{ImageConfidence: models.FloatPtr(0.9), History: history}, 0.9},
		{"hint without history", models.PorphyrinInput{ImageConfidence: models.FloatPtr(0.9)}, 0.9 * 0.85},
		{"default without history", models.PorphyrinInput{}, 0.7 * 0.85},
		{"out of range hint", models.PorphyrinInput{ImageConfidence: models.FloatPtr(3), History: history}, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := detector.Detect(tc.in)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if math.Abs(result.Confidence-tc.want) > 1e-9 {
				t.Errorf("Expected %f, got %f", tc.want, result.Confidence)
			}
		})
	}
}

func TestPorphyrinDetector_HistoryModifiers(t *testing.T) {
	detector := NewPorphyrinDetector(DefaultConfig())
	features := mildFeatures()

	adult, _ := detector.Detect(models.PorphyrinInput{Features: features, History: &models.UserHistory{
		Age: models.IntPtr(30), AcneHistory: models.AcneHistoryModerate, SkincareRoutine: models.SkincareExtensive,
	}})
	teen, _ := detector.Detect(models.PorphyrinInput{Features: features, History: &models.UserHistory{
		Age: models.IntPtr(16), AcneHistory: models.AcneHistoryModerate, SkincareRoutine: models.SkincareExtensive,
	}})
	if math.Abs(teen.PorphyrinScore-adult.PorphyrinScore-3) > 1e-9 {
		t.Errorf("Expected teen modifier of 3, got %f", teen.PorphyrinScore-adult.PorphyrinScore)
	}

	none, _ := detector.Detect(models.PorphyrinInput{Features: features, History: &models.UserHistory{SkincareRoutine: models.SkincareNone}})
	extensive, _ := detector.Detect(models.PorphyrinInput{Features: features, History: &models.UserHistory{SkincareRoutine: models.SkincareExtensive}})
	if none.PorphyrinScore <= extensive.PorphyrinScore {
		t.Errorf("Expected no routine to score higher: %f vs %f", none.PorphyrinScore, extensive.PorphyrinScore)
	}
}

func TestPorphyrinDetector_ClampsAndRejects(t *testing.T) {
	detector := NewPorphyrinDetector(DefaultConfig())

	result, err := detector.Detect(models.PorphyrinInput{Features: models.PorphyrinFeatures{
		AcneCount:             -5,
		AcneClusterDensity:    7,
		PoreDensity:           -1,
		AveragePoreSize:       math.NaN(),
		CongestedPoresPercent: 500,
		RedAreasScore:         -30,
		InflammationSpots:     1000,
	}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.PorphyrinScore < 0 || result.PorphyrinScore > 100 || math.IsNaN(result.PorphyrinScore) {
		t.Errorf("Expected score within [0,100], got %f", result.PorphyrinScore)
	}

	_, err = detector.Detect(models.PorphyrinInput{History: &models.UserHistory{AcneHistory: "chronic"}})
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error for unknown acne history, got %v", err)
	}
	_, err = detector.Detect(models.PorphyrinInput{History: &models.UserHistory{SkincareRoutine: "daily"}})
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error for unknown routine, got %v", err)
	}
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func TestNewPorphyrinInput_AgeOnlyProfile(t *testing.T) {
	d := NewPorphyrinDetector(DefaultConfig())
	features := mildFeatures()

	in := models.NewPorphyrinInput(&models.UserProfile{Age: models.IntPtr(17)}, features, 0.8)
	if in.History == nil || in.History.Age == nil || *in.History.Age != 17 {
		t.Fatalf("Expected age-only profile to carry history, got %+v", in.History)
	}

	withAge, err := d.Detect(in)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	without, err := d.Detect(models.NewPorphyrinInput(nil, features, 0.8))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// teen modifier plus the default routine modifier
	if diff := withAge.PorphyrinScore - without.PorphyrinScore; math.Abs(diff-4) > 1e-9 {
		t.Errorf("Expected age 17 to add 4 points, got %f", diff)
	}
	if withAge.Confidence <= without.Confidence {
		t.Errorf("Expected no missing-history penalty, got %f vs %f", withAge.Confidence, without.Confidence)
	}
}
