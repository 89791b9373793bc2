package analyzer

import (
	"math"

	"go-skin-inspector/internal/logger"
	"go-skin-inspector/pkg/models"
	"go-skin-inspector/pkg/validation"

	"github.com/sirupsen/logrus"
)

const porphyrinComponent = "porphyrin_detector"

// Recommendation texts, emitted in rule order
const (
	recDermatologist   = "Book a dermatologist consultation to discuss prescription acne treatment"
	recRetinoid        = "Introduce a topical retinoid or benzoyl peroxide product, starting every other night"
	recGentleCleansing = "Cleanse gently morning and evening with a non-comedogenic cleanser"
	recExfoliant       = "Add a salicylic acid (BHA) exfoliant two to three times a week for congested pores"
	recNoPicking       = "Avoid picking or squeezing lesions to limit scarring and spread"
	recContinue        = "Continue the current treatment and review progress with the prescriber"
	recRoutine         = "Build a consistent routine: cleanse, treat, moisturise, protect"
	recMaintain        = "Maintain the current skincare routine and daily sunscreen"
)

// congestion above this percent earns the exfoliant recommendation
const exfoliantCongestion = 30.0

// porphyrinDetector implements PorphyrinDetector
type porphyrinDetector struct {
	model PorphyrinModel
}

// NewPorphyrinDetector creates a porphyrin/acne detector
func NewPorphyrinDetector(cfg AnalysisConfig) PorphyrinDetector {
	return &porphyrinDetector{model: cfg.Porphyrin}
}

// Detect scores the bacterial signal. Congestion and cluster density carry
// most of the weight, pore metrics the least.
func (d *porphyrinDetector) Detect(in models.PorphyrinInput) (models.PorphyrinResult, error) {
	m := d.model
	f := d.clampFeatures(in.Features)

	var acneHistory models.AcneHistory
	var routine models.SkincareRoutine
	onTreatment := false
	if in.History != nil {
		acneHistory = in.History.AcneHistory
		if acneHistory == "" {
			acneHistory = models.DefaultAcneHistory
		}
		routine = in.History.SkincareRoutine
		if routine == "" {
			routine = models.DefaultSkincareRoutine
		}
		onTreatment = in.History.OnTreatment
	}

	score := m.CongestionWeight*f.CongestedPoresPercent +
		m.ClusterWeight*f.AcneClusterDensity +
		m.RednessWeight*f.RedAreasScore +
		m.InflammationWeight*capRatio(f.InflammationSpots, m.InflammationCap) +
		m.AcneCountWeight*capRatio(f.AcneCount, m.AcneCountCap) +
		m.PoreDensityWeight*f.PoreDensity +
		m.PoreSizeWeight*f.AveragePoreSize

	if in.History != nil {
		historyMod, ok := m.HistoryModifiers[acneHistory]
		if !ok {
			return models.PorphyrinResult{}, unknownValue("acne_history", string(acneHistory))
		}
		routineMod, ok := m.RoutineModifiers[routine]
		if !ok {
			return models.PorphyrinResult{}, unknownValue("skincare_routine", string(routine))
		}
		score += historyMod + routineMod
		if age := in.History.Age; age != nil && *age >= m.TeenAgeMin && *age <= m.TeenAgeMax {
			score += m.TeenModifier
		}
	}
	score = validation.ClampPercent(score)

	severity := d.severity(score)
	result := models.PorphyrinResult{
		PorphyrinScore:   score,
		AcneSeverity:     severity,
		TreatmentUrgency: d.urgency(severity, onTreatment, acneHistory),
		Confidence:       d.confidence(in),
		Recommendations:  d.recommendations(severity, f, onTreatment, routine),
	}

	logger.WithFields(logrus.Fields{
		"component":   porphyrinComponent,
		"score":       score,
		"severity":    severity,
		"urgency":     result.TreatmentUrgency,
		"has_history": in.History != nil,
	}).Debug("Porphyrin detection finished")

	return result, nil
}

func (d *porphyrinDetector) clampFeatures(f models.PorphyrinFeatures) models.PorphyrinFeatures {
	return models.PorphyrinFeatures{
		AcneCount:             validation.ClampCount(porphyrinComponent, "acne_count", f.AcneCount),
		AcneClusterDensity:    validation.ClampInput(porphyrinComponent, "acne_cluster_density", f.AcneClusterDensity, 0, 1),
		PoreDensity:           validation.ClampInput(porphyrinComponent, "pore_density", f.PoreDensity, 0, 1),
		AveragePoreSize:       validation.ClampInput(porphyrinComponent, "average_pore_size", f.AveragePoreSize, 0, 1),
		CongestedPoresPercent: validation.ClampInput(porphyrinComponent, "congested_pores_percent", f.CongestedPoresPercent, 0, 100),
		RedAreasScore:         validation.ClampInput(porphyrinComponent, "red_areas_score", f.RedAreasScore, 0, 100),
		InflammationSpots:     validation.ClampCount(porphyrinComponent, "inflammation_spots", f.InflammationSpots),
	}
}

// capRatio maps a count onto [0, 1], saturating at limit
func capRatio(count, limit int) float64 {
	if limit <= 0 {
		return 0
	}
	return math.Min(float64(count), float64(limit)) / float64(limit)
}

func (d *porphyrinDetector) severity(score float64) models.AcneSeverity {
	switch {
	case score >= d.model.SevereThreshold:
		return models.AcneSevere
	case score >= d.model.ModerateThreshold:
		return models.AcneModerate
	case score >= d.model.MildThreshold:
		return models.AcneMild
	default:
		return models.AcneNone
	}
}

func (d *porphyrinDetector) urgency(severity models.AcneSeverity, onTreatment bool, history models.AcneHistory) models.TreatmentUrgency {
	switch severity {
	case models.AcneSevere:
		if onTreatment {
			return models.UrgencySoon
		}
		return models.UrgencyUrgent
	case models.AcneModerate:
		if onTreatment {
			return models.UrgencyRoutine
		}
		return models.UrgencySoon
	case models.AcneMild:
		return models.UrgencyRoutine
	default:
		if history == models.AcneHistoryModerate || history == models.AcneHistorySevere {
			return models.UrgencyRoutine
		}
		return models.UrgencyNone
	}
}

// confidence scales the image hint down when no history was supplied
func (d *porphyrinDetector) confidence(in models.PorphyrinInput) float64 {
	c := d.model.DefaultImageConfidence
	if in.ImageConfidence != nil {
		c = validation.ClampInput(porphyrinComponent, "image_confidence", *in.ImageConfidence, 0, 1)
	}
	if in.History == nil {
		c *= d.model.MissingHistoryFactor
	}
	return validation.ClampUnit(c)
}

// recommendations is never empty; the first entry is the most important
func (d *porphyrinDetector) recommendations(severity models.AcneSeverity, f models.PorphyrinFeatures, onTreatment bool, routine models.SkincareRoutine) []string {
	var recs []string
	switch severity {
	case models.AcneSevere:
		if onTreatment {
			recs = append(recs, recContinue, recDermatologist)
		} else {
			recs = append(recs, recDermatologist)
		}
		recs = append(recs, recNoPicking, recGentleCleansing)
	case models.AcneModerate:
		if onTreatment {
			recs = append(recs, recContinue)
		} else {
			recs = append(recs, recRetinoid)
		}
		recs = append(recs, recGentleCleansing, recNoPicking)
	case models.AcneMild:
		recs = append(recs, recGentleCleansing)
	default:
		recs = append(recs, recMaintain)
	}

	if severity != models.AcneNone && f.CongestedPoresPercent >= exfoliantCongestion {
		recs = append(recs, recExfoliant)
	}
	if severity != models.AcneNone && (routine == models.SkincareNone || routine == models.SkincareBasic) {
		recs = append(recs, recRoutine)
	}
	return recs
}
