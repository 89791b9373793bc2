package analyzer

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	apperrors "go-skin-inspector/internal/errors"
	"go-skin-inspector/internal/logger"
	"go-skin-inspector/pkg/models"
	"go-skin-inspector/pkg/validation"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Analyzer names carried by analyzer_failure errors
const (
	RBXSeparatorName      = "rbx_separator"
	UVPredictorName       = "uv_predictor"
	PorphyrinDetectorName = "porphyrin_detector"

	photoQualityName = "photo_quality"
)

// visiaScale maps 0-100 analyzer scores onto the 0-10 VISIA-equivalent scale
const visiaScale = 10.0

// Components overrides individual analyzers; nil fields get the defaults
type Components struct {
	Separator ColorSeparator
	UV        UVPredictor
	Porphyrin PorphyrinDetector
	Extractor FeatureExtractor
	Markers   *MarkerSynthesizer
}

// skinAnalyzer implements SkinAnalyzer. It holds no per-request state.
type skinAnalyzer struct {
	workerPool *WorkerPool
	separator  ColorSeparator
	uv         UVPredictor
	porphyrin  PorphyrinDetector
	extractor  FeatureExtractor
	markers    *MarkerSynthesizer
	quality    *validation.QualityValidator
}

// NewSkinAnalyzer creates the analysis facade with the default components
func NewSkinAnalyzer(cfg AnalysisConfig) (SkinAnalyzer, error) {
	return NewSkinAnalyzerWithComponents(cfg, Components{})
}

// NewSkinAnalyzerWithComponents creates the facade, substituting any supplied components
func NewSkinAnalyzerWithComponents(cfg AnalysisConfig, components Components) (SkinAnalyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewValidationError("invalid analysis configuration", err)
	}

	workerPool := NewWorkerPool(cfg.MaxWorkers)
	workerPool.Start()

	sa := &skinAnalyzer{
		workerPool: workerPool,
		separator:  components.Separator,
		uv:         components.UV,
		porphyrin:  components.Porphyrin,
		extractor:  components.Extractor,
		markers:    components.Markers,
		quality:    validation.NewQualityValidator(),
	}
	if sa.separator == nil {
		sa.separator = NewRBXSeparator(cfg, workerPool)
	}
	if sa.uv == nil {
		sa.uv = NewUVPredictor(cfg)
	}
	if sa.porphyrin == nil {
		sa.porphyrin = NewPorphyrinDetector(cfg)
	}
	if sa.extractor == nil {
		sa.extractor = NewFeatureExtractor(cfg, workerPool)
	}
	if sa.markers == nil {
		sa.markers = NewMarkerSynthesizer(cfg.Markers, nil)
	}
	return sa, nil
}

// Analyze runs the three analyzers concurrently over one read-only buffer and
// assembles the report. Any analyzer failure fails the whole call with an
// error naming that analyzer.
func (sa *skinAnalyzer) Analyze(ctx context.Context, buf *models.PixelBuffer, profile *models.UserProfile) (*models.SkinReport, error) {
	start := time.Now()

	if err := validation.ValidatePixelBuffer(buf); err != nil {
		return nil, err
	}
	if err := validation.ValidateProfile(profile); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewTimeoutError("analysis cancelled before start", err)
	}

	var (
		rbx        models.RBXResult
		uvFeatures models.UVImageFeatures
		uvResult   models.UVPredictionResult
		poFeatures models.PorphyrinFeatures
		poResult   models.PorphyrinResult
		photoStats PhotoStats
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(guard(RBXSeparatorName, func() error {
		var err error
		rbx, err = sa.separator.Separate(buf)
		return err
	}))

	g.Go(guard(UVPredictorName, func() error {
		uvFeatures = sa.extractor.UVFeatures(buf)
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		uvResult, err = sa.uv.Predict(models.NewUVInput(profile, uvFeatures))
		return err
	}))

	g.Go(guard(PorphyrinDetectorName, func() error {
		var imageConfidence float64
		poFeatures, imageConfidence = sa.extractor.PorphyrinFeatures(buf)
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		poResult, err = sa.porphyrin.Detect(models.NewPorphyrinInput(profile, poFeatures, imageConfidence))
		return err
	}))

	g.Go(guard(photoQualityName, func() error {
		photoStats = sa.extractor.PhotoStats(buf)
		return nil
	}))

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.NewTimeoutError("analysis cancelled", ctx.Err())
		}
		name, _ := apperrors.FailedAnalyzer(err)
		logger.WithFields(logrus.Fields{
			"analyzer": name,
			"error":    err.Error(),
		}).Error("Skin analysis failed")
		return nil, err
	}

	markers := sa.markers.SynthesizeIllustrativeMarkers(buf.Width, buf.Height, MarkerScores{
		UVSpots:   uvResult.UVSpotsScore,
		Porphyrin: poResult.PorphyrinScore,
		Red:       rbx.RedAreas.Score,
		Brown:     rbx.BrownSpots.Score,
	})

	report := &models.SkinReport{
		ID:        uuid.NewString(),
		Timestamp: start.UTC(),
		Width:     buf.Width,
		Height:    buf.Height,
		Red: models.RedComponent{
			Score:      rbx.RedAreas.Score / visiaScale,
			Coverage:   rbx.RedAreas.Coverage,
			Intensity:  rbx.RedAreas.Intensity,
			Confidence: rbx.RedAreas.Confidence,
			Veins:      markers.Veins,
		},
		Brown: models.BrownComponent{
			Score:      rbx.BrownSpots.Score / visiaScale,
			Coverage:   rbx.BrownSpots.Coverage,
			Intensity:  rbx.BrownSpots.Intensity,
			Confidence: rbx.BrownSpots.Confidence,
			AgeSpots:   markers.AgeSpots,
		},
		UV: models.UVComponent{
			Score:       uvResult.UVSpotsScore / visiaScale,
			DamageScore: uvResult.UVDamageScore,
			RiskLevel:   uvResult.RiskLevel,
			FutureRisk:  uvResult.FutureRisk,
			Confidence:  uvResult.Confidence,
			Spots:       markers.UVSpots,
		},
		Porphyrins: models.PorphyrinComponent{
			Score:            poResult.PorphyrinScore / visiaScale,
			AcneSeverity:     poResult.AcneSeverity,
			TreatmentUrgency: poResult.TreatmentUrgency,
			Recommendations:  poResult.Recommendations,
			Confidence:       poResult.Confidence,
			Spots:            markers.PorphyrinSpots,
		},
		Raw: models.RawScores{
			RBX:       rbx,
			UV:        uvResult,
			Porphyrin: poResult,
		},
		Features: models.ExtractedFeatures{
			UV:        uvFeatures,
			Porphyrin: poFeatures,
		},
	}
	report.OverallScore = (report.Red.Score + report.Brown.Score + report.UV.Score + report.Porphyrins.Score) / 4

	issues := sa.quality.ValidatePhoto(validation.PhotoMetrics{
		Width:          photoStats.Width,
		Height:         photoStats.Height,
		MeanLuma:       photoStats.MeanLuma,
		OpaqueFraction: photoStats.OpaqueFraction,
	})
	report.Warnings = sa.quality.ConvertIssuesToMessages(issues)
	report.ProcessingTimeSec = time.Since(start).Seconds()

	logger.WithFields(logrus.Fields{
		"report_id":       report.ID,
		"width":           buf.Width,
		"height":          buf.Height,
		"overall_score":   report.OverallScore,
		"processing_time": report.ProcessingTimeSec,
		"warnings":        len(report.Warnings),
	}).Info("Skin analysis completed")

	return report, nil
}

// Close releases the scan workers
func (sa *skinAnalyzer) Close() error {
	sa.workerPool.Close()
	return nil
}

// guard runs one analyzer, converting its error or panic into an
// analyzer_failure naming it
func guard(name string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithFields(logrus.Fields{
					"analyzer": name,
					"panic":    fmt.Sprint(r),
					"stack":    string(debug.Stack()),
				}).Error("Analyzer panicked")
				err = apperrors.NewAnalyzerFailure(name, fmt.Errorf("panic: %v", r))
			}
		}()
		if err := fn(); err != nil {
			return apperrors.NewAnalyzerFailure(name, err)
		}
		return nil
	}
}
