package analyzer

import (
	"math"

	"go-skin-inspector/internal/colorspace"
	"go-skin-inspector/internal/logger"
	"go-skin-inspector/pkg/models"
	"go-skin-inspector/pkg/validation"

	"github.com/sirupsen/logrus"
)

type bucket int

const (
	bucketNone bucket = iota - 1
	bucketRed
	bucketBrown
	bucketUV
	bucketCount = 3
)

// rbxSums are the per-strip partial sums of one scan
type rbxSums struct {
	sampled   int
	counts    [bucketCount]int
	deviation [bucketCount]float64
}

func (s *rbxSums) merge(o rbxSums) {
	s.sampled += o.sampled
	for i := 0; i < bucketCount; i++ {
		s.counts[i] += o.counts[i]
		s.deviation[i] += o.deviation[i]
	}
}

// rbxSeparator implements ColorSeparator
type rbxSeparator struct {
	thresholds ColorThresholds
	stride     int
	parallel   int
	pool       *WorkerPool
}

// NewRBXSeparator creates a color separator. pool may be nil for sequential scans.
func NewRBXSeparator(cfg AnalysisConfig, pool *WorkerPool) ColorSeparator {
	return newRBXSeparator(cfg, pool)
}

func newRBXSeparator(cfg AnalysisConfig, pool *WorkerPool) *rbxSeparator {
	stride := cfg.SampleStride
	if stride < 1 {
		stride = 1
	}
	return &rbxSeparator{
		thresholds: cfg.Color,
		stride:     stride,
		parallel:   cfg.ParallelThreshold,
		pool:       pool,
	}
}

// Separate scans the strided pixel grid and scores each color bucket.
// A fully transparent buffer scores zero everywhere with zero confidence.
func (rs *rbxSeparator) Separate(buf *models.PixelBuffer) (models.RBXResult, error) {
	if err := validation.ValidatePixelBuffer(buf); err != nil {
		return models.RBXResult{}, err
	}

	partials := scanRows(rs.pool, buf.Width, buf.Height, rs.parallel, func(startY, endY int) rbxSums {
		return rs.scanStrip(buf, startY, endY)
	})

	var total rbxSums
	for _, p := range partials {
		total.merge(p)
	}

	result := models.RBXResult{SampledPixels: total.sampled}
	if total.sampled == 0 {
		return result, nil
	}

	t := rs.thresholds
	result.RedAreas = rs.bucketResult(total, bucketRed, t.RedScoreScale, t.RedIntensityScale)
	result.BrownSpots = rs.bucketResult(total, bucketBrown, t.BrownScoreScale, t.BrownIntensityScale)
	result.UVSpots = rs.bucketResult(total, bucketUV, t.UVScoreScale, t.UVIntensityScale)
	result.Confidence = (result.RedAreas.Confidence + result.BrownSpots.Confidence) / 2

	logger.WithFields(logrus.Fields{
		"component":   "rbx_separator",
		"sampled":     total.sampled,
		"red_score":   result.RedAreas.Score,
		"brown_score": result.BrownSpots.Score,
		"uv_score":    result.UVSpots.Score,
	}).Debug("RBX separation finished")

	return result, nil
}

func (rs *rbxSeparator) scanStrip(buf *models.PixelBuffer, startY, endY int) rbxSums {
	var sums rbxSums
	for y := firstSampledRow(startY, rs.stride); y < endY; y += rs.stride {
		row := y * buf.Width * 4
		for x := 0; x < buf.Width; x += rs.stride {
			i := row + x*4
			if buf.Pix[i+3] < rs.thresholds.MinAlpha {
				continue
			}
			sums.sampled++

			b, dev := rs.classify(buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2])
			if b == bucketNone {
				continue
			}
			sums.counts[b]++
			sums.deviation[b] += dev
		}
	}
	return sums
}

// classify assigns a pixel to at most one bucket, checked red, brown, then UV.
// The returned deviation is the distance from that bucket's neutral reference.
func (rs *rbxSeparator) classify(r, g, b uint8) (bucket, float64) {
	hsv, lab := colorspace.Convert(r, g, b)
	return rs.classifyColor(hsv, lab)
}

func (rs *rbxSeparator) classifyColor(hsv colorspace.HSV, lab colorspace.LAB) (bucket, float64) {
	t := rs.thresholds
	if t.RedHue.Contains(hsv.H) && hsv.S >= t.RedMinSaturation && lab.A >= t.RedMinA {
		return bucketRed, lab.A
	}
	if t.BrownHue.Contains(hsv.H) && hsv.S >= t.BrownMinSaturation &&
		lab.L >= t.BrownMinL && lab.L <= t.BrownMaxL && lab.B >= t.BrownMinB {
		return bucketBrown, math.Max(0, t.BrownReferenceL-lab.L)
	}
	if hsv.V >= t.UVMinValue && hsv.S <= t.UVMaxSaturation {
		return bucketUV, math.Max(0, lab.L-t.UVReferenceL)
	}
	return bucketNone, 0
}

func (rs *rbxSeparator) bucketResult(total rbxSums, b bucket, scoreScale, intensityScale float64) models.ColorBucketResult {
	count := total.counts[b]
	fraction := float64(count) / float64(total.sampled)

	var meanDeviation float64
	if count > 0 {
		meanDeviation = total.deviation[b] / float64(count)
	}

	return models.ColorBucketResult{
		Coverage:   validation.ClampPercent(fraction * 100),
		Intensity:  validation.ClampPercent(meanDeviation * intensityScale),
		Score:      validation.ClampPercent(fraction * scoreScale),
		Confidence: rs.confidence(fraction, total.sampled),
		PixelCount: count,
	}
}

// confidence rises with the classified fraction and saturates with sample size
func (rs *rbxSeparator) confidence(fraction float64, sampled int) float64 {
	t := rs.thresholds
	coverageTerm := t.ConfidenceFloor + (1-t.ConfidenceFloor)*math.Min(1, fraction*t.ConfidenceGain)
	sampleTerm := float64(sampled) / (float64(sampled) + t.ConfidenceHalfSample)
	return validation.ClampUnit(coverageTerm * sampleTerm)
}
