package analyzer

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"go-skin-inspector/pkg/models"
)

// MarkerScores are the 0-100 scores that drive marker counts
type MarkerScores struct {
	UVSpots   float64
	Porphyrin float64
	Red       float64
	Brown     float64
}

// IllustrativeMarkers are decorative overlay positions. They are random and
// must never be read as detected lesion locations.
type IllustrativeMarkers struct {
	UVSpots        []models.Marker
	PorphyrinSpots []models.Marker
	AgeSpots       []models.Marker
	Veins          []models.VeinSegment
}

// MarkerSynthesizer synthesizes illustrative markers from an injected random
// source. It is safe for concurrent use.
type MarkerSynthesizer struct {
	cfg MarkerConfig

	mu  sync.Mutex
	rng *rand.Rand
}

// NewMarkerSynthesizer uses rng when given, otherwise a source seeded from
// cfg.Seed or the clock.
func NewMarkerSynthesizer(cfg MarkerConfig, rng *rand.Rand) *MarkerSynthesizer {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		if cfg.Seed != nil {
			seed = uint64(*cfg.Seed)
		}
		rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	return &MarkerSynthesizer{cfg: cfg, rng: rng}
}

// SynthesizeIllustrativeMarkers places markers inside a width x height image.
// Counts grow with the scores and never exceed the configured caps.
func (ms *MarkerSynthesizer) SynthesizeIllustrativeMarkers(width, height int, scores MarkerScores) IllustrativeMarkers {
	c := ms.cfg
	uvCount := markerCount(scores.UVSpots, c.UVSpotsPerPoint, c.MaxUVSpots)
	porphyrinCount := markerCount(scores.Porphyrin, c.PorphyrinSpotsPerPoint, c.MaxPorphyrinSpots)
	ageSpotCount := markerCount(scores.Brown, c.AgeSpotsPerPoint, c.MaxAgeSpots)
	veinCount := markerCount(scores.Red, c.VeinsPerPoint, c.MaxVeinSegments)

	markers := IllustrativeMarkers{
		UVSpots:        make([]models.Marker, 0, uvCount),
		PorphyrinSpots: make([]models.Marker, 0, porphyrinCount),
		AgeSpots:       make([]models.Marker, 0, ageSpotCount),
		Veins:          make([]models.VeinSegment, 0, veinCount),
	}
	if width <= 0 || height <= 0 {
		return markers
	}

	// Sizes are tuned for a 256px face and scale with the image
	scale := math.Max(1, float64(min(width, height))/256)

	ms.mu.Lock()
	defer ms.mu.Unlock()

	for i := 0; i < uvCount; i++ {
		markers.UVSpots = append(markers.UVSpots, ms.spot(width, height, 1*scale, 3*scale))
	}
	for i := 0; i < porphyrinCount; i++ {
		markers.PorphyrinSpots = append(markers.PorphyrinSpots, ms.spot(width, height, 1.5*scale, 4*scale))
	}
	for i := 0; i < ageSpotCount; i++ {
		markers.AgeSpots = append(markers.AgeSpots, ms.spot(width, height, 2*scale, 6*scale))
	}
	for i := 0; i < veinCount; i++ {
		markers.Veins = append(markers.Veins, ms.vein(width, height, scale))
	}
	return markers
}

func (ms *MarkerSynthesizer) spot(width, height int, minRadius, maxRadius float64) models.Marker {
	return models.Marker{
		X:      ms.rng.IntN(width),
		Y:      ms.rng.IntN(height),
		Radius: minRadius + ms.rng.Float64()*(maxRadius-minRadius),
	}
}

func (ms *MarkerSynthesizer) vein(width, height int, scale float64) models.VeinSegment {
	x1, y1 := ms.rng.IntN(width), ms.rng.IntN(height)
	angle := ms.rng.Float64() * 2 * math.Pi
	length := (8 + ms.rng.Float64()*24) * scale

	x2 := clampInt(x1+int(math.Round(length*math.Cos(angle))), 0, width-1)
	y2 := clampInt(y1+int(math.Round(length*math.Sin(angle))), 0, height-1)
	return models.VeinSegment{
		X1:    x1,
		Y1:    y1,
		X2:    x2,
		Y2:    y2,
		Width: (0.5 + ms.rng.Float64()*1.5) * scale,
	}
}

// markerCount is round(score*perPoint) capped to [0, limit]
func markerCount(score, perPoint float64, limit int) int {
	if math.IsNaN(score) || score <= 0 || perPoint <= 0 || limit <= 0 {
		return 0
	}
	n := int(math.Round(score * perPoint))
	return clampInt(n, 0, limit)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
