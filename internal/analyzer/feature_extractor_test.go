package analyzer

import (
	"math"
	"testing"

	"go-skin-inspector/pkg/models"
)

func TestFeatureExtractor_UniformGray(t *testing.T) {
	extractor := NewFeatureExtractor(DefaultConfig(), nil)
	buf := solidBuffer(64, 64, 150, 150, 150)

	uv := extractor.UVFeatures(buf)
	if uv.Count() != 3 {
		t.Fatalf("Expected all three UV features, got %d", uv.Count())
	}
	if *uv.ExistingBrownSpots != 0 || *uv.SkinTextureScore != 0 || *uv.WrinkleScore != 0 {
		t.Errorf("Expected flat gray to measure zero, got brown=%f texture=%f wrinkle=%f",
			*uv.ExistingBrownSpots, *uv.SkinTextureScore, *uv.WrinkleScore)
	}

	features, confidence := extractor.PorphyrinFeatures(buf)
	if features != (models.PorphyrinFeatures{}) {
		t.Errorf("Expected no porphyrin features on flat gray, got %+v", features)
	}
	want := 0.5 + 0.5*1024.0/1524.0
	if math.Abs(confidence-want) > 1e-9 {
		t.Errorf("Expected image confidence %f, got %f", want, confidence)
	}
}

func TestFeatureExtractor_Transparent(t *testing.T) {
	extractor := NewFeatureExtractor(DefaultConfig(), nil)
	buf := models.NewPixelBuffer(32, 32)

	if uv := extractor.UVFeatures(buf); uv.Count() != 0 {
		t.Errorf("Expected no UV features on a transparent buffer, got %+v", uv)
	}
	if _, confidence := extractor.PorphyrinFeatures(buf); confidence != 0 {
		t.Errorf("Expected zero confidence, got %f", confidence)
	}
	if stats := extractor.PhotoStats(buf); stats.OpaqueFraction != 0 || stats.MeanLuma != 0 {
		t.Errorf("Expected empty stats, got %+v", stats)
	}
}

func TestFeatureExtractor_InvalidBuffer(t *testing.T) {
	extractor := NewFeatureExtractor(DefaultConfig(), nil)
	bad := &models.PixelBuffer{Width: 4, Height: 4}

	if uv := extractor.UVFeatures(bad); uv.Count() != 0 {
		t.Errorf("Expected no features, got %+v", uv)
	}
	if _, confidence := extractor.PorphyrinFeatures(bad); confidence != 0 {
		t.Errorf("Expected zero confidence, got %f", confidence)
	}
}

func TestFeatureExtractor_TextureAndWrinkles(t *testing.T) {
	extractor := NewFeatureExtractor(DefaultConfig(), nil)

	striped := solidBuffer(64, 64, 170, 150, 140)
	for x := 0; x < 64; x += 8 {
		paintRect(striped, x, 0, x+2, 64, 90, 75, 70)
	}

	flat := extractor.UVFeatures(solidBuffer(64, 64, 170, 150, 140))
	lined := extractor.UVFeatures(striped)

	if *lined.SkinTextureScore <= *flat.SkinTextureScore {
		t.Errorf("Expected lines to raise texture: %f vs %f", *lined.SkinTextureScore, *flat.SkinTextureScore)
	}
	if *lined.WrinkleScore <= 0 {
		t.Errorf("Expected a positive wrinkle score, got %f", *lined.WrinkleScore)
	}
	if *lined.SkinTextureScore > 100 || *lined.WrinkleScore > 100 {
		t.Error("Expected scores to stay within 100")
	}
}

func TestFeatureExtractor_BrownSpots(t *testing.T) {
	extractor := NewFeatureExtractor(DefaultConfig(), nil)

	buf := solidBuffer(40, 40, 128, 128, 128)
	paintRect(buf, 0, 0, 40, 4, 139, 90, 60) // 2 of 20 sampled rows

	uv := extractor.UVFeatures(buf)
	// 10% brown samples * 300
	if math.Abs(*uv.ExistingBrownSpots-30) > 1e-9 {
		t.Errorf("Expected brown spot density 30, got %f", *uv.ExistingBrownSpots)
	}
}

func TestFeatureExtractor_AcneCells(t *testing.T) {
	extractor := NewFeatureExtractor(DefaultConfig(), nil)

	// 4x4 grid of 16px cells
	buf := solidBuffer(64, 64, 150, 150, 150)
	paintRect(buf, 0, 0, 16, 16, 200, 60, 60)   // cell (0,0), isolated
	paintRect(buf, 32, 32, 64, 48, 200, 60, 60) // cells (2,2) and (3,2), adjacent
	paintRect(buf, 0, 48, 16, 64, 200, 60, 60)  // cell (0,3), isolated

	features, _ := extractor.PorphyrinFeatures(buf)
	if features.AcneCount != 4 {
		t.Errorf("Expected 4 acne cells, got %d", features.AcneCount)
	}
	if features.InflammationSpots != 4 {
		t.Errorf("Expected 4 inflamed cells, got %d", features.InflammationSpots)
	}
	if math.Abs(features.AcneClusterDensity-0.5) > 1e-9 {
		t.Errorf("Expected cluster density 0.5, got %f", features.AcneClusterDensity)
	}
	if features.RedAreasScore <= 0 {
		t.Errorf("Expected a positive redness feature, got %f", features.RedAreasScore)
	}
}

func TestFeatureExtractor_Pores(t *testing.T) {
	extractor := NewFeatureExtractor(DefaultConfig(), nil)

	buf := solidBuffer(64, 64, 150, 150, 150)
	for y := 4; y < 64; y += 8 {
		for x := 4; x < 64; x += 8 {
			paintRect(buf, x, y, x+2, y+2, 60, 60, 60)
		}
	}

	features, _ := extractor.PorphyrinFeatures(buf)
	if features.PoreDensity != 1 {
		t.Errorf("Expected every cell to hold pores, got density %f", features.PoreDensity)
	}
	if math.Abs(features.AveragePoreSize-0.25) > 1e-9 {
		t.Errorf("Expected average pore size 0.25, got %f", features.AveragePoreSize)
	}
	if features.CongestedPoresPercent != 0 {
		t.Errorf("Expected no congested cells, got %f", features.CongestedPoresPercent)
	}
	if features.AcneCount != 0 {
		t.Errorf("Expected no acne on gray pores, got %d", features.AcneCount)
	}
}

func TestFeatureExtractor_PhotoStats(t *testing.T) {
	extractor := NewFeatureExtractor(DefaultConfig(), nil)

	buf := solidBuffer(20, 20, 128, 128, 128)
	for y := 10; y < 20; y++ {
		for x := 0; x < 20; x++ {
			buf.Set(x, y, 0, 0, 0, 0)
		}
	}

	stats := extractor.PhotoStats(buf)
	if math.Abs(stats.MeanLuma-128) > 1e-6 {
		t.Errorf("Expected mean luma 128, got %f", stats.MeanLuma)
	}
	if math.Abs(stats.OpaqueFraction-0.5) > 1e-9 {
		t.Errorf("Expected half the samples opaque, got %f", stats.OpaqueFraction)
	}
	if stats.Width != 20 || stats.Height != 20 {
		t.Errorf("Unexpected dimensions %dx%d", stats.Width, stats.Height)
	}
}

func TestFeatureExtractor_ParallelMatchesSequential(t *testing.T) {
	cfg := DefaultConfig().WithParallelThreshold(0)
	pool := NewWorkerPool(3)
	defer pool.Close()

	buf := noisyBuffer(90, 70, 180, 120, 100, 60, 4)

	sequential := NewFeatureExtractor(cfg, nil)
	parallel := NewFeatureExtractor(cfg, pool)

	seqUV, parUV := sequential.UVFeatures(buf), parallel.UVFeatures(buf)
	if math.Abs(*seqUV.ExistingBrownSpots-*parUV.ExistingBrownSpots) > 1e-9 ||
		math.Abs(*seqUV.SkinTextureScore-*parUV.SkinTextureScore) > 1e-6 ||
		math.Abs(*seqUV.WrinkleScore-*parUV.WrinkleScore) > 1e-9 {
		t.Errorf("Expected matching UV features, got %+v and %+v", seqUV, parUV)
	}

	seqPo, seqConf := sequential.PorphyrinFeatures(buf)
	parPo, parConf := parallel.PorphyrinFeatures(buf)
	if seqPo.AcneCount != parPo.AcneCount || seqPo.InflammationSpots != parPo.InflammationSpots {
		t.Errorf("Expected matching acne counts, got %+v and %+v", seqPo, parPo)
	}
	if math.Abs(seqPo.CongestedPoresPercent-parPo.CongestedPoresPercent) > 1e-9 || seqConf != parConf {
		t.Errorf("Expected matching pore features, got %+v and %+v", seqPo, parPo)
	}
}
