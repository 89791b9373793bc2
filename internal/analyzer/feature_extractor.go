package analyzer

import (
	"math"

	"go-skin-inspector/internal/colorspace"
	"go-skin-inspector/pkg/models"
	"go-skin-inspector/pkg/validation"

	"gonum.org/v1/gonum/stat"
)

// PhotoStats summarise exposure and masking for the quality checks
type PhotoStats struct {
	Width          int
	Height         int
	MeanLuma       float64 // 0-255 over opaque samples
	OpaqueFraction float64 // 0-1 over all samples
}

// featureExtractor implements FeatureExtractor. Each feature family is one
// pass over the buffer, split in row strips.
type featureExtractor struct {
	features   FeatureThresholds
	color      ColorThresholds
	classifier *rbxSeparator
	pool       *WorkerPool
	stride     int
	parallel   int
}

// NewFeatureExtractor creates a feature extractor sharing the RBX pixel classifier
func NewFeatureExtractor(cfg AnalysisConfig, pool *WorkerPool) FeatureExtractor {
	classifier := newRBXSeparator(cfg, pool)
	if cfg.Features.CellSize < 1 {
		cfg.Features.CellSize = 1
	}
	return &featureExtractor{
		features:   cfg.Features,
		color:      cfg.Color,
		classifier: classifier,
		pool:       pool,
		stride:     classifier.stride,
		parallel:   cfg.ParallelThreshold,
	}
}

// UVFeatures measures brown-spot density, texture roughness and a wrinkle
// indicator. Features that cannot be measured are left nil.
func (fe *featureExtractor) UVFeatures(buf *models.PixelBuffer) models.UVImageFeatures {
	var features models.UVImageFeatures
	if validation.ValidatePixelBuffer(buf) != nil {
		return features
	}

	type brownSums struct {
		sampled, brown int
	}
	var brown brownSums
	for _, part := range scanRows(fe.pool, buf.Width, buf.Height, fe.parallel, func(startY, endY int) brownSums {
		var sums brownSums
		fe.eachSample(buf, startY, endY, func(r, g, b uint8) {
			sums.sampled++
			if bk, _ := fe.classifier.classify(r, g, b); bk == bucketBrown {
				sums.brown++
			}
		})
		return sums
	}) {
		brown.sampled += part.sampled
		brown.brown += part.brown
	}
	if brown.sampled > 0 {
		v := validation.ClampPercent(float64(brown.brown) / float64(brown.sampled) * fe.features.BrownSpotScale)
		features.ExistingBrownSpots = &v
	}

	texture, wrinkle, ok := fe.gradientFeatures(buf)
	if ok {
		features.SkinTextureScore = &texture
		features.WrinkleScore = &wrinkle
	}
	return features
}

// gradientFeatures derives texture from the Laplacian spread and wrinkles
// from the share of strong Sobel edges. Only fully opaque 3x3 windows count.
func (fe *featureExtractor) gradientFeatures(buf *models.PixelBuffer) (float64, float64, bool) {
	w, h := buf.Width, buf.Height
	if w < 3 || h < 3 {
		return 0, 0, false
	}
	plane := fe.lumaPlane(buf)

	type gradientSums struct {
		laplacians []float64
		edges      int
	}
	var laplacians []float64
	edges := 0
	for _, part := range scanRows(fe.pool, w, h, fe.parallel, func(startY, endY int) gradientSums {
		var sums gradientSums
		for y := max(startY, 1); y < min(endY, h-1); y++ {
			for x := 1; x < w-1; x++ {
				tl, t, tr := plane[(y-1)*w+x-1], plane[(y-1)*w+x], plane[(y-1)*w+x+1]
				l, c, r := plane[y*w+x-1], plane[y*w+x], plane[y*w+x+1]
				bl, b, br := plane[(y+1)*w+x-1], plane[(y+1)*w+x], plane[(y+1)*w+x+1]
				if anyNaN(tl, t, tr, l, c, r, bl, b, br) {
					continue
				}

				// Laplacian kernel: [0, 1, 0; 1, -4, 1; 0, 1, 0]
				sums.laplacians = append(sums.laplacians, t+b+l+r-4*c)

				gx := (tr + 2*r + br) - (tl + 2*l + bl)
				gy := (bl + 2*b + br) - (tl + 2*t + tr)
				if math.Hypot(gx, gy) > fe.features.WrinkleEdgeThreshold {
					sums.edges++
				}
			}
		}
		return sums
	}) {
		laplacians = append(laplacians, part.laplacians...)
		edges += part.edges
	}

	if len(laplacians) < 2 {
		return 0, 0, false
	}

	texture := validation.ClampPercent(math.Sqrt(stat.Variance(laplacians, nil)) * fe.features.TextureScale)
	wrinkle := validation.ClampPercent(float64(edges) / float64(len(laplacians)) * fe.features.WrinkleScale)
	return texture, wrinkle, true
}

// lumaPlane returns full-resolution luma with NaN for transparent pixels
func (fe *featureExtractor) lumaPlane(buf *models.PixelBuffer) []float64 {
	plane := make([]float64, buf.Area())
	scanRows(fe.pool, buf.Width, buf.Height, fe.parallel, func(startY, endY int) struct{} {
		for y := startY; y < endY; y++ {
			for x := 0; x < buf.Width; x++ {
				i := buf.Offset(x, y)
				if buf.Pix[i+3] < fe.color.MinAlpha {
					plane[y*buf.Width+x] = math.NaN()
					continue
				}
				plane[y*buf.Width+x] = colorspace.Luma(buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2])
			}
		}
		return struct{}{}
	})
	return plane
}

// cellSums counts samples per grid cell for one strip
type cellSums struct {
	opaque, acne, pore []int
	red                int
}

// PorphyrinFeatures measures acne and pore features on a grid of cells and
// returns them with an image confidence in [0, 1].
func (fe *featureExtractor) PorphyrinFeatures(buf *models.PixelBuffer) (models.PorphyrinFeatures, float64) {
	var features models.PorphyrinFeatures
	if validation.ValidatePixelBuffer(buf) != nil {
		return features, 0
	}
	ft := fe.features

	var lumas []float64
	for _, part := range scanRows(fe.pool, buf.Width, buf.Height, fe.parallel, func(startY, endY int) []float64 {
		var values []float64
		fe.eachSample(buf, startY, endY, func(r, g, b uint8) {
			values = append(values, colorspace.Luma(r, g, b))
		})
		return values
	}) {
		lumas = append(lumas, part...)
	}
	if len(lumas) == 0 {
		return features, 0
	}

	mean, std := stat.MeanStdDev(lumas, nil)
	if math.IsNaN(std) {
		std = 0
	}
	poreThreshold := mean - math.Max(ft.PoreContrast, ft.PoreStdDevs*std)

	cols := (buf.Width + ft.CellSize - 1) / ft.CellSize
	rows := (buf.Height + ft.CellSize - 1) / ft.CellSize
	cells := cols * rows

	total := cellSums{opaque: make([]int, cells), acne: make([]int, cells), pore: make([]int, cells)}
	for _, part := range scanRows(fe.pool, buf.Width, buf.Height, fe.parallel, func(startY, endY int) cellSums {
		sums := cellSums{opaque: make([]int, cells), acne: make([]int, cells), pore: make([]int, cells)}
		for y := firstSampledRow(startY, fe.stride); y < endY; y += fe.stride {
			for x := 0; x < buf.Width; x += fe.stride {
				r, g, b, a := buf.At(x, y)
				if a < fe.color.MinAlpha {
					continue
				}
				cell := (y/ft.CellSize)*cols + x/ft.CellSize
				sums.opaque[cell]++

				hsv, lab := colorspace.Convert(r, g, b)
				if bk, _ := fe.classifier.classifyColor(hsv, lab); bk == bucketRed {
					sums.red++
				}
				if fe.color.RedHue.Contains(hsv.H) && hsv.S >= ft.AcneMinSaturation && lab.A >= ft.AcneMinA {
					sums.acne[cell]++
				}
				if colorspace.Luma(r, g, b) < poreThreshold {
					sums.pore[cell]++
				}
			}
		}
		return sums
	}) {
		for i := 0; i < cells; i++ {
			total.opaque[i] += part.opaque[i]
			total.acne[i] += part.acne[i]
			total.pore[i] += part.pore[i]
		}
		total.red += part.red
	}

	acneCells := make([]bool, cells)
	validCells, poreCells, congestedCells := 0, 0, 0
	var poreFractionSum float64
	for i := 0; i < cells; i++ {
		if total.opaque[i] == 0 {
			continue
		}
		validCells++
		n := float64(total.opaque[i])

		acneFraction := float64(total.acne[i]) / n
		if acneFraction >= ft.AcneCellFraction {
			acneCells[i] = true
			features.AcneCount++
			if acneFraction >= ft.InflammationCellFraction {
				features.InflammationSpots++
			}
		}

		poreFraction := float64(total.pore[i]) / n
		if poreFraction >= ft.PoreCellFraction {
			poreCells++
			poreFractionSum += poreFraction
		}
		if poreFraction >= ft.CongestedCellFraction {
			congestedCells++
		}
	}

	features.AcneClusterDensity = clusterDensity(acneCells, cols, rows, features.AcneCount)
	if validCells > 0 {
		features.PoreDensity = validation.ClampUnit(float64(poreCells) / float64(validCells) * ft.PoreDensityScale)
		features.CongestedPoresPercent = validation.ClampPercent(float64(congestedCells) / float64(validCells) * 100)
	}
	if poreCells > 0 {
		features.AveragePoreSize = validation.ClampUnit(poreFractionSum / float64(poreCells) * ft.PoreSizeScale)
	}
	features.RedAreasScore = validation.ClampPercent(float64(total.red) / float64(len(lumas)) * fe.color.RedScoreScale)

	return features, fe.imageConfidence(buf, len(lumas))
}

// clusterDensity is the share of acne cells with an 8-connected acne neighbour
func clusterDensity(acneCells []bool, cols, rows, acneCount int) float64 {
	if acneCount == 0 {
		return 0
	}
	clustered := 0
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			if !acneCells[cy*cols+cx] || !hasAcneNeighbour(acneCells, cols, rows, cx, cy) {
				continue
			}
			clustered++
		}
	}
	return float64(clustered) / float64(acneCount)
}

func hasAcneNeighbour(acneCells []bool, cols, rows, cx, cy int) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := cx+dx, cy+dy
			if nx < 0 || ny < 0 || nx >= cols || ny >= rows {
				continue
			}
			if acneCells[ny*cols+nx] {
				return true
			}
		}
	}
	return false
}

// imageConfidence falls with masking and with small sample counts
func (fe *featureExtractor) imageConfidence(buf *models.PixelBuffer, opaque int) float64 {
	positions := sampledPositions(buf.Width, fe.stride) * sampledPositions(buf.Height, fe.stride)
	if positions == 0 {
		return 0
	}
	opaqueFraction := float64(opaque) / float64(positions)
	n := float64(opaque)
	return validation.ClampUnit(opaqueFraction * (0.5 + 0.5*n/(n+fe.color.ConfidenceHalfSample)))
}

// PhotoStats measures mean luma and the opaque share on the sample grid
func (fe *featureExtractor) PhotoStats(buf *models.PixelBuffer) PhotoStats {
	if validation.ValidatePixelBuffer(buf) != nil {
		return PhotoStats{}
	}

	type lumaSums struct {
		opaque int
		luma   float64
	}
	var total lumaSums
	for _, part := range scanRows(fe.pool, buf.Width, buf.Height, fe.parallel, func(startY, endY int) lumaSums {
		var sums lumaSums
		fe.eachSample(buf, startY, endY, func(r, g, b uint8) {
			sums.opaque++
			sums.luma += colorspace.Luma(r, g, b)
		})
		return sums
	}) {
		total.opaque += part.opaque
		total.luma += part.luma
	}

	stats := PhotoStats{Width: buf.Width, Height: buf.Height}
	positions := sampledPositions(buf.Width, fe.stride) * sampledPositions(buf.Height, fe.stride)
	if total.opaque > 0 {
		stats.MeanLuma = total.luma / float64(total.opaque)
		stats.OpaqueFraction = float64(total.opaque) / float64(positions)
	}
	return stats
}

// eachSample calls fn for every opaque pixel on the stride grid in [startY, endY)
func (fe *featureExtractor) eachSample(buf *models.PixelBuffer, startY, endY int, fn func(r, g, b uint8)) {
	for y := firstSampledRow(startY, fe.stride); y < endY; y += fe.stride {
		row := y * buf.Width * 4
		for x := 0; x < buf.Width; x += fe.stride {
			i := row + x*4
			if buf.Pix[i+3] < fe.color.MinAlpha {
				continue
			}
			fn(buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2])
		}
	}
}

// sampledPositions is the number of grid positions along one axis
func sampledPositions(n, stride int) int {
	return (n + stride - 1) / stride
}

func anyNaN(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
