package colorspace

import (
	"math"
	"testing"
)

func TestToHSV(t *testing.T) {
	testCases := []struct {
		name    string
		r, g, b uint8
		want    HSV
	}{
		{"Black", 0, 0, 0, HSV{0, 0, 0}},
		{"White", 255, 255, 255, HSV{0, 0, 1}},
		{"Pure Red", 255, 0, 0, HSV{0, 1, 1}},
		{"Pure Green", 0, 255, 0, HSV{120, 1, 1}},
		{"Pure Blue", 0, 0, 255, HSV{240, 1, 1}},
		{"Muted Red", 200, 80, 80, HSV{0, 0.6, 200.0 / 255.0}},
		{"Mid Gray", 128, 128, 128, HSV{0, 0, 128.0 / 255.0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ToHSV(tc.r, tc.g, tc.b)
			if math.Abs(got.H-tc.want.H) > 0.5 {
				t.Errorf("Expected hue %f, got %f", tc.want.H, got.H)
			}
			if math.Abs(got.S-tc.want.S) > 0.01 {
				t.Errorf("Expected saturation %f, got %f", tc.want.S, got.S)
			}
			if math.Abs(got.V-tc.want.V) > 0.01 {
				t.Errorf("Expected value %f, got %f", tc.want.V, got.V)
			}
		})
	}
}

func TestToLAB(t *testing.T) {
	testCases := []struct {
		name    string
		r, g, b uint8
		want    LAB
		tol     float64
	}{
		{"Black", 0, 0, 0, LAB{0, 0, 0}, 0.5},
		{"White", 255, 255, 255, LAB{100, 0, 0}, 0.5},
		{"Pure Red", 255, 0, 0, LAB{53.24, 80.09, 67.20}, 1.0},
		{"Muted Red", 200, 80, 80, LAB{50.2, 47.9, 24.8}, 2.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ToLAB(tc.r, tc.g, tc.b)
			if math.Abs(got.L-tc.want.L) > tc.tol {
				t.Errorf("Expected L %f, got %f", tc.want.L, got.L)
			}
			if math.Abs(got.A-tc.want.A) > tc.tol {
				t.Errorf("Expected a %f, got %f", tc.want.A, got.A)
			}
			if math.Abs(got.B-tc.want.B) > tc.tol {
				t.Errorf("Expected b %f, got %f", tc.want.B, got.B)
			}
		})
	}
}

func TestToLAB_NeutralHasNoChroma(t *testing.T) {
	for v := 0; v <= 255; v += 15 {
		lab := ToLAB(uint8(v), uint8(v), uint8(v))
		if math.Abs(lab.A) > 0.5 || math.Abs(lab.B) > 0.5 {
			t.Errorf("Gray %d: expected near-zero chroma, got a=%f b=%f", v, lab.A, lab.B)
		}
		if lab.L < 0 || lab.L > 100.5 {
			t.Errorf("Gray %d: L out of range: %f", v, lab.L)
		}
	}
}

func TestConvert_MatchesIndividualConversions(t *testing.T) {
	hsv, lab := Convert(139, 90, 60)
	if hsv != ToHSV(139, 90, 60) {
		t.Errorf("HSV mismatch: %+v vs %+v", hsv, ToHSV(139, 90, 60))
	}
	if lab != ToLAB(139, 90, 60) {
		t.Errorf("LAB mismatch: %+v vs %+v", lab, ToLAB(139, 90, 60))
	}
}

func TestLuma(t *testing.T) {
	if got := Luma(255, 255, 255); math.Abs(got-255) > 0.01 {
		t.Errorf("Expected 255, got %f", got)
	}
	if got := Luma(0, 0, 0); got != 0 {
		t.Errorf("Expected 0, got %f", got)
	}
}

func TestToLAB_LightnessPinnedAtExtremes(t *testing.T) {
	if lab := ToLAB(0, 0, 0); lab.L != 0 {
		t.Errorf("Expected black L=0, got %v", lab.L)
	}
	if lab := ToLAB(255, 255, 255); lab.L < 99.5 || lab.L > 100 {
		t.Errorf("Expected white L near 100, got %v", lab.L)
	}
	if _, lab := Convert(0, 0, 0); lab.L != 0 {
		t.Errorf("Expected Convert black L=0, got %v", lab.L)
	}
}
