package validation

import (
	"math"

	"go-skin-inspector/internal/logger"

	"github.com/sirupsen/logrus"
)

// Clamp limits v to [lo, hi]. NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampPercent clamps v to [0, 100]
func ClampPercent(v float64) float64 {
	return Clamp(v, 0, 100)
}

// ClampUnit clamps v to [0, 1]
func ClampUnit(v float64) float64 {
	return Clamp(v, 0, 1)
}

// ClampInput clamps a domain input and logs a warning when it was out of range
func ClampInput(component, field string, v, lo, hi float64) float64 {
	clamped := Clamp(v, lo, hi)
	if clamped != v {
		logger.WithFields(logrus.Fields{
			"component": component,
			"field":     field,
			"value":     v,
			"clamped":   clamped,
		}).Warn("Input out of range, clamped")
	}
	return clamped
}

// ClampCount clamps a non-negative count and logs negatives
func ClampCount(component, field string, v int) int {
	if v < 0 {
		logger.WithFields(logrus.Fields{
			"component": component,
			"field":     field,
			"value":     v,
		}).Warn("Negative count clamped to zero")
		return 0
	}
	return v
}
