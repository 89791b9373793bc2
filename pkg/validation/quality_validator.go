package validation

// QualityThresholds defines configurable thresholds for photo quality checks
type QualityThresholds struct {
	MinWidth  int
	MinHeight int

	// Mean luma on a 0-255 scale
	MinBrightness float64
	MaxBrightness float64

	// Minimum share of opaque pixels; masked-out photos score poorly
	MinOpaqueFraction float64
}

// DefaultQualityThresholds returns the default quality thresholds
func DefaultQualityThresholds() QualityThresholds {
	return QualityThresholds{
		MinWidth:          64,
		MinHeight:         64,
		MinBrightness:     50,
		MaxBrightness:     225,
		MinOpaqueFraction: 0.25,
	}
}

// QualityValidator flags photos whose scores should be read with caution
type QualityValidator struct {
	thresholds QualityThresholds
}

// NewQualityValidator creates a new quality validator with default thresholds
func NewQualityValidator() *QualityValidator {
	return &QualityValidator{
		thresholds: DefaultQualityThresholds(),
	}
}

// NewQualityValidatorWithThresholds creates a quality validator with custom thresholds
func NewQualityValidatorWithThresholds(thresholds QualityThresholds) *QualityValidator {
	return &QualityValidator{
		thresholds: thresholds,
	}
}

// QualityIssue represents a quality validation issue
type QualityIssue struct {
	Type        string  `json:"type"`
	Message     string  `json:"message"`
	Severity    string  `json:"severity"` // "error", "warning"
	ActualValue float64 `json:"actual_value,omitempty"`
	Threshold   float64 `json:"threshold,omitempty"`
}

// PhotoMetrics are the measurements the quality checks need
type PhotoMetrics struct {
	Width          int
	Height         int
	MeanLuma       float64
	OpaqueFraction float64
}

// ValidatePhoto returns the quality issues of a facial photo
func (qv *QualityValidator) ValidatePhoto(metrics PhotoMetrics) []QualityIssue {
	var issues []QualityIssue

	if metrics.Width < qv.thresholds.MinWidth || metrics.Height < qv.thresholds.MinHeight {
		issues = append(issues, QualityIssue{
			Type:        "low_resolution",
			Message:     "Photo is too small for reliable skin analysis. Use a closer, sharper photo.",
			Severity:    "warning",
			ActualValue: float64(metrics.Width * metrics.Height),
			Threshold:   float64(qv.thresholds.MinWidth * qv.thresholds.MinHeight),
		})
	}

	if metrics.OpaqueFraction < qv.thresholds.MinOpaqueFraction {
		issues = append(issues, QualityIssue{
			Type:        "mostly_transparent",
			Message:     "Most of the photo is masked out. Scores cover only the visible skin.",
			Severity:    "warning",
			ActualValue: metrics.OpaqueFraction,
			Threshold:   qv.thresholds.MinOpaqueFraction,
		})
		// Brightness of a near-empty mask says nothing
		return issues
	}

	if metrics.MeanLuma < qv.thresholds.MinBrightness {
		issues = append(issues, QualityIssue{
			Type:        "too_dark",
			Message:     "Photo is too dark. Pigment and redness scores may be overstated.",
			Severity:    "warning",
			ActualValue: metrics.MeanLuma,
			Threshold:   qv.thresholds.MinBrightness,
		})
	} else if metrics.MeanLuma > qv.thresholds.MaxBrightness {
		issues = append(issues, QualityIssue{
			Type:        "too_bright",
			Message:     "Photo is overexposed. UV-indicative scores may be overstated.",
			Severity:    "warning",
			ActualValue: metrics.MeanLuma,
			Threshold:   qv.thresholds.MaxBrightness,
		})
	}

	return issues
}

// ConvertIssuesToMessages converts quality issues to plain messages
func (qv *QualityValidator) ConvertIssuesToMessages(issues []QualityIssue) []string {
	var messages []string
	for _, issue := range issues {
		messages = append(messages, issue.Message)
	}
	return messages
}

// HasCriticalIssues checks if there are any error severity issues
func (qv *QualityValidator) HasCriticalIssues(issues []QualityIssue) bool {
	for _, issue := range issues {
		if issue.Severity == "error" {
			return true
		}
	}
	return false
}
