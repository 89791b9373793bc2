package models

// AnalysisRequest asks for the analysis of a remote photo.
// URLs on the blob storage host are downloaded with the configured account.
type AnalysisRequest struct {
	URL     string       `json:"url" binding:"required"`
	Profile *UserProfile `json:"profile,omitempty"`
}

// ErrorResponse is the body returned for failed requests
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Type    string `json:"type,omitempty"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Time    string `json:"time"`
}

// StatsResponse reports the analysis counters collected since start-up
type StatsResponse struct {
	TotalAnalyses      int64   `json:"total_analyses"`
	SuccessfulAnalyses int64   `json:"successful_analyses"`
	FailedAnalyses     int64   `json:"failed_analyses"`
	ImagesFetched      int64   `json:"images_fetched"`
	ImageFetchFailures int64   `json:"image_fetch_failures"`
	AvgProcessingMs    float64 `json:"avg_processing_ms"`
}
