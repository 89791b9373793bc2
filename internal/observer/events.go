package observer

import (
	"context"
	"time"
)

// EventType represents the type of analysis event
type EventType string

const (
	// AnalysisStarted when a request enters the analysis service
	AnalysisStarted EventType = "analysis_started"
	// AnalysisCompleted when a skin report was produced
	AnalysisCompleted EventType = "analysis_completed"
	// AnalysisFailed when fetching, decoding or scoring failed
	AnalysisFailed EventType = "analysis_failed"
	// ImageFetched when a photo was downloaded and decoded
	ImageFetched EventType = "image_fetched"
	// ImageFetchFailed when a photo could not be downloaded or decoded
	ImageFetchFailed EventType = "image_fetch_failed"
)

// Source names where the analysed photo came from
type Source string

const (
	SourceURL    Source = "url"
	SourceUpload Source = "upload"
)

// AnalysisEvent represents an analysis event
type AnalysisEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	RequestID      string                 `json:"request_id"`
	Source         Source                 `json:"source"`
	ImageURL       string                 `json:"image_url,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorType      string                 `json:"error_type,omitempty"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event AnalysisEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event AnalysisEvent)
}
