package observer

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type panickingObserver struct{}

func (panickingObserver) OnEvent(ctx context.Context, event AnalysisEvent) { panic("boom") }
func (panickingObserver) GetObserverName() string                          { return "panicking" }

func TestMetricsObserver_Counts(t *testing.T) {
	metrics := NewMetricsObserver()
	publisher := NewEventPublisher()
	publisher.Subscribe(metrics)

	ctx := context.Background()
	events := []AnalysisEvent{
		{EventType: AnalysisStarted},
		{EventType: ImageFetched},
		{EventType: AnalysisCompleted, ProcessingTime: 100 * time.Millisecond},
		{EventType: AnalysisStarted},
		{EventType: ImageFetchFailed},
		{EventType: AnalysisFailed},
		{EventType: AnalysisStarted},
		{EventType: AnalysisCompleted, ProcessingTime: 300 * time.Millisecond},
	}
	for _, e := range events {
		publisher.NotifyObservers(ctx, e)
	}

	stats := metrics.GetMetrics()
	if stats.TotalAnalyses != 3 {
		t.Errorf("Expected 3 analyses, got %d", stats.TotalAnalyses)
	}
	if stats.SuccessfulAnalyses != 2 || stats.FailedAnalyses != 1 {
		t.Errorf("Expected 2 successes and 1 failure, got %d/%d", stats.SuccessfulAnalyses, stats.FailedAnalyses)
	}
	if stats.ImagesFetched != 1 || stats.ImageFetchFailures != 1 {
		t.Errorf("Expected 1 fetch and 1 fetch failure, got %d/%d", stats.ImagesFetched, stats.ImageFetchFailures)
	}
	if stats.AvgProcessingMs != 200 {
		t.Errorf("Expected avg 200ms, got %v", stats.AvgProcessingMs)
	}
}

func TestEventPublisher_SurvivesPanickingObserver(t *testing.T) {
	metrics := NewMetricsObserver()
	publisher := NewEventPublisher()
	publisher.Subscribe(panickingObserver{})
	publisher.Subscribe(metrics)

	publisher.NotifyObservers(context.Background(), AnalysisEvent{EventType: AnalysisStarted})

	if got := metrics.GetMetrics().TotalAnalyses; got != 1 {
		t.Errorf("Expected later observers to still run, got %d", got)
	}
}

func TestEventPublisher_Unsubscribe(t *testing.T) {
	metrics := NewMetricsObserver()
	publisher := NewEventPublisher()
	publisher.Subscribe(metrics)
	publisher.Unsubscribe(metrics)

	publisher.NotifyObservers(context.Background(), AnalysisEvent{EventType: AnalysisStarted})

	if got := metrics.GetMetrics().TotalAnalyses; got != 0 {
		t.Errorf("Expected no events after unsubscribe, got %d", got)
	}
}

func TestLoggingObserver_Fields(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	NewLoggingObserver(log).OnEvent(context.Background(), AnalysisEvent{
		EventType:    AnalysisFailed,
		RequestID:    "req-1",
		Source:       SourceURL,
		ImageURL:     "https://cdn.example.com/face.png",
		ErrorType:    "network",
		ErrorMessage: "failed to fetch photo",
		Metadata:     map[string]interface{}{"analyzer": "uv_predictor"},
	})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["level"] != "error" {
		t.Errorf("Expected error level, got %v", entry["level"])
	}
	if entry["request_id"] != "req-1" || entry["error_type"] != "network" || entry["analyzer"] != "uv_predictor" {
		t.Errorf("Missing fields in %v", entry)
	}
}
