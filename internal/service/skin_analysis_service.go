package service

import (
	"context"
	"errors"
	"io"
	"time"

	"go-skin-inspector/internal/analyzer"
	apperrors "go-skin-inspector/internal/errors"
	"go-skin-inspector/internal/observer"
	"go-skin-inspector/internal/repository"
	"go-skin-inspector/pkg/models"
	"go-skin-inspector/pkg/validation"

	"github.com/google/uuid"
)

// SkinAnalysisService turns a photo source plus profile into a skin report
type SkinAnalysisService interface {
	// AnalyzeURL fetches the photo at req.URL and analyses it
	AnalyzeURL(ctx context.Context, req models.AnalysisRequest) (*models.SkinReport, error)

	// AnalyzeUpload decodes an uploaded photo and analyses it
	AnalyzeUpload(ctx context.Context, photo io.Reader, profile *models.UserProfile) (*models.SkinReport, error)

	// ValidatePhotoURL checks a URL without fetching it
	ValidatePhotoURL(photoURL string) error
}

// Timeouts bound the two phases of a request
type Timeouts struct {
	Fetch    time.Duration
	Analysis time.Duration
}

type skinAnalysisService struct {
	photos   repository.PhotoRepository
	analyzer analyzer.SkinAnalyzer
	events   observer.Subject
	timeouts Timeouts
}

// NewSkinAnalysisService creates a new skin analysis service
func NewSkinAnalysisService(
	photos repository.PhotoRepository,
	skinAnalyzer analyzer.SkinAnalyzer,
	events observer.Subject,
	timeouts Timeouts,
) SkinAnalysisService {
	return &skinAnalysisService{
		photos:   photos,
		analyzer: skinAnalyzer,
		events:   events,
		timeouts: timeouts,
	}
}

// request carries per-call event context
type request struct {
	id       string
	source   observer.Source
	imageURL string
	start    time.Time
}

func (s *skinAnalysisService) AnalyzeURL(ctx context.Context, req models.AnalysisRequest) (*models.SkinReport, error) {
	r := s.begin(ctx, observer.SourceURL, req.URL)

	// Reject a bad profile before spending a download on it
	if err := validation.ValidateProfile(req.Profile); err != nil {
		return nil, s.fail(ctx, r, err)
	}

	fetchCtx, cancel := withTimeout(ctx, s.timeouts.Fetch)
	photo, err := s.photos.FetchPhoto(fetchCtx, req.URL)
	cancel()
	if err != nil {
		s.publish(ctx, r, observer.ImageFetchFailed, err, nil)
		return nil, s.fail(ctx, r, err)
	}
	s.publish(ctx, r, observer.ImageFetched, nil, photoMetadata(photo))

	return s.analyze(ctx, r, photo, req.Profile)
}

func (s *skinAnalysisService) AnalyzeUpload(ctx context.Context, upload io.Reader, profile *models.UserProfile) (*models.SkinReport, error) {
	r := s.begin(ctx, observer.SourceUpload, "")

	if err := validation.ValidateProfile(profile); err != nil {
		return nil, s.fail(ctx, r, err)
	}

	photo, err := s.photos.DecodePhoto(upload)
	if err != nil {
		s.publish(ctx, r, observer.ImageFetchFailed, err, nil)
		return nil, s.fail(ctx, r, err)
	}
	s.publish(ctx, r, observer.ImageFetched, nil, photoMetadata(photo))

	return s.analyze(ctx, r, photo, profile)
}

func (s *skinAnalysisService) ValidatePhotoURL(photoURL string) error {
	return s.photos.ValidatePhotoURL(photoURL)
}

func (s *skinAnalysisService) analyze(ctx context.Context, r request, photo *repository.Photo, profile *models.UserProfile) (*models.SkinReport, error) {
	analysisCtx, cancel := withTimeout(ctx, s.timeouts.Analysis)
	defer cancel()

	report, err := s.analyzer.Analyze(analysisCtx, photo.Buffer, profile)
	if err != nil {
		return nil, s.fail(ctx, r, err)
	}

	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		Timestamp:      time.Now(),
		RequestID:      r.id,
		Source:         r.source,
		ImageURL:       r.imageURL,
		ProcessingTime: time.Since(r.start),
		Success:        true,
		Metadata: map[string]interface{}{
			"report_id":     report.ID,
			"overall_score": report.OverallScore,
			"warnings":      len(report.Warnings),
		},
	})
	return report, nil
}

func (s *skinAnalysisService) begin(ctx context.Context, source observer.Source, imageURL string) request {
	r := request{
		id:       uuid.NewString(),
		source:   source,
		imageURL: imageURL,
		start:    time.Now(),
	}
	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType: observer.AnalysisStarted,
		Timestamp: r.start,
		RequestID: r.id,
		Source:    source,
		ImageURL:  imageURL,
		Success:   true,
	})
	return r
}

// fail publishes AnalysisFailed and normalises err to an AppError
func (s *skinAnalysisService) fail(ctx context.Context, r request, err error) error {
	err = asAppError(err)

	var metadata map[string]interface{}
	if name, ok := apperrors.FailedAnalyzer(err); ok {
		metadata = map[string]interface{}{"analyzer": name}
	}
	s.publish(ctx, r, observer.AnalysisFailed, err, metadata)
	return err
}

func (s *skinAnalysisService) publish(ctx context.Context, r request, eventType observer.EventType, err error, metadata map[string]interface{}) {
	event := observer.AnalysisEvent{
		EventType:      eventType,
		Timestamp:      time.Now(),
		RequestID:      r.id,
		Source:         r.source,
		ImageURL:       r.imageURL,
		ProcessingTime: time.Since(r.start),
		Success:        err == nil,
		Metadata:       metadata,
	}
	if err != nil {
		event.ErrorMessage = err.Error()
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			event.ErrorType = string(appErr.Type)
		}
	}
	s.events.NotifyObservers(ctx, event)
}

func asAppError(err error) error {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.NewTimeoutError("request cancelled", err)
	default:
		return apperrors.NewInternalError("analysis failed", err)
	}
}

func photoMetadata(photo *repository.Photo) map[string]interface{} {
	return map[string]interface{}{
		"format":        photo.Format,
		"source_width":  photo.SourceWidth,
		"source_height": photo.SourceHeight,
		"downscaled":    photo.Downscaled,
		"blob_source":   photo.FromBlobSource,
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
