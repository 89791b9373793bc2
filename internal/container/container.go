package container

import (
	"fmt"
	"net/http"

	"go-skin-inspector/internal/analyzer"
	"go-skin-inspector/internal/config"
	"go-skin-inspector/internal/logger"
	"go-skin-inspector/internal/observer"
	"go-skin-inspector/internal/repository"
	"go-skin-inspector/internal/service"
	"go-skin-inspector/internal/storage"
	"go-skin-inspector/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	skinAnalyzer    analyzer.SkinAnalyzer
	photoRepository repository.PhotoRepository
	metrics         *observer.MetricsObserver
	analysisService service.SkinAnalysisService
	handler         http.Handler
}

// NewContainer wires the dependency graph for cfg
func NewContainer(cfg *config.Config) (*Container, error) {
	skinAnalyzer, err := analyzer.NewSkinAnalyzer(cfg.AnalysisConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create skin analyzer: %w", err)
	}

	fetchOpts := storage.DefaultHTTPFetcherOptions()
	fetchOpts.Timeout = cfg.ImageFetchTimeout
	fetchOpts.MaxBytes = cfg.MaxRequestBodySize
	httpFetcher := storage.NewHTTPPhotoFetcher(fetchOpts)

	var blobFetcher storage.BlobFetcher
	if cfg.BlobStorageEnabled() {
		blobFetcher, err = storage.NewAzureBlobFetcher(cfg.AzureStorageAccount, cfg.AzureStorageKey, cfg.MaxRequestBodySize)
		if err != nil {
			skinAnalyzer.Close()
			return nil, fmt.Errorf("failed to create blob fetcher: %w", err)
		}
		logger.WithField("account", blobFetcher.Account()).Info("Blob storage source enabled")
	}

	photoRepository := repository.NewPhotoRepository(httpFetcher, blobFetcher, cfg.MaxImageDimension, cfg.MaxRequestBodySize)

	metrics := observer.NewMetricsObserver()
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	analysisService := service.NewSkinAnalysisService(photoRepository, skinAnalyzer, publisher, service.Timeouts{
		Fetch:    cfg.ImageFetchTimeout,
		Analysis: cfg.AnalysisTimeout,
	})
	handler := transport.NewHandler(analysisService, metrics, cfg)

	return &Container{
		config:          cfg,
		skinAnalyzer:    skinAnalyzer,
		photoRepository: photoRepository,
		metrics:         metrics,
		analysisService: analysisService,
		handler:         handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the analysis service
func (c *Container) Service() service.SkinAnalysisService {
	return c.analysisService
}

// Metrics returns the event counters behind GET /stats
func (c *Container) Metrics() *observer.MetricsObserver {
	return c.metrics
}

// Close stops the analyzer workers
func (c *Container) Close() error {
	return c.skinAnalyzer.Close()
}
