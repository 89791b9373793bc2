package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go-skin-inspector/internal/config"
	apperrors "go-skin-inspector/internal/errors"
	"go-skin-inspector/internal/logger"
	"go-skin-inspector/internal/service"
	"go-skin-inspector/pkg/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

const (
	uploadField  = "image"
	profileField = "profile"
)

// StatsProvider exposes the analysis counters
type StatsProvider interface {
	GetMetrics() models.StatsResponse
}

func NewHandler(svc service.SkinAnalysisService, stats StatsProvider, cfg *config.Config) http.Handler {
	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxRequestBodySize

	// Add middleware
	r.Use(
		cors.New(corsConfig(cfg.CORSAllowedOrigins)),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	r.GET("/stats", getStats(stats))
	r.POST("/analyze", analyzeURL(svc, cfg))
	r.POST("/analyze/upload", analyzeUpload(svc, cfg))

	return r
}

func corsConfig(origins []string) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "User-Agent"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			corsCfg.AllowAllOrigins = true
			return corsCfg
		}
	}
	corsCfg.AllowOrigins = origins
	return corsCfg
}

func analyzeURL(svc service.SkinAnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logRequest(c).Info("Processing skin analysis request")

		var req models.AnalysisRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(bindError("invalid request format", err))
			return
		}
		req.URL = strings.TrimSpace(req.URL)

		report, err := svc.AnalyzeURL(ctx, req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		logCompletion(c, report, startTime).WithField("url", req.URL).Info("Skin analysis request completed")
		c.JSON(http.StatusOK, report)
	}
}

func analyzeUpload(svc service.SkinAnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logRequest(c).Info("Processing skin analysis upload")

		fileHeader, err := c.FormFile(uploadField)
		if err != nil {
			_ = c.Error(bindError("multipart field \"image\" is required", err))
			return
		}

		var profile *models.UserProfile
		if raw := strings.TrimSpace(c.PostForm(profileField)); raw != "" {
			profile = &models.UserProfile{}
			if err := json.Unmarshal([]byte(raw), profile); err != nil {
				_ = c.Error(apperrors.NewValidationError("profile must be a JSON object", err))
				return
			}
		}

		file, err := fileHeader.Open()
		if err != nil {
			_ = c.Error(apperrors.NewValidationError("failed to open upload", err))
			return
		}
		defer file.Close()

		report, err := svc.AnalyzeUpload(ctx, file, profile)
		if err != nil {
			_ = c.Error(err)
			return
		}

		logCompletion(c, report, startTime).WithField("upload_bytes", fileHeader.Size).Info("Skin analysis upload completed")
		c.JSON(http.StatusOK, report)
	}
}

func getStats(stats StatsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, stats.GetMetrics())
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:  "available",
		Version: Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

func logRequest(c *gin.Context) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"user_agent": c.Request.UserAgent(),
		"ip":         c.ClientIP(),
	})
}

func logCompletion(c *gin.Context, report *models.SkinReport, startTime time.Time) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"path":               c.Request.URL.Path,
		"report_id":          report.ID,
		"processing_time_ms": time.Since(startTime).Milliseconds(),
		"overall_score":      report.OverallScore,
		"red":                report.Red.Score,
		"brown":              report.Brown.Score,
		"uv":                 report.UV.Score,
		"porphyrins":         report.Porphyrins.Score,
	})
}

// bindError reports oversized bodies distinctly from malformed ones
func bindError(message string, err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return apperrors.NewValidationError("request body too large", err)
	}
	return apperrors.NewValidationError(message, err)
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last().Err
			respondError(c, determineStatusCode(err), err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, err error) {
	fields := logrus.Fields{
		"status_code": code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}
	if name, ok := apperrors.FailedAnalyzer(err); ok {
		fields["analyzer"] = name
	}
	logger.WithError(err).WithFields(fields).Error("Request failed")

	body := models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: "request processing failed",
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		body.Message = appErr.Message
		body.Type = string(appErr.Type)
	}
	c.AbortWithStatusJSON(code, body)
}
