package api

import (
	"context"
	"net/http"
	"time"

	"upwork-scraper/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// Scraper fetches one page of search results.
type Scraper interface {
	ParseListings(ctx context.Context, query string, page int) ([]*models.JobListing, error)
}

// Archive looks up previously scraped listings. It may be nil.
type Archive interface {
	GetListing(ctx context.Context, id string) (*models.JobListing, error)
}

type Handler struct {
	scraper Scraper
	archive Archive
}

func NewHandler(scraper Scraper, archive Archive) *Handler {
	return &Handler{scraper: scraper, archive: archive}
}

// NewRouter builds the gin engine with every API route registered.
func NewRouter(h *Handler, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(logger), gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic while handling request",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}))

	api := r.Group("/api")
	api.GET("/health", h.Health)
	api.GET("/jobs", h.Jobs)
	api.GET("/jobs/search", h.Search)
	api.GET("/archive/jobs/:id", h.ArchivedJob)

	return r
}

// NewServer wraps the router in an http.Server listening on port.
func NewServer(port string, router http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		c.Next()

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("request failed", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request rejected", fields...)
		default:
			logger.Info("request handled", fields...)
		}
	}
}
