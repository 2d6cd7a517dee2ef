// Package predictserver is a development stand-in for the leaf prediction
// service. It speaks the same HTTP contract as the production backend.
package predictserver

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"github.com/soocke/leaf-health-go/assets"
)

const (
	// MaxUploadSize caps the multipart body.
	MaxUploadSize = 10 << 20
	// FieldName is the multipart field carrying the image.
	FieldName = "file"
	// TopK is the number of ranked alternatives returned.
	TopK = 5
	// RequestIDHeader echoes the per-request trace ID.
	RequestIDHeader = "X-Request-ID"
)

type topKEntry struct {
	ClassName  string  `json:"className"`
	Confidence float64 `json:"confidence"`
}

type predictResponse struct {
	ClassName       string      `json:"className"`
	Confidence      float64     `json:"confidence"`
	Index           int         `json:"index"`
	TopK            []topKEntry `json:"topK"`
	IsHealthy       *bool       `json:"isHealthy,omitempty"`
	Recommendations []string    `json:"recommendations,omitempty"`
}

// Server holds the handler dependencies.
type Server struct {
	classifier Classifier
	labels     assets.LabelSet
	logger     *slog.Logger
	healthy    map[int]bool
}

// New constructs a server. Labels containing "healthy" or "normal" mark the
// healthy classes; without any, responses omit isHealthy.
func New(classifier Classifier, labels assets.LabelSet, logger *slog.Logger) *Server {
	s := &Server{classifier: classifier, labels: labels, logger: logger}
	for _, key := range []string{"healthy", "normal"} {
		for i, l := range labels.Labels {
			if strings.Contains(strings.ToLower(l), key) {
				if s.healthy == nil {
					s.healthy = map[int]bool{}
				}
				s.healthy[i] = true
			}
		}
		if s.healthy != nil {
			break
		}
	}
	return s
}

// Router returns a gin engine with the routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestID())
	s.RegisterRoutes(router)
	return router
}

// RegisterRoutes wires the HTTP handlers to the Gin router.
func (s *Server) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.POST("/predict", s.predict)
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		start := time.Now()
		c.Next()
		if s.logger != nil {
			s.logger.Info("request",
				"request_id", id,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"status", c.Writer.Status(),
				"elapsed", time.Since(start),
			)
		}
	}
}

func (s *Server) predict(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize)
	file, err := c.FormFile(FieldName)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"detail": "file exceeds " + humanize.Bytes(MaxUploadSize)})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"detail": "file is required"})
		return
	}
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "unable to open file"})
		return
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to read file"})
		return
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"detail": "unsupported content type " + mt.String()})
		return
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Prediction failed: %v", err)})
		return
	}
	scores := s.classifier.Classify(img)
	if len(scores) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Prediction failed: no labels configured"})
		return
	}
	c.JSON(http.StatusOK, s.response(scores))
}

func (s *Server) response(scores []Score) predictResponse {
	best := scores[0]
	resp := predictResponse{
		ClassName:  best.Label,
		Confidence: math.Round(best.Confidence*1e4) / 1e4,
		Index:      best.Index,
	}
	for i, sc := range scores {
		if i == TopK {
			break
		}
		resp.TopK = append(resp.TopK, topKEntry{ClassName: sc.Label, Confidence: sc.Confidence})
	}
	if s.healthy != nil {
		h := s.healthy[best.Index]
		resp.IsHealthy = &h
	}
	resp.Recommendations = s.labels.Recommendations[best.Label]
	return resp
}
