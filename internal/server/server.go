package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/agenthands/twohop/internal/core"
	"github.com/agenthands/twohop/internal/core/model"
	"github.com/agenthands/twohop/internal/core/scoring"
	"github.com/agenthands/twohop/internal/logging"
)

const defaultMaxRecommendations = 5

// Recommender is satisfied by *core.Engine.
type Recommender interface {
	CreateRecommendation(ctx context.Context, userID int64, text string, maxResults int) (*model.Result, error)
	StrategyName() string
}

type Server struct {
	Engine      Recommender
	Classifier  core.Classifier
	ModelLoaded bool
	Limiter     *rate.Limiter
}

func NewServer(app *App, rps float64, burst int) *Server {
	s := &Server{
		Engine:      app.Engine,
		Classifier:  app.Classifier,
		ModelLoaded: app.ModelLoaded,
	}
	if rps > 0 {
		s.Limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return s
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	r.GET("/healthz", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/ai", RateLimit(s.Limiter))
	api.POST("/recommend", s.Recommend)
	api.POST("/classify", s.Classify)

	return r
}

type RecommendRequest struct {
	UserID             int64  `json:"user_id" binding:"required"`
	RequestText        string `json:"request_text" binding:"required,max=1000"`
	MaxRecommendations *int   `json:"max_recommendations" binding:"omitempty,min=1,max=10"`
}

func (s *Server) Recommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "detail": err.Error()})
		return
	}

	maxResults := defaultMaxRecommendations
	if req.MaxRecommendations != nil {
		maxResults = *req.MaxRecommendations
	}

	res, err := s.Engine.CreateRecommendation(c.Request.Context(), req.UserID, req.RequestText, maxResults)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, core.ErrInvalidMaxResults):
			status = http.StatusBadRequest
		case errors.Is(err, scoring.ErrModelUnavailable):
			status = http.StatusServiceUnavailable
		}
		logging.Error().Err(err).Int64("user_id", req.UserID).Msg("recommendation failed")
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, res)
}

type ClassifyRequest struct {
	RequestText string `json:"request_text" binding:"required,max=1000"`
}

func (s *Server) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s.Classifier.Classify(c.Request.Context(), req.RequestText))
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"strategy":     s.Engine.StrategyName(),
		"model_loaded": s.ModelLoaded,
	})
}
