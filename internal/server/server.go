// Package server is the HTTP translation boundary over the analysis core:
// it decodes requests, runs the pipeline, and wraps results in response
// envelopes. No analysis logic lives here.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/argus/internal/cache"
	"github.com/ppiankov/argus/internal/model"
	"github.com/ppiankov/argus/internal/pipeline"
	"github.com/ppiankov/argus/internal/score"
)

// Engine is the slice of the pipeline the serving layer consumes
type Engine interface {
	Analyze(ctx context.Context, req pipeline.Request) (*model.ArgumentGraph, error)
	RunDialectic(ctx context.Context, inputText string, rounds int, persona model.Persona) (*model.DialecticSession, error)
}

// Server serves the analysis API
type Server struct {
	engine   Engine
	store    cache.Cache
	storeTTL time.Duration
	logger   *zap.Logger
	router   *gin.Engine
}

// New creates a server over the given engine. Completed analyses are kept in
// the store for later retrieval by ID.
func New(engine Engine, store cache.Cache, storeTTL time.Duration, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine:   engine,
		store:    store,
		storeTTL: storeTTL,
		logger:   logger,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", s.handleHealth)
	router.POST("/analyze", s.handleAnalyze)
	router.POST("/dialectic", s.handleDialectic)
	router.POST("/quick-score", s.handleQuickScore)
	router.GET("/analysis/:id", s.handleGetAnalysis)
	router.GET("/personas", s.handlePersonas)
	router.GET("/stances", s.handleStances)

	s.router = router
	return s
}

// Handler returns the HTTP handler, for tests and custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the listener fails
func (s *Server) Run(addr string) error {
	s.logger.Info("serving analysis API", zap.String("addr", addr))
	return s.router.Run(addr)
}

type analyzeRequest struct {
	Text            string `json:"text" binding:"required"`
	Stance          string `json:"stance"`
	Persona         string `json:"persona"`
	DetectFallacies *bool  `json:"detect_fallacies"`
}

type dialecticRequest struct {
	Text    string `json:"text" binding:"required"`
	Rounds  int    `json:"rounds"`
	Persona string `json:"persona"`
}

type analyzeResponse struct {
	AnalysisID      string               `json:"analysis_id"`
	Timestamp       time.Time            `json:"timestamp"`
	ExecutionTimeMS int64                `json:"execution_time_ms"`
	Graph           *model.ArgumentGraph `json:"graph"`
}

type dialecticResponse struct {
	AnalysisID      string                  `json:"analysis_id"`
	Timestamp       time.Time               `json:"timestamp"`
	ExecutionTimeMS int64                   `json:"execution_time_ms"`
	Session         *model.DialecticSession `json:"session"`
}

type quickScoreResponse struct {
	AnalysisID      string    `json:"analysis_id"`
	Timestamp       time.Time `json:"timestamp"`
	ExecutionTimeMS int64     `json:"execution_time_ms"`
	Score           float64   `json:"score"`
	Summary         string    `json:"summary"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "argus"})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	detect := true
	if req.DetectFallacies != nil {
		detect = *req.DetectFallacies
	}

	start := time.Now()
	graph, err := s.engine.Analyze(c.Request.Context(), pipeline.Request{
		Input:           req.Text,
		Stance:          model.Stance(req.Stance),
		Persona:         model.Persona(req.Persona),
		DetectFallacies: detect,
	})
	if err != nil {
		s.writeAnalysisError(c, err)
		return
	}

	resp := analyzeResponse{
		AnalysisID:      uuid.NewString(),
		Timestamp:       time.Now().UTC(),
		ExecutionTimeMS: time.Since(start).Milliseconds(),
		Graph:           graph,
	}
	s.remember(resp.AnalysisID, resp)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDialectic(c *gin.Context) {
	var req dialecticRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Rounds == 0 {
		req.Rounds = 3
	}
	if req.Rounds < 1 || req.Rounds > 10 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rounds must be between 1 and 10"})
		return
	}

	start := time.Now()
	session, err := s.engine.RunDialectic(c.Request.Context(), req.Text, req.Rounds, model.Persona(req.Persona))
	if err != nil {
		s.writeAnalysisError(c, err)
		return
	}

	resp := dialecticResponse{
		AnalysisID:      uuid.NewString(),
		Timestamp:       time.Now().UTC(),
		ExecutionTimeMS: time.Since(start).Milliseconds(),
		Session:         session,
	}
	s.remember(resp.AnalysisID, resp)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleQuickScore(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	graph, err := s.engine.Analyze(c.Request.Context(), pipeline.Request{
		Input:           req.Text,
		Stance:          model.StanceAttack,
		Persona:         model.Persona(req.Persona),
		DetectFallacies: true,
	})
	if err != nil {
		s.writeAnalysisError(c, err)
		return
	}

	var robustness float64
	if graph.RobustnessScore != nil {
		robustness = *graph.RobustnessScore
	}
	c.JSON(http.StatusOK, quickScoreResponse{
		AnalysisID:      uuid.NewString(),
		Timestamp:       time.Now().UTC(),
		ExecutionTimeMS: time.Since(start).Milliseconds(),
		Score:           robustness,
		Summary:         score.Summary(robustness),
	})
}

func (s *Server) handleGetAnalysis(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "analysis storage disabled"})
		return
	}
	data, ok := s.store.Get(analysisKey(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

func (s *Server) handlePersonas(c *gin.Context) {
	out := make([]gin.H, 0, len(model.Personas()))
	for _, p := range model.Personas() {
		out = append(out, gin.H{"name": p, "description": model.PersonaDescriptions[p]})
	}
	c.JSON(http.StatusOK, gin.H{"personas": out})
}

func (s *Server) handleStances(c *gin.Context) {
	out := make([]gin.H, 0, len(model.Stances()))
	for _, st := range model.Stances() {
		out = append(out, gin.H{"name": st, "description": model.StanceDescriptions[st]})
	}
	c.JSON(http.StatusOK, gin.H{"stances": out})
}

// writeAnalysisError maps pipeline errors onto status codes: bad parameters
// are the client's fault, a failed decomposition means the upstream reasoning
// service let us down.
func (s *Server) writeAnalysisError(c *gin.Context, err error) {
	var dErr *pipeline.DecompositionError
	if errors.As(err, &dErr) {
		s.logger.Warn("analysis failed upstream", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// remember stores a response envelope for later retrieval by ID
func (s *Server) remember(id string, resp any) {
	if s.store == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	_ = s.store.Set(analysisKey(id), data, s.storeTTL)
}

func analysisKey(id string) string {
	return "argus:analysis:" + id
}
