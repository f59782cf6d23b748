// Package handlers exposes the analysis engine over HTTP and WebSocket.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/leon-madara/ResonaAI-sub003/pkg/cache"
	"github.com/leon-madara/ResonaAI-sub003/pkg/engine"
	"github.com/leon-madara/ResonaAI-sub003/pkg/response"
	"github.com/leon-madara/ResonaAI-sub003/pkg/streaming"
)

// Handlers holds the service dependencies shared by all routes.
type Handlers struct {
	engine   *engine.Engine
	streams  *streaming.Processor
	results  cache.Cache
	registry *prometheus.Registry
	logger   *zap.Logger
}

// NewHandlers wires the route handlers.
func NewHandlers(eng *engine.Engine, streams *streaming.Processor, results cache.Cache, registry *prometheus.Registry, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		engine:   eng,
		streams:  streams,
		results:  results,
		registry: registry,
		logger:   logger,
	}
}

// RegisterRoutes mounts every route on the router.
func (h *Handlers) RegisterRoutes(r *gin.Engine, apiPrefix, monitorPrefix string) {
	api := r.Group(apiPrefix)
	{
		api.POST("/analyze", h.handleAnalyze)
		api.GET("/session/:session_id", h.handleGetSession)
		api.GET("/baseline/:user_id", h.handleGetBaseline)
		api.POST("/baseline/:user_id", h.handleUpdateBaseline)
		api.GET("/stream/:stream_id/stats", h.handleStreamStats)
		api.POST("/stream/:stream_id/reset", h.handleStreamReset)
	}
	r.GET("/ws/stream", h.handleStreamWS)
	r.GET("/healthz", h.handleHealthz)
	if h.registry != nil {
		r.GET(monitorPrefix, gin.WrapH(promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{})))
	}
}

func (h *Handlers) handleHealthz(c *gin.Context) {
	response.Success(c, "ok", gin.H{
		"status":       "healthy",
		"streaming":    h.streams != nil,
		"result_cache": h.results != nil,
		"metrics":      h.registry != nil,
		"components":   h.engine.ModelStatus(),
	})
}

func (h *Handlers) handleStreamStats(c *gin.Context) {
	stats, err := h.streams.GetStats(c.Param("stream_id"))
	if err != nil {
		response.Fail(c, http.StatusNotFound, "stream not found")
		return
	}
	response.Success(c, "", stats)
}

func (h *Handlers) handleStreamReset(c *gin.Context) {
	streamID := c.Param("stream_id")
	h.streams.Reset(streamID)
	h.engine.UnbindStream(streamID)
	response.Success(c, "stream reset", nil)
}
