// Package server exposes stored signals and pipeline health over HTTP.
package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"finsignals/internal/dedupe"
	"finsignals/internal/metrics"
	"finsignals/internal/signal"
	"finsignals/internal/storage"
)

type Server struct {
	store   *storage.Store
	metrics *metrics.Metrics
}

func New(store *storage.Store, m *metrics.Metrics) *Server {
	return &Server{store: store, metrics: m}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", s.health)
	router.GET("/metrics", s.stats)

	api := router.Group("/api")
	api.GET("/signals", s.signals)
	api.GET("/topics", s.topics)
	api.GET("/stats", s.dbStats)

	return router
}

func (s *Server) health(c *gin.Context) {
	if !s.metrics.Healthy() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) stats(c *gin.Context) {
	c.JSON(http.StatusOK, s.metrics.Stats())
}

func (s *Server) signals(c *gin.Context) {
	q := storage.Query{
		Sector:        c.Query("sector"),
		Label:         c.Query("label"),
		Ticker:        c.Query("ticker"),
		MinImpact:     parseInt(c.Query("min_impact"), 0),
		MinConfidence: parseInt(c.Query("min_confidence"), 0),
		Limit:         parseInt(c.Query("limit"), 20),
	}

	items, err := s.store.FetchSignals(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch failed"})
		return
	}
	if items == nil {
		items = []signal.Signal{}
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(items),
		"items": items,
	})
}

// topics clusters recent signals by headline topic so the dashboard can
// show related coverage together.
func (s *Server) topics(c *gin.Context) {
	items, err := s.store.FetchSignals(c.Request.Context(), storage.Query{
		Limit: parseInt(c.Query("limit"), 100),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch failed"})
		return
	}
	groups := dedupe.GroupByTopic(items)
	c.JSON(http.StatusOK, gin.H{
		"topics": len(groups),
		"groups": groups,
	})
}

func (s *Server) dbStats(c *gin.Context) {
	stats, err := s.store.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
