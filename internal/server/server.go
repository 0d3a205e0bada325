// Package server exposes the ingestion pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/anatolykoptev/go_clip/internal/engine"
	"github.com/anatolykoptev/go_clip/internal/store"
)

// ItemStore is what the HTTP surface needs from persistence: the pipeline's
// partial-update contract plus listing.
type ItemStore interface {
	engine.Store
	List(ctx context.Context, limit int) ([]*engine.VideoItem, error)
}

// Server holds the HTTP handlers.
type Server struct {
	store ItemStore
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(s ItemStore) *gin.Engine {
	srv := &Server{store: s}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", srv.health)
	r.GET("/metrics", srv.metrics)
	r.POST("/items", srv.createItem)
	r.GET("/items", srv.listItems)
	r.GET("/items/:id", srv.getItem)
	r.POST("/items/:id/process", srv.processItem)

	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) metrics(c *gin.Context) {
	c.String(http.StatusOK, engine.FormatMetrics())
}

type createItemRequest struct {
	URL string `json:"url" binding:"required"`
}

// createItem registers a URL as a new pending item. Platform detection runs
// at ingest so clients see it before processing starts.
func (s *Server) createItem(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	item := &engine.VideoItem{
		ID:       uuid.NewString(),
		URL:      req.URL,
		Platform: engine.DetectPlatform(req.URL),
		Status:   engine.StatusPending,
	}
	if err := s.store.Create(c.Request.Context(), item); err != nil {
		slog.Error("create item failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create item"})
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (s *Server) getItem(c *gin.Context) {
	item, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	if err != nil {
		slog.Error("get item failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load item"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) listItems(c *gin.Context) {
	var q struct {
		Limit int `form:"limit"`
	}
	_ = c.ShouldBindQuery(&q)

	items, err := s.store.List(c.Request.Context(), q.Limit)
	if err != nil {
		slog.Error("list items failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list items"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

// processItem runs the pipeline synchronously and returns the item in its
// final state. The failure detail lives in the item record; the 502 only
// signals that this run did not complete.
func (s *Server) processItem(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if _, err := s.store.Get(ctx, id); errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}

	runErr := engine.ProcessItem(ctx, s.store, id)
	if runErr != nil {
		slog.Warn("processing failed", slog.String("item", id), slog.Any("error", runErr))
	}

	item, err := s.store.Get(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reload item"})
		return
	}
	if runErr != nil {
		c.JSON(http.StatusBadGateway, item)
		return
	}
	c.JSON(http.StatusOK, item)
}
