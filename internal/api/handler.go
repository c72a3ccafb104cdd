package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mr1hm/go-quake-scene/internal/filter"
	"github.com/mr1hm/go-quake-scene/internal/models"
	"github.com/mr1hm/go-quake-scene/internal/observability"
	"github.com/mr1hm/go-quake-scene/internal/scene"
	"github.com/mr1hm/go-quake-scene/internal/worker"
)

type EventReader interface {
	All() []*models.SeismicEvent
}

type SceneReader interface {
	Points() []models.RenderedPoint
	Active() filter.Range
}

type Submitter interface {
	TrySubmit(job worker.Job) error
}

type PageSource interface {
	Page() ([]byte, time.Time)
}

type Subscriber interface {
	Subscribe() (uint64, <-chan scene.Result)
	Unsubscribe(id uint64)
	Latest() (scene.Result, bool)
}

type Handler struct {
	events  EventReader
	scene   SceneReader
	queue   Submitter
	pages   PageSource
	streams Subscriber
	metrics *observability.Metrics
}

func NewHandler(events EventReader, sc SceneReader, queue Submitter, pages PageSource, streams Subscriber, metrics *observability.Metrics) *Handler {
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	return &Handler{
		events:  events,
		scene:   sc,
		queue:   queue,
		pages:   pages,
		streams: streams,
		metrics: metrics,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/scene", h.getScenePage)
	r.GET("/api/events", h.getEvents)
	r.GET("/api/scene", h.getScene)
	r.POST("/api/scene/rebuild", h.requestRebuild)
	r.GET("/api/scene/stream", h.streamScene)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) getEvents(c *gin.Context) {
	events := h.events.All()

	start, end := c.Query("start"), c.Query("end")
	if start != "" || end != "" {
		r := filter.Range{Start: start, End: end}
		if err := r.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filtered := make([]*models.SeismicEvent, 0, len(events))
		for _, ev := range events {
			if r.Passes(ev) {
				filtered = append(filtered, ev)
			}
		}
		events = filtered
	}

	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, toGeoJSON(events))
}

func (h *Handler) getScene(c *gin.Context) {
	points := h.scene.Points()
	resp := gin.H{
		"range":  h.scene.Active(),
		"live":   len(points),
		"points": points,
	}
	if last, ok := h.streams.Latest(); ok {
		resp["last_rebuild"] = last
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) requestRebuild(c *gin.Context) {
	var r filter.Range
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := r.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.queue.TrySubmit(scene.RebuildRequested{Range: r})
	switch {
	case errors.Is(err, worker.ErrQueueFull):
		h.metrics.RebuildsDropped.Inc()
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "a rebuild is already pending"})
		return
	case err != nil:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "rebuilds are not being accepted"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "range": r})
}

func (h *Handler) streamScene(c *gin.Context) {
	id, ch := h.streams.Subscribe()
	defer h.streams.Unsubscribe(id)

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case res, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("rebuild", res)
			return true
		}
	})
}

func (h *Handler) getScenePage(c *gin.Context) {
	page, drawnAt := h.pages.Page()
	if page == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scene not drawn yet"})
		return
	}
	c.Header("Last-Modified", drawnAt.UTC().Format(http.TimeFormat))
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
