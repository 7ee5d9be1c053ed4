package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/tagnet-backend/internal/logger"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/domain"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/service"
	"github.com/gin-gonic/gin"
)

// Handler serves the tag network endpoints.
type Handler struct {
	svc *service.GraphService
	log *logger.Logger
}

func New(svc *service.GraphService, log *logger.Logger) *Handler {
	return &Handler{svc: svc, log: logger.OrNop(log)}
}

// Register registers the tag network routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/tags", h.Tags)
	rg.GET("/total", h.Total)
	rg.GET("/graph", h.Graph)
	rg.GET("/monthly", h.Monthly)
}

// Tags returns the most used tags overall.
func (h *Handler) Tags(c *gin.Context) {
	limit, ok := intParam(c, "limit", service.DefaultTagLimit)
	if !ok {
		return
	}

	tags, err := h.svc.Tags(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, "tags", err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// Total returns the most used tags within startDate..endDate.
func (h *Handler) Total(c *gin.Context) {
	limit, ok := intParam(c, "limit", service.DefaultTagLimit)
	if !ok {
		return
	}
	w, ok := windowParams(c)
	if !ok {
		return
	}

	tags, err := h.svc.Totals(c.Request.Context(), w, limit)
	if err != nil {
		h.fail(c, "total", err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// Graph returns the co-occurrence graph, positioned when layout=true.
func (h *Handler) Graph(c *gin.Context) {
	limit, ok := intParam(c, "limit", service.DefaultGraphLimit)
	if !ok {
		return
	}
	w, ok := windowParams(c)
	if !ok {
		return
	}
	withLayout, ok := boolParam(c, "layout")
	if !ok {
		return
	}
	requireNonEmpty, ok := boolParam(c, "require_nonempty")
	if !ok {
		return
	}

	req := service.GraphRequest{Window: w, Limit: limit, RequireNonEmpty: requireNonEmpty}
	if withLayout {
		pg, err := h.svc.PositionedGraph(c.Request.Context(), req)
		if err != nil {
			h.fail(c, "graph", err)
			return
		}
		c.JSON(http.StatusOK, pg)
		return
	}

	g, err := h.svc.Graph(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "graph", err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// Monthly returns the monthly series for a comma separated tag list.
func (h *Handler) Monthly(c *gin.Context) {
	var tags []string
	for _, t := range strings.Split(c.Query("tags"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	records, err := h.svc.Monthly(c.Request.Context(), tags)
	if err != nil {
		h.fail(c, "monthly", err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrLayoutUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrQueryFailed):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrEmptyGraph):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAllRowsMalformed), errors.Is(err, domain.ErrMalformedRow):
		status = http.StatusUnprocessableEntity
	}

	h.log.For(c.Request.Context()).Error("request failed", "operation", op, "status", status, "error", err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func intParam(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return n, true
}

func boolParam(c *gin.Context, name string) (bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return false, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return false, false
	}
	return b, true
}

func windowParams(c *gin.Context) (domain.Window, bool) {
	w := domain.DefaultWindow()
	for _, p := range []struct {
		name string
		dst  *time.Time
	}{{"startDate", &w.Start}, {"endDate", &w.End}} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		t, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + p.name})
			return w, false
		}
		*p.dst = t
	}
	if w.End.Before(w.Start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endDate is before startDate"})
		return w, false
	}
	return w, true
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
