package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-cyber-patrol/internal/config"
	"github.com/mr1hm/go-cyber-patrol/internal/filter"
	"github.com/mr1hm/go-cyber-patrol/internal/metrics"
	"github.com/mr1hm/go-cyber-patrol/internal/models"
	"github.com/mr1hm/go-cyber-patrol/internal/report"
	"github.com/mr1hm/go-cyber-patrol/internal/repository"
	"github.com/mr1hm/go-cyber-patrol/internal/risk"
	"github.com/mr1hm/go-cyber-patrol/internal/statsclient"
	"github.com/mr1hm/go-cyber-patrol/internal/stream"
	"github.com/mr1hm/go-cyber-patrol/internal/summary"
)

type Handler struct {
	repo        repository.RecordRepository
	broadcaster *stream.Broadcaster
	stats       *statsclient.Client
	views       config.Views
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewHandler wires the HTTP surface. broadcaster, stats and m may be nil;
// the routes that need them are then unavailable.
func NewHandler(repo repository.RecordRepository, broadcaster *stream.Broadcaster, stats *statsclient.Client, views config.Views, m *metrics.Metrics) *Handler {
	return &Handler{
		repo:        repo,
		broadcaster: broadcaster,
		stats:       stats,
		views:       views,
		metrics:     m,
		now:         time.Now,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)
	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	r.GET("/api/records", h.getRecords)
	r.GET("/api/records/:id", h.getRecord)
	r.GET("/api/records/:id/report", h.getReport)
	r.GET("/api/summary", h.getSummary)
	r.GET("/api/dashboard", h.getDashboard)
	r.GET("/api/stream", h.streamRecords)

	r.GET(statsclient.StatsPath, h.dashboardStats)
	r.GET(statsclient.CategoryBreakdownPath, h.categoryBreakdown)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) getRecords(c *gin.Context) {
	q, err := parseListQuery(c, h.views)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := h.repo.ListRecords(c.Request.Context(), q.repoFilter())
	if err != nil {
		slog.Error("failed to list records", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch records"})
		return
	}

	matched := h.match(records, q)
	if h.metrics != nil {
		h.metrics.ObserveFilter(string(q.set.Kind), len(matched))
	}

	c.JSON(http.StatusOK, listResponse{
		Records: toRecordViews(paginate(matched, q.limit, q.offset), h.thresholdsFor(q)),
		Count:   len(matched),
		Total:   len(records),
	})
}

func (h *Handler) match(records []models.Record, q listQuery) []models.Record {
	if q.scoped {
		return filter.Apply(records, q.set, h.now())
	}
	return filter.ApplyPerKind(records, q.set, h.now(), h.views.ThresholdsFor)
}

func (h *Handler) thresholdsFor(q listQuery) func(models.Kind) risk.Thresholds {
	if q.scoped {
		return func(models.Kind) risk.Thresholds { return q.set.Thresholds }
	}
	return h.views.ThresholdsFor
}

func (h *Handler) lookup(c *gin.Context) (*models.Record, bool) {
	id := c.Param("id")
	r, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("record not found: %s", id)})
		return nil, false
	}
	if err != nil {
		slog.Error("failed to get record", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch record"})
		return nil, false
	}
	return r, true
}

func (h *Handler) getRecord(c *gin.Context) {
	r, ok := h.lookup(c)
	if !ok {
		return
	}
	views := toRecordViews([]models.Record{*r}, h.views.ThresholdsFor)
	c.JSON(http.StatusOK, views[0])
}

func (h *Handler) getReport(c *gin.Context) {
	format := c.DefaultQuery("format", report.FormatJSON)
	if format != report.FormatJSON && format != report.FormatPDF {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown report format: %q", format)})
		return
	}

	r, ok := h.lookup(c)
	if !ok {
		return
	}
	rep := report.New(*r, h.views.ThresholdsFor(r.Kind), h.now())

	var (
		body        []byte
		contentType string
		err         error
	)
	switch format {
	case report.FormatPDF:
		buf, genErr := report.GeneratePDF(rep)
		if buf != nil {
			body = buf.Bytes()
		}
		contentType, err = "application/pdf", genErr
	default:
		body, err = report.GenerateJSON(rep)
		contentType = "application/json"
	}
	if err != nil {
		slog.Error("failed to generate report", "id", r.ID, "format", format, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate report"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=report-%s.%s", r.ID, format))
	c.Data(http.StatusOK, contentType, body)
}

type summaryResponse struct {
	Total      int                     `json:"total"`
	ByCategory []summary.CategoryCount `json:"by_category"`
	ByStatus   map[string]int          `json:"by_status"`
	BySeverity map[models.Severity]int `json:"by_severity"`
}

func (h *Handler) getSummary(c *gin.Context) {
	set, scoped, err := parseScope(c, h.views)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := h.repo.ListRecords(c.Request.Context(), listQuery{set: set}.repoFilter())
	if err != nil {
		slog.Error("failed to list records", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch records"})
		return
	}

	resp := summaryResponse{
		Total:      len(records),
		ByCategory: summary.ByCategory(records),
		ByStatus:   summary.ByStatus(records),
	}
	if scoped {
		resp.BySeverity = summary.BySeverity(records, set.Thresholds)
	} else {
		resp.BySeverity = summary.BySeverityPerKind(records, h.views.ThresholdsFor)
	}
	c.JSON(http.StatusOK, resp)
}

// dashboardStats serves the stats contract computed from the local snapshot.
func (h *Handler) dashboardStats(c *gin.Context) {
	records, err := h.repo.ListRecords(c.Request.Context(), repository.Filter{})
	if err != nil {
		slog.Error("failed to list records", "error", err)
		c.JSON(http.StatusInternalServerError, models.StatsResponse{Status: "error", Message: "failed to fetch records"})
		return
	}

	overview := summary.Overview(records, h.views.ThresholdsFor)
	c.JSON(http.StatusOK, models.StatsResponse{
		Status: "success",
		Data:   &models.StatsData{Overview: &overview},
	})
}

func (h *Handler) categoryBreakdown(c *gin.Context) {
	records, err := h.repo.ListRecords(c.Request.Context(), repository.Filter{})
	if err != nil {
		slog.Error("failed to list records", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch records"})
		return
	}
	c.JSON(http.StatusOK, summary.Breakdown(records))
}

// getDashboard loads both remote resources for this request. A client
// disconnect cancels the in-flight fetches.
func (h *Handler) getDashboard(c *gin.Context) {
	if h.stats == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "stats backend not configured"})
		return
	}
	c.JSON(http.StatusOK, h.stats.LoadDashboard(c.Request.Context()))
}
