package api

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-cyber-patrol/internal/filter"
	"github.com/mr1hm/go-cyber-patrol/internal/models"
)

const heartbeatInterval = 15 * time.Second

// streamRecords pushes newly ingested records matching the query as
// server-sent events until the client goes away.
func (h *Handler) streamRecords(c *gin.Context) {
	if h.broadcaster == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "stream not available"})
		return
	}
	q, err := parseListQuery(c, h.views)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Unscoped subscriptions need per-kind thresholds, so they filter here
	sub := q.set
	if !q.scoped {
		sub = filter.Identity()
	}
	id, ch := h.broadcaster.Subscribe(sub)
	defer h.broadcaster.Unsubscribe(id)
	if h.metrics != nil {
		h.metrics.SubscriberAdded()
		defer h.metrics.SubscriberRemoved()
	}

	slog.Info("client subscribed to record stream", "subscriber_id", id)

	thresholds := h.thresholdsFor(q)
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			slog.Info("client disconnected from record stream", "subscriber_id", id)
			return false
		case <-heartbeat.C:
			c.SSEvent("ping", h.now().UTC().Format(time.RFC3339))
			return true
		case r, ok := <-ch:
			if !ok {
				return false
			}
			if !q.scoped && len(h.match([]models.Record{r}, q)) == 0 {
				return true
			}
			c.SSEvent("record", toRecordViews([]models.Record{r}, thresholds)[0])
			return true
		}
	})
}
