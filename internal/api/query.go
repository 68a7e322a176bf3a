package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-cyber-patrol/internal/config"
	"github.com/mr1hm/go-cyber-patrol/internal/filter"
	"github.com/mr1hm/go-cyber-patrol/internal/models"
	"github.com/mr1hm/go-cyber-patrol/internal/repository"
)

const maxLimit = 500

// listQuery is the view state of one request.
type listQuery struct {
	set filter.FilterSet
	// scoped is true when a kind or view pins the thresholds; otherwise each
	// record uses the thresholds of its own kind.
	scoped bool
	limit  int
	offset int
}

func (q listQuery) repoFilter() repository.Filter {
	var f repository.Filter
	if q.set.Kind != "" {
		kind := q.set.Kind
		f.Kind = &kind
	}
	return f
}

// parseScope resolves the kind and view parameters shared by listing,
// summary and stream requests.
func parseScope(c *gin.Context, views config.Views) (filter.FilterSet, bool, error) {
	set := filter.Identity()
	kind := models.Kind(strings.ToLower(c.Query("kind")))
	view, scoped, err := views.Resolve(c.Query("view"), kind)
	if err != nil {
		return set, false, err
	}
	set.Kind = view.Kind
	set.Thresholds = view.Thresholds
	return set, scoped, nil
}

func parseListQuery(c *gin.Context, views config.Views) (listQuery, error) {
	set, scoped, err := parseScope(c, views)
	if err != nil {
		return listQuery{}, err
	}
	q := listQuery{set: set, scoped: scoped}

	if v := c.Query("platform"); v != "" {
		q.set.Platform = strings.ToLower(v)
	}
	if v := c.Query("category"); v != "" {
		q.set.Category = v
	}
	if v := c.Query("severity"); v != "" {
		q.set.Severity = strings.ToLower(v)
	}
	if v := c.Query("status"); v != "" {
		q.set.Status = strings.ToLower(v)
	}
	if v := c.Query("q"); v != "" {
		q.set.SearchText = v
	}
	if v := c.Query("window"); v != "" {
		q.set.TimeWindow = v
	}
	if v := c.Query("min_risk"); v != "" {
		score, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return listQuery{}, fmt.Errorf("invalid min_risk: %q", v)
		}
		q.set.MinRiskScore = score
	}
	if v := c.Query("limit"); v != "" {
		lim, err := strconv.Atoi(v)
		if err != nil || lim < 1 || lim > maxLimit {
			return listQuery{}, fmt.Errorf("limit must be between 1 and %d", maxLimit)
		}
		q.limit = lim
	}
	if v := c.Query("offset"); v != "" {
		off, err := strconv.Atoi(v)
		if err != nil || off < 0 {
			return listQuery{}, fmt.Errorf("invalid offset: %q", v)
		}
		q.offset = off
	}

	if err := q.set.Validate(); err != nil {
		return listQuery{}, err
	}
	return q, nil
}

func paginate(records []models.Record, limit, offset int) []models.Record {
	if offset >= len(records) {
		return records[:0]
	}
	records = records[offset:]
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}
