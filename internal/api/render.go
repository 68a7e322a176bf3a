package api

import (
	"github.com/mr1hm/go-cyber-patrol/internal/models"
	"github.com/mr1hm/go-cyber-patrol/internal/risk"
)

// recordView is a record plus the descriptors a client needs to draw it.
type recordView struct {
	models.Record
	Display risk.Display `json:"display"`
}

type listResponse struct {
	Records []recordView `json:"records"`
	Count   int          `json:"count"`
	Total   int          `json:"total"`
}

func toRecordViews(records []models.Record, thresholds func(models.Kind) risk.Thresholds) []recordView {
	out := make([]recordView, 0, len(records))
	for i := range records {
		r := &records[i]
		out = append(out, recordView{
			Record:  *r,
			Display: risk.Describe(r, thresholds(r.Kind)),
		})
	}
	return out
}
