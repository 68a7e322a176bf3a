package repository

import (
	"context"
	"errors"

	"github.com/mr1hm/go-cyber-patrol/internal/models"
)

var ErrNotFound = errors.New("record not found")

// Filter narrows what the store returns. Predicates beyond kind are applied
// in memory by the filter package so ordering stays stable.
type Filter struct {
	Kind   *models.Kind
	Limit  int
	Offset int
}

type RecordRepository interface {
	Add(ctx context.Context, r *models.Record) error
	GetByID(ctx context.Context, id string) (*models.Record, error)
	Exists(ctx context.Context, id string) (bool, error)
	ListRecords(ctx context.Context, opts Filter) ([]models.Record, error)
}
