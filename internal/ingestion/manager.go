package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mr1hm/go-cyber-patrol/internal/config"
	"github.com/mr1hm/go-cyber-patrol/internal/models"
	"github.com/mr1hm/go-cyber-patrol/internal/repository"
	"github.com/mr1hm/go-cyber-patrol/internal/stream"
	"github.com/mr1hm/go-cyber-patrol/internal/worker"
)

// Recorder receives ingestion counters. *metrics.Metrics satisfies it.
type Recorder interface {
	RecordIngested(source string)
	IngestFailed(source string)
}

type job struct {
	source string
	record models.Record
}

type Manager struct {
	cfg         *config.Config
	repo        repository.RecordRepository
	broadcaster *stream.Broadcaster
	recorder    Recorder
	pool        *worker.WorkerPool[job]
	wg          sync.WaitGroup
}

func NewManager(cfg *config.Config, repo repository.RecordRepository, broadcaster *stream.Broadcaster, recorder Recorder) *Manager {
	return &Manager{
		cfg:         cfg,
		repo:        repo,
		broadcaster: broadcaster,
		recorder:    recorder,
	}
}

// Seed loads the configured record file synchronously so the store keeps
// the file's order.
func (m *Manager) Seed(ctx context.Context) error {
	src := FileSource{Path: m.cfg.Sources.FixturePath}
	records, err := src.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("error seeding from %s: %w", src.Name(), err)
	}
	for _, r := range records {
		if err := m.ingest(ctx, job{source: src.Name(), record: r}); err != nil {
			return err
		}
	}
	slog.Info("seeded records", "source", src.Name(), "count", len(records))
	return nil
}

func (m *Manager) Start(ctx context.Context) {
	m.pool = worker.NewWorkerPool(m.cfg.Worker.Count, m.cfg.Worker.BufferSize, m.ingest)
	m.pool.Start(ctx)

	if m.cfg.Sources.FeedEnabled {
		m.wg.Add(1)
		go m.runPoller(ctx, NewFeedSource(m.cfg.Sources.FeedURL), m.cfg.Sources.FeedPollInterval)
	}
}

func (m *Manager) ingest(ctx context.Context, j job) error {
	r := j.record

	exists, err := m.repo.Exists(ctx, r.ID)
	if err != nil {
		slog.Error("error checking existence", "id", r.ID, "error", err)
		return err
	}
	if exists {
		return nil
	}

	if err := m.repo.Add(ctx, &r); err != nil {
		slog.Error("error adding record", "id", r.ID, "error", err)
		return err
	}
	if m.recorder != nil {
		m.recorder.RecordIngested(j.source)
	}
	if m.broadcaster != nil {
		m.broadcaster.Broadcast(r)
	}

	slog.Debug("added record", "id", r.ID, "kind", r.Kind, "source", j.source)
	return nil
}

func (m *Manager) runPoller(ctx context.Context, src Source, interval time.Duration) {
	defer m.wg.Done()
	slog.Info("starting poller", "source", src.Name(), "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.poll(ctx, src)

	for {
		select {
		case <-ctx.Done():
			slog.Info("poller shutting down", "source", src.Name())
			return
		case <-ticker.C:
			m.poll(ctx, src)
		}
	}
}

func (m *Manager) poll(ctx context.Context, src Source) {
	slog.Debug("polling", "source", src.Name())

	records, err := src.Fetch(ctx)
	if err != nil {
		if m.recorder != nil {
			m.recorder.IngestFailed(src.Name())
		}
		slog.Error("poll failed", "source", src.Name(), "error", err)
		return
	}

	for _, r := range records {
		if err := m.pool.Submit(ctx, job{source: src.Name(), record: r}); err != nil {
			return
		}
	}

	slog.Debug("poll complete", "source", src.Name(), "count", len(records))
}

func (m *Manager) Stop() {
	m.wg.Wait()
	if m.pool != nil {
		m.pool.Stop()
	}
	slog.Info("ingestion manager stopped")
}
