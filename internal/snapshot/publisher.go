package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	obs "github.com/mohammed-shakir/geotime-toolkit/internal/core/observability"
)

type Store interface {
	SetAndPublish(ctx context.Context, key, channel string, val []byte, ttl time.Duration) error
}

type PublisherConfig struct {
	Key     string
	Channel string
	TTL     time.Duration
	// Timeout bounds a single store write.
	Timeout time.Duration
}

// Publisher writes snapshots to a Store from its own goroutine. Offer never
// blocks: only the latest pending snapshot is kept.
type Publisher struct {
	cfg     PublisherConfig
	store   Store
	log     *slog.Logger
	pending chan Snapshot

	last    uint64
	hasLast bool
}

func NewPublisher(cfg PublisherConfig, store Store, log *slog.Logger) *Publisher {
	if cfg.Key == "" {
		cfg.Key = "timeslider:snapshot"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{
		cfg:     cfg,
		store:   store,
		log:     log.With("component", "snapshot"),
		pending: make(chan Snapshot, 1),
	}
}

// Offer queues s, replacing any snapshot not yet written.
func (p *Publisher) Offer(s Snapshot) {
	for {
		select {
		case p.pending <- s:
			return
		default:
		}
		select {
		case <-p.pending:
			obs.IncSnapshotPublish("superseded")
		default:
		}
	}
}

// Run writes offered snapshots until ctx ends.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-p.pending:
			if _, err := p.Publish(ctx, s); err != nil {
				p.log.Warn("snapshot publish failed", "err", err)
			}
		}
	}
}

// Publish writes s unless its fingerprint matches the last successful write.
// It reports whether a write happened. Not safe for concurrent use with Run.
func (p *Publisher) Publish(ctx context.Context, s Snapshot) (bool, error) {
	b, err := json.Marshal(s)
	if err != nil {
		obs.IncSnapshotPublish("error")
		return false, fmt.Errorf("snapshot: marshal: %w", err)
	}
	fp := s.Fingerprint()
	if p.hasLast && fp == p.last {
		obs.IncSnapshotPublish("skipped")
		return false, nil
	}

	wctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()
	if err := p.store.SetAndPublish(wctx, p.cfg.Key, p.cfg.Channel, b, p.cfg.TTL); err != nil {
		obs.IncSnapshotPublish("error")
		return false, fmt.Errorf("snapshot: store: %w", err)
	}
	p.last, p.hasLast = fp, true
	obs.IncSnapshotPublish("published")
	p.log.Debug("snapshot published", "key", p.cfg.Key, "steps", s.NumberOfSteps,
		"start_step", s.StartStep, "end_step", s.EndStep)
	return true, nil
}
