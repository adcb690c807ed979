package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/hechos-map-service/internal/domain"
	"github.com/couchcryptid/hechos-map-service/internal/observability"
	"github.com/google/uuid"
)

// Fetcher returns the raw data document.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Publisher receives every successfully loaded snapshot.
type Publisher interface {
	Publish(ctx context.Context, snap domain.Snapshot) error
}

// Pipeline fetches, decodes and normalizes the data document and installs
// the result in the session.
type Pipeline struct {
	fetcher     Fetcher
	transformer *Transformer
	session     *Session
	publisher   Publisher
	logger      *slog.Logger
	metrics     *observability.Metrics
	refresh     time.Duration
}

// New creates a Pipeline. A nil publisher disables publishing; a refresh
// interval of zero loads once.
func New(f Fetcher, t *Transformer, s *Session, pub Publisher, logger *slog.Logger, metrics *observability.Metrics, refresh time.Duration) *Pipeline {
	return &Pipeline{
		fetcher:     f,
		transformer: t,
		session:     s,
		publisher:   pub,
		logger:      logger,
		metrics:     metrics,
		refresh:     refresh,
	}
}

// Run performs the initial load and then reloads every refresh interval
// until the context is cancelled. A failed initial load leaves the session
// with an empty collection; a failed reload keeps the previous one.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "refresh_interval", p.refresh)

	if snap, err := p.Load(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		p.session.Replace(snap.LoadID, clock.Now(), nil)
		p.logger.Warn("serving empty collection", "load_id", snap.LoadID)
	}

	if p.refresh <= 0 {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-clock.After(p.refresh):
		}

		if _, err := p.Load(ctx); err != nil && ctx.Err() == nil {
			p.logger.Warn("reload failed, keeping previous collection",
				"events", len(p.session.Events()))
		}
	}
}

// Load runs one fetch-decode-normalize cycle and replaces the session's
// collection on success. On failure the session is left untouched and the
// returned snapshot carries only the load ID.
func (p *Pipeline) Load(ctx context.Context) (domain.Snapshot, error) {
	loadID := uuid.NewString()
	start := clock.Now()
	logger := p.logger.With("load_id", loadID)

	collection, err := p.fetchAndTransform(ctx)
	p.metrics.LoadDuration.Observe(clock.Since(start).Seconds())
	if err != nil {
		p.metrics.LoadsTotal.WithLabelValues(observability.OutcomeFailure).Inc()
		logger.Error("load failed", "error", err)
		return domain.Snapshot{LoadID: loadID}, err
	}

	p.metrics.LoadsTotal.WithLabelValues(observability.OutcomeSuccess).Inc()
	p.metrics.RecordsReceived.Add(float64(collection.Received))
	p.metrics.EventsRetained.Add(float64(len(collection.Events)))
	p.metrics.RecordsDropped.Add(float64(collection.Dropped))
	if collection.Received > 0 {
		for _, f := range collection.KeyMap.Unresolved() {
			p.metrics.FieldResolutionMisses.WithLabelValues(string(f)).Inc()
		}
	}

	snap := p.session.Replace(loadID, clock.Now(), collection.Events)
	logger.Info("collection loaded",
		"received", collection.Received,
		"events", len(collection.Events),
		"dropped", collection.Dropped,
		"categories", len(snap.Categories),
	)

	p.publish(ctx, logger, snap)
	return snap, nil
}

func (p *Pipeline) fetchAndTransform(ctx context.Context) (domain.Collection, error) {
	data, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return domain.Collection{}, fmt.Errorf("fetch data: %w", err)
	}
	return p.transformer.Transform(data)
}

// publish hands the snapshot to the publisher. Failures are logged and
// counted but never affect the session.
func (p *Pipeline) publish(ctx context.Context, logger *slog.Logger, snap domain.Snapshot) {
	if p.publisher == nil || len(snap.Events) == 0 {
		return
	}
	if err := p.publisher.Publish(ctx, snap); err != nil {
		p.metrics.PublishErrors.Inc()
		logger.Warn("publish failed, continuing", "error", err)
		return
	}
	p.metrics.EventsPublished.Add(float64(len(snap.Events)))
}
