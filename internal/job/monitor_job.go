package job

import (
	"context"
	"fmt"
	"log"
	"time"

	"crypto-watchtower/internal/domain"
	"crypto-watchtower/internal/service"

	"go.opentelemetry.io/otel/trace"
)

// PriceSnapshotter produces one fresh snapshot per polling cycle.
type PriceSnapshotter interface {
	Snapshot(ctx context.Context) (*domain.PriceSnapshot, error)
}

// NewsScanner walks the configured feeds and the aggregator once per cycle.
type NewsScanner interface {
	Scan(ctx context.Context, snap *domain.PriceSnapshot)
	ScanAggregator(ctx context.Context, snap *domain.PriceSnapshot)
}

// TargetChecker evaluates prediction targets against a snapshot.
type TargetChecker interface {
	Check(ctx context.Context, snap *domain.PriceSnapshot)
}

// LevelChecker evaluates the static threshold table against a snapshot.
type LevelChecker interface {
	Check(ctx context.Context, snap *domain.PriceSnapshot)
}

// Flusher persists accumulated state at the end of a cycle.
type Flusher interface {
	Flush() error
}

type Notifier interface {
	Notify(ctx context.Context, alert domain.Alert)
}

// MonitorJob drives the polling loop: one price snapshot per cycle, then
// news, target and level checks, then a state flush. Checks run even when
// the price fetch fails, degraded to an empty snapshot, so feed scanning
// survives a price outage.
type MonitorJob struct {
	tracer       trace.Tracer
	prices       PriceSnapshotter
	news         NewsScanner
	targets      TargetChecker
	levels       LevelChecker
	notifier     Notifier
	flushers     []Flusher
	pollInterval time.Duration
}

func NewMonitorJob(
	tracer trace.Tracer,
	prices PriceSnapshotter,
	news NewsScanner,
	targets TargetChecker,
	levels LevelChecker,
	notifier Notifier,
	flushers []Flusher,
	pollIntervalSecs int,
) *MonitorJob {
	return &MonitorJob{
		tracer:       tracer,
		prices:       prices,
		news:         news,
		targets:      targets,
		levels:       levels,
		notifier:     notifier,
		flushers:     flushers,
		pollInterval: time.Duration(pollIntervalSecs) * time.Second,
	}
}

// Start announces itself, runs one cycle immediately, then one per tick.
// Blocks until ctx is cancelled.
func (j *MonitorJob) Start(ctx context.Context) {
	log.Println("Monitor job starting...")

	j.notifier.Notify(ctx, domain.Alert{
		Kind: domain.AlertKindStartup,
		Text: fmt.Sprintf("🚀 Crypto monitor started — %s\nPoll interval: %s",
			service.Timestamp(time.Now()), j.pollInterval),
		CreatedAt: time.Now().UTC(),
	})

	j.runCycle(ctx)

	ticker := time.NewTicker(j.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Monitor job stopped")
			return
		case <-ticker.C:
			j.runCycle(ctx)
		}
	}
}

func (j *MonitorJob) runCycle(ctx context.Context) {
	ctx, span := j.tracer.Start(ctx, "monitor-job.cycle")
	defer span.End()

	snap, err := j.prices.Snapshot(ctx)
	if err != nil {
		log.Printf("price snapshot error, running cycle without prices: %v", err)
		snap = &domain.PriceSnapshot{Quotes: map[string]domain.PriceQuote{}, FetchedAt: time.Now().UTC()}
	}

	j.news.Scan(ctx, snap)
	j.news.ScanAggregator(ctx, snap)
	j.targets.Check(ctx, snap)
	j.levels.Check(ctx, snap)

	for _, f := range j.flushers {
		if err := f.Flush(); err != nil {
			log.Printf("state flush error: %v", err)
		}
	}
}
