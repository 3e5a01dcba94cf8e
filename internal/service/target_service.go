package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"crypto-watchtower/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// nearMissBand is the relative distance to a target that counts as a
// near-miss.
const nearMissBand = 0.03

// TargetStates is the persistent progress map the tracker reads and writes.
type TargetStates interface {
	Get(key string) domain.TargetState
	Put(key string, state domain.TargetState)
}

// TargetService advances the per-target state machine on every snapshot:
// unreached-far → unreached-near → reached, each transition notifying once.
// Transitions are monotonic; a price jump straight past the near band skips
// the near-miss notification entirely.
type TargetService struct {
	tracer   trace.Tracer
	targets  map[string][]domain.PredictionTarget
	states   TargetStates
	notifier Notifier
}

func NewTargetService(
	tracer trace.Tracer,
	targets map[string][]domain.PredictionTarget,
	states TargetStates,
	notifier Notifier,
) *TargetService {
	return &TargetService{
		tracer:   tracer,
		targets:  targets,
		states:   states,
		notifier: notifier,
	}
}

// Targets returns the loaded prediction table keyed by asset.
func (s *TargetService) Targets() map[string][]domain.PredictionTarget {
	return s.targets
}

// Check evaluates all targets against the current snapshot.
func (s *TargetService) Check(ctx context.Context, snap *domain.PriceSnapshot) {
	_, span := s.tracer.Start(ctx, "target-service.check")
	defer span.End()

	for _, symbol := range domain.SupportedSymbols {
		targets := s.targets[symbol]
		if len(targets) == 0 {
			continue
		}
		quote, ok := snap.Quote(symbol)
		if !ok {
			continue
		}
		for _, target := range targets {
			s.checkTarget(ctx, target, quote)
		}
	}
}

func (s *TargetService) checkTarget(ctx context.Context, target domain.PredictionTarget, quote domain.PriceQuote) {
	cur := quote.USD
	if target.Currency == "EUR" {
		cur = quote.EUR
	}
	if cur == nil {
		return
	}

	key := target.Key()
	state := s.states.Get(key)

	if *cur >= target.Target && !state.Reached {
		source := target.Source
		if source == "" {
			source = "N/A"
		}
		text := fmt.Sprintf(
			"🎯 <b>%s</b> — Target reached (%s %v) — %s\nCurrent price: %.2f %s\nSource: %s\nAdvice: Take partial profits if momentum fades; otherwise let it run with a trailing stop.\nNote: %s",
			target.Asset, target.Currency, target.Target, Timestamp(time.Now()),
			*cur, target.Currency, source, target.Note,
		)
		s.notifier.Notify(ctx, domain.Alert{
			Kind:      domain.AlertKindTargetReached,
			Asset:     target.Asset,
			Text:      text,
			CreatedAt: time.Now().UTC(),
		})
		state.Reached = true
	}

	if !state.Approached && !state.Reached && target.Target > 0 &&
		math.Abs(*cur-target.Target)/target.Target <= nearMissBand {
		text := fmt.Sprintf(
			"👀 <b>%s</b> — Approaching target (%s %v) — %s\nPrice: %.2f %s (within 3%%)\nAction: Prepare to take profit or add on a confirmed breakout.",
			target.Asset, target.Currency, target.Target, Timestamp(time.Now()),
			*cur, target.Currency,
		)
		s.notifier.Notify(ctx, domain.Alert{
			Kind:      domain.AlertKindTargetNear,
			Asset:     target.Asset,
			Text:      text,
			CreatedAt: time.Now().UTC(),
		})
		state.Approached = true
	}

	s.states.Put(key, state)
}
