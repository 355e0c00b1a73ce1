// Package telemetry records combat and commit counters through the global
// OpenTelemetry meter provider.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"SolanaRogue/internal/game"
	"SolanaRogue/internal/ledger"
)

const instrumentationName = "SolanaRogue/internal/telemetry"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Metrics implements game.RoomMetrics. All methods are safe on a nil
// receiver.
type Metrics struct {
	sessions metric.Int64Counter
	kills    metric.Int64Counter
	pickups  metric.Int64Counter
	damage   metric.Int64Counter
	commits  metric.Int64Counter
}

var _ game.RoomMetrics = (*Metrics)(nil)

func New() (*Metrics, error) {
	return NewWithMeter(meter())
}

func NewWithMeter(m metric.Meter) (*Metrics, error) {
	var (
		out Metrics
		err error
	)
	out.sessions, err = m.Int64Counter(
		"arena.sessions.started",
		metric.WithDescription("Sessions started"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sessions counter: %w", err)
	}
	out.kills, err = m.Int64Counter(
		"arena.enemies.killed",
		metric.WithDescription("Enemies killed by the player"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating kills counter: %w", err)
	}
	out.pickups, err = m.Int64Counter(
		"arena.pickups.collected",
		metric.WithDescription("Pickups collected"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pickups counter: %w", err)
	}
	out.damage, err = m.Int64Counter(
		"arena.damage.applied",
		metric.WithDescription("Damage points applied, by target kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating damage counter: %w", err)
	}
	out.commits, err = m.Int64Counter(
		"arena.commits.finished",
		metric.WithDescription("Score commits finished, by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating commits counter: %w", err)
	}
	return &out, nil
}

func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessions.Add(context.Background(), 1)
}

func (m *Metrics) EnemyKilled() {
	if m == nil {
		return
	}
	m.kills.Add(context.Background(), 1)
}

func (m *Metrics) PickupCollected() {
	if m == nil {
		return
	}
	m.pickups.Add(context.Background(), 1)
}

func (m *Metrics) DamageApplied(target game.EntityKind, amount int) {
	if m == nil || amount <= 0 {
		return
	}
	m.damage.Add(context.Background(), int64(amount),
		metric.WithAttributes(attribute.String("target", target.String())))
}

func (m *Metrics) CommitFinished(outcome ledger.Outcome) {
	if m == nil {
		return
	}
	m.commits.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("outcome", string(outcome))))
}
