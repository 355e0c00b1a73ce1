package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"SolanaRogue/internal/game"
	"SolanaRogue/internal/ledger"
)

func TestNewWithMeter(t *testing.T) {
	m, err := NewWithMeter(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.NotPanics(t, func() {
		m.SessionStarted()
		m.EnemyKilled()
		m.PickupCollected()
		m.DamageApplied(game.KindEnemy, 5)
		m.DamageApplied(game.KindPlayer, 0)
		m.CommitFinished(ledger.OutcomeConfirmed)
	})
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SessionStarted()
		m.EnemyKilled()
		m.PickupCollected()
		m.DamageApplied(game.KindPlayer, 10)
		m.CommitFinished(ledger.OutcomeSkipped)
	})
}

func TestNewUsesGlobalProvider(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	assert.NotNil(t, m.kills)
}
