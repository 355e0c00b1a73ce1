package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SolanaRogue/internal/game"
	"SolanaRogue/internal/ledger"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arena.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigMergesFile(t *testing.T) {
	path := writeConfig(t, `{
		"addr": ":9000",
		"logLevel": "debug",
		"tuning": {"playerMaxHealth": 50, "contactDamage": 7, "dropChance": 0.25},
		"arena": {"width": 1000, "height": 700, "walls": [{"min": {"x": 10, "y": 20}, "max": {"x": 30, "y": 40}}]},
		"ledger": {"programId": "11111111111111111111111111111112", "timeouts": {"sign": "30s"}}
	}`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat, "unset keys keep defaults")

	assert.Equal(t, 50, cfg.Tuning.PlayerMaxHealth)
	assert.Equal(t, 7, cfg.Tuning.ContactDamage)
	assert.InDelta(t, 0.25, cfg.Tuning.DropChance, 1e-9)
	assert.Equal(t, game.EnemyMaxHealth, cfg.Tuning.EnemyMaxHealth)

	assert.Equal(t, 1000.0, cfg.Arena.Width)
	assert.Equal(t, game.ArenaSpawnMargin, cfg.Arena.SpawnMargin)
	require.Len(t, cfg.Arena.Walls, 1)
	assert.Equal(t, game.NewRect(10, 20, 30, 40), cfg.Arena.Walls[0])

	assert.Equal(t, "11111111111111111111111111111112", cfg.Ledger.ProgramID)
	assert.Equal(t, ledger.DevnetEndpoint, cfg.Ledger.Endpoint)
	assert.Equal(t, 30*time.Second, cfg.Ledger.Timeouts.Sign)
	assert.Equal(t, ledger.DefaultTimeouts().Confirm, cfg.Ledger.Timeouts.Confirm)
}

func TestLoadConfigNormalizesCommitment(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{"ledger": {"commitment": ""}}`))
	require.NoError(t, err)
	assert.Equal(t, ledger.CommitmentConfirmed, cfg.Ledger.Commitment)

	cfg, err = LoadConfig(writeConfig(t, `{"ledger": {"commitment": "FINALIZED"}}`))
	require.NoError(t, err)
	assert.Equal(t, ledger.CommitmentFinalized, cfg.Ledger.Commitment)
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `{"addr": `))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("ARENA_LEDGER_ENDPOINT", "http://localhost:8899")
	t.Setenv("ARENA_PROGRAM_ID", "11111111111111111111111111111112")
	t.Setenv("ARENA_KEYPAIR", "/tmp/id.json")
	t.Setenv("ARENA_ADDR", ":7000")

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "http://localhost:8899", cfg.Ledger.Endpoint)
	assert.Equal(t, "11111111111111111111111111111112", cfg.Ledger.ProgramID)
	assert.Equal(t, "/tmp/id.json", cfg.Ledger.Keypair)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestTuningOverrides(t *testing.T) {
	hp := 30
	speed := 250.0
	negative := -5
	cfg := DefaultConfig()
	cfg.TuningOverrides = TuningOverrides{
		PlayerMaxHealth: &hp,
		PlayerSpeed:     &speed,
		MeleeDamage:     &negative,
	}
	tuning := cfg.ResolvedTuning()
	assert.Equal(t, 30, tuning.PlayerMaxHealth)
	assert.Equal(t, 250.0, tuning.PlayerSpeed)
	assert.Equal(t, game.MeleeDamage, tuning.MeleeDamage, "invalid override is sanitized back")
	assert.Equal(t, game.DefaultTuning().ContactDamage, tuning.ContactDamage)
}
