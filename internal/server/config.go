package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"

	"SolanaRogue/internal/game"
	"SolanaRogue/internal/ledger"
)

type ArenaConfig struct {
	Width       float64
	Height      float64
	SpawnMargin float64
	Walls       []game.Rect
}

func (a ArenaConfig) arena() game.Arena {
	return game.Arena{
		Bounds:      game.NewRect(0, 0, a.Width, a.Height),
		Walls:       append([]game.Rect(nil), a.Walls...),
		SpawnMargin: a.SpawnMargin,
	}
}

// LedgerConfig points the score commit at a cluster. An empty ProgramID
// disables commits; every session then ends with a skipped commit.
type LedgerConfig struct {
	Endpoint     string
	ProgramID    string
	Commitment   string
	Keypair      string
	PollInterval time.Duration
	Timeouts     ledger.Timeouts
}

type Config struct {
	Addr            string
	LogLevel        string
	LogFormat       string
	ArchivePath     string
	CleanupInterval time.Duration

	Tuning game.Tuning
	Arena  ArenaConfig
	Ledger LedgerConfig

	TuningOverrides TuningOverrides `mapstructure:"-"`
}

func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		LogLevel:        "info",
		LogFormat:       "console",
		ArchivePath:     "arena.db",
		CleanupInterval: 60 * time.Second,
		Tuning:          game.DefaultTuning(),
		Arena: ArenaConfig{
			Width:       game.ArenaW,
			Height:      game.ArenaH,
			SpawnMargin: game.ArenaSpawnMargin,
		},
		Ledger: LedgerConfig{
			Endpoint:     ledger.DevnetEndpoint,
			Commitment:   ledger.CommitmentConfirmed,
			PollInterval: 500 * time.Millisecond,
			Timeouts:     ledger.DefaultTimeouts(),
		},
	}
}

// LoadConfig reads a JSON config file over the defaults. A missing file is
// not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	cleanPath := filepath.Clean(path)
	if _, err := os.Stat(cleanPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("stat config %q: %w", cleanPath, err)
	}

	v := viper.New()
	v.SetDefault("addr", cfg.Addr)
	v.SetDefault("logLevel", cfg.LogLevel)
	v.SetDefault("logFormat", cfg.LogFormat)
	v.SetDefault("archivePath", cfg.ArchivePath)
	v.SetDefault("cleanupInterval", cfg.CleanupInterval)
	v.SetDefault("ledger.endpoint", cfg.Ledger.Endpoint)
	v.SetDefault("ledger.commitment", cfg.Ledger.Commitment)
	v.SetDefault("ledger.pollInterval", cfg.Ledger.PollInterval)

	v.SetConfigFile(cleanPath)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return DefaultConfig(), fmt.Errorf("read config %q: %w", cleanPath, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config %q: %w", cleanPath, err)
	}
	cfg.Tuning = game.SanitizeTuning(cfg.Tuning)
	cfg.Ledger.Commitment = ledger.NormalizeCommitment(cfg.Ledger.Commitment)
	return cfg, nil
}

// arenaEnv holds the environment overrides. They win over the file.
type arenaEnv struct {
	Addr           string `env:"ARENA_ADDR"`
	LogLevel       string `env:"ARENA_LOG_LEVEL"`
	ArchivePath    string `env:"ARENA_ARCHIVE"`
	LedgerEndpoint string `env:"ARENA_LEDGER_ENDPOINT"`
	ProgramID      string `env:"ARENA_PROGRAM_ID"`
	Keypair        string `env:"ARENA_KEYPAIR"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ApplyEnv overlays the ARENA_* environment variables onto cfg.
func (c *Config) ApplyEnv() error {
	var raw arenaEnv
	if err := ParseEnv(&raw); err != nil {
		return err
	}
	if raw.Addr != "" {
		c.Addr = raw.Addr
	}
	if raw.LogLevel != "" {
		c.LogLevel = raw.LogLevel
	}
	if raw.ArchivePath != "" {
		c.ArchivePath = raw.ArchivePath
	}
	if raw.LedgerEndpoint != "" {
		c.Ledger.Endpoint = raw.LedgerEndpoint
	}
	if raw.ProgramID != "" {
		c.Ledger.ProgramID = raw.ProgramID
	}
	if raw.Keypair != "" {
		c.Ledger.Keypair = raw.Keypair
	}
	return nil
}

// TuningOverrides represents optional command-line overrides for combat
// tuning.
type TuningOverrides struct {
	PlayerMaxHealth  *int
	PlayerSpeed      *float64
	ContactDamage    *int
	EnemyMaxHealth   *int
	EnemySpeed       *float64
	MeleeDamage      *int
	ProjectileDamage *int
	DropChance       *float64
	SpawnInterval    *float64
	EnemyCap         *int
}

func (o TuningOverrides) apply(base game.Tuning) game.Tuning {
	if o.PlayerMaxHealth != nil {
		base.PlayerMaxHealth = *o.PlayerMaxHealth
	}
	if o.PlayerSpeed != nil {
		base.PlayerSpeed = *o.PlayerSpeed
	}
	if o.ContactDamage != nil {
		base.ContactDamage = *o.ContactDamage
	}
	if o.EnemyMaxHealth != nil {
		base.EnemyMaxHealth = *o.EnemyMaxHealth
	}
	if o.EnemySpeed != nil {
		base.EnemySpeed = *o.EnemySpeed
	}
	if o.MeleeDamage != nil {
		base.MeleeDamage = *o.MeleeDamage
	}
	if o.ProjectileDamage != nil {
		base.ProjectileDamage = *o.ProjectileDamage
	}
	if o.DropChance != nil {
		base.DropChance = *o.DropChance
	}
	if o.SpawnInterval != nil {
		base.SpawnInterval = *o.SpawnInterval
	}
	if o.EnemyCap != nil {
		base.EnemyCap = *o.EnemyCap
	}
	return game.SanitizeTuning(base)
}

// ResolvedTuning is the file tuning with command-line overrides applied.
func (c Config) ResolvedTuning() game.Tuning {
	return c.TuningOverrides.apply(c.Tuning)
}
