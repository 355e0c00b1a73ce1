package main

import (
	"context"
	"flag"
	"math"
	"os"
	"os/signal"
	"syscall"

	"SolanaRogue/internal/logging"
	"SolanaRogue/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/arena.json", "path to arena config JSON")
	addr := flag.String("addr", "", "address to listen on (e.g., 127.0.0.1:8080)")
	logLevel := flag.String("log-level", "", "log level: trace, debug, info, warn, error")
	logFormat := flag.String("log-format", "", "log format: console or json")
	programID := flag.String("program", "", "score program id (base58)")
	keypair := flag.String("keypair", "", "path to a Solana CLI keypair used as the local wallet")
	playerHealth := flag.Int("player-health", -1, "override player max health")
	playerSpeed := flag.Float64("player-speed", math.NaN(), "override player speed in units/s")
	contactDamage := flag.Int("contact-damage", -1, "override enemy contact damage")
	enemyHealth := flag.Int("enemy-health", -1, "override enemy max health")
	enemySpeed := flag.Float64("enemy-speed", math.NaN(), "override enemy chase speed")
	meleeDamage := flag.Int("melee-damage", -1, "override slash damage")
	projectileDamage := flag.Int("projectile-damage", -1, "override projectile damage")
	dropChance := flag.Float64("drop-chance", math.NaN(), "override pickup drop chance (0-1)")
	spawnInterval := flag.Float64("spawn-interval", math.NaN(), "override enemy spawn interval in seconds")
	enemyCap := flag.Int("enemy-cap", -1, "override maximum live enemies")
	flag.Parse()

	cfg, cfgErr := server.LoadConfig(*configPath)
	envErr := cfg.ApplyEnv()

	if *addr != "" {
		cfg.Addr = *addr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFormat != "" {
		cfg.LogFormat = *logFormat
	}
	if *programID != "" {
		cfg.Ledger.ProgramID = *programID
	}
	if *keypair != "" {
		cfg.Ledger.Keypair = *keypair
	}

	log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if cfgErr != nil {
		log.Warn().Err(cfgErr).Msg("config file ignored, using defaults")
	}
	if envErr != nil {
		log.Warn().Err(envErr).Msg("environment overrides ignored")
	}

	var overrides server.TuningOverrides
	if *playerHealth >= 0 {
		val := *playerHealth
		overrides.PlayerMaxHealth = &val
	}
	if !math.IsNaN(*playerSpeed) {
		val := *playerSpeed
		overrides.PlayerSpeed = &val
	}
	if *contactDamage >= 0 {
		val := *contactDamage
		overrides.ContactDamage = &val
	}
	if *enemyHealth >= 0 {
		val := *enemyHealth
		overrides.EnemyMaxHealth = &val
	}
	if !math.IsNaN(*enemySpeed) {
		val := *enemySpeed
		overrides.EnemySpeed = &val
	}
	if *meleeDamage >= 0 {
		val := *meleeDamage
		overrides.MeleeDamage = &val
	}
	if *projectileDamage >= 0 {
		val := *projectileDamage
		overrides.ProjectileDamage = &val
	}
	if !math.IsNaN(*dropChance) {
		val := *dropChance
		overrides.DropChance = &val
	}
	if !math.IsNaN(*spawnInterval) {
		val := *spawnInterval
		overrides.SpawnInterval = &val
	}
	if *enemyCap >= 0 {
		val := *enemyCap
		overrides.EnemyCap = &val
	}
	cfg.TuningOverrides = overrides

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.StartApp(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
