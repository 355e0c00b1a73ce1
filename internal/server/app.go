package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"SolanaRogue/internal/game"
	"SolanaRogue/internal/ledger"
	"SolanaRogue/internal/logging"
	"SolanaRogue/internal/store"
	"SolanaRogue/internal/telemetry"
)

// App wires the room hub to the ledger, the score archive and the HTTP
// surface.
type App struct {
	cfg   Config
	log   zerolog.Logger
	arena game.Arena

	hub         *game.Hub
	ledger      ledger.Ledger
	committer   *ledger.Committer
	archive     *store.Archive
	localSigner *ledger.KeypairSigner

	baseCtx context.Context
}

type AppOption func(*App)

// WithLedger replaces the JSON-RPC client built from the config.
func WithLedger(l ledger.Ledger) AppOption {
	return func(a *App) { a.ledger = l }
}

func NewApp(cfg Config, log zerolog.Logger, opts ...AppOption) (*App, error) {
	a := &App{
		cfg:     cfg,
		log:     log,
		arena:   cfg.Arena.arena(),
		baseCtx: context.Background(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.ledger == nil && cfg.Ledger.Endpoint != "" {
		a.ledger = ledger.NewRPCClient(cfg.Ledger.Endpoint,
			ledger.WithCommitment(cfg.Ledger.Commitment),
			ledger.WithPollInterval(cfg.Ledger.PollInterval))
	}

	ledgerLog := logging.Component(log, "ledger")
	if cfg.Ledger.ProgramID == "" {
		ledgerLog.Info().Msg("no program id configured, score commits disabled")
	} else if a.ledger != nil {
		program, err := ledger.ParsePublicKey(cfg.Ledger.ProgramID)
		if err != nil {
			ledgerLog.Error().Err(err).Msg("invalid program id, score commits disabled")
		} else {
			a.committer = ledger.NewCommitter(a.ledger, program, cfg.Ledger.Timeouts, ledgerLog)
			ledgerLog.Info().Str("program", program.String()).Str("endpoint", cfg.Ledger.Endpoint).Msg("score commits enabled")
		}
	}
	if cfg.Ledger.Keypair != "" {
		signer, err := ledger.LoadKeypair(cfg.Ledger.Keypair)
		if err != nil {
			ledgerLog.Error().Err(err).Msg("local keypair not loaded")
		} else {
			a.localSigner = signer
			ledgerLog.Info().Str("wallet", signer.PublicKey().String()).Msg("local keypair loaded")
		}
	}

	archive, err := store.Open(cfg.ArchivePath, logging.Component(log, "store"))
	if err != nil {
		return nil, err
	}
	a.archive = archive

	roomCfg := game.RoomConfig{
		Tuning:   cfg.ResolvedTuning(),
		Arena:    a.arena,
		Recorder: archive,
		Log:      logging.Component(log, "game"),
	}
	if a.committer != nil {
		roomCfg.Committer = a.committer
	}
	if m, err := telemetry.New(); err != nil {
		log.Warn().Err(err).Msg("telemetry disabled")
	} else {
		roomCfg.Metrics = m
	}
	a.hub = game.NewHub(roomCfg)
	return a, nil
}

func (a *App) Handler() http.Handler {
	return a.routes()
}

// Run serves HTTP and ticks the hub until ctx ends or either fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	a.baseCtx = ctx

	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		return a.hub.Run(ctx)
	})
	g.Go(func() error {
		interval := a.cfg.CleanupInterval
		if interval <= 0 {
			interval = time.Minute
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if n := a.hub.CleanupEmptyRooms(); n > 0 {
					a.log.Debug().Int("rooms", n).Msg("closed empty rooms")
				}
			}
		}
	})
	g.Go(func() error {
		a.log.Info().Str("addr", a.cfg.Addr).Msg("starting web server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close stops every room, waiting for in-flight commits, then closes the
// archive.
func (a *App) Close() error {
	a.hub.Close()
	return a.archive.Close()
}

func StartApp(ctx context.Context, cfg Config, log zerolog.Logger) error {
	app, err := NewApp(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error().Err(err).Msg("close app")
		}
	}()
	return app.Run(ctx)
}
