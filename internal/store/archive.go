// Package store archives score commit attempts in a local SQLite database and
// keeps the best score per wallet, mirroring the on-chain high score rule.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"SolanaRogue/internal/ledger"
)

// CommitRecord is one finished commit attempt.
type CommitRecord struct {
	ID         uint   `gorm:"primaryKey"`
	SessionID  string `gorm:"size:36;index"`
	Wallet     string `gorm:"size:64;index"`
	Score      uint64
	Outcome    string `gorm:"size:16;index"`
	Step       string `gorm:"size:16"`
	Signature  string `gorm:"size:128"`
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
	CreatedAt  time.Time
}

// BestScore is the highest confirmed score of a wallet.
type BestScore struct {
	Wallet      string `gorm:"primaryKey;size:64"`
	Score       uint64
	SessionID   string `gorm:"size:36"`
	Signature   string `gorm:"size:128"`
	ConfirmedAt time.Time
	UpdatedAt   time.Time
}

var ErrNotFound = errors.New("not found")

type Archive struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Open opens or creates the archive at path. An empty path uses an
// in-memory database.
func Open(path string, log zerolog.Logger) (*Archive, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if path == "" {
		// each pooled connection would get its own empty in-memory database
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	if err := db.AutoMigrate(&CommitRecord{}, &BestScore{}); err != nil {
		return nil, fmt.Errorf("migrate archive: %w", err)
	}
	if path == "" {
		log.Info().Msg("using in-memory score archive")
	} else {
		log.Info().Str("path", path).Msg("using score archive")
	}
	return &Archive{db: db, log: log}, nil
}

// RecordCommit stores the attempt and, for a confirmed commit, raises the
// wallet's best score if the new one is higher.
func (a *Archive) RecordCommit(ctx context.Context, res ledger.CommitResult) error {
	rec := CommitRecord{
		SessionID:  res.SessionID,
		Wallet:     res.Wallet,
		Score:      res.Score,
		Outcome:    string(res.Outcome),
		Step:       res.Step,
		Signature:  res.Signature,
		Error:      res.Error,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
	}
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert commit: %w", err)
		}
		if res.Outcome != ledger.OutcomeConfirmed || res.Wallet == "" {
			return nil
		}
		best := BestScore{
			Wallet:      res.Wallet,
			Score:       res.Score,
			SessionID:   res.SessionID,
			Signature:   res.Signature,
			ConfirmedAt: res.FinishedAt,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "wallet"}},
			DoUpdates: clause.Assignments(map[string]any{
				"score":        gorm.Expr("CASE WHEN excluded.score > best_scores.score THEN excluded.score ELSE best_scores.score END"),
				"session_id":   gorm.Expr("CASE WHEN excluded.score > best_scores.score THEN excluded.session_id ELSE best_scores.session_id END"),
				"signature":    gorm.Expr("CASE WHEN excluded.score > best_scores.score THEN excluded.signature ELSE best_scores.signature END"),
				"confirmed_at": gorm.Expr("CASE WHEN excluded.score > best_scores.score THEN excluded.confirmed_at ELSE best_scores.confirmed_at END"),
				"updated_at":   gorm.Expr("excluded.updated_at"),
			}),
		}).Create(&best).Error
		if err != nil {
			return fmt.Errorf("upsert best score: %w", err)
		}
		return nil
	})
}

func (a *Archive) BestScore(ctx context.Context, wallet string) (BestScore, error) {
	var best BestScore
	err := a.db.WithContext(ctx).Where("wallet = ?", wallet).Take(&best).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return BestScore{}, ErrNotFound
	}
	if err != nil {
		return BestScore{}, fmt.Errorf("query best score: %w", err)
	}
	return best, nil
}

// RecentCommits returns up to limit attempts, newest first. An empty wallet
// matches every wallet.
func (a *Archive) RecentCommits(ctx context.Context, wallet string, limit int) ([]CommitRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	q := a.db.WithContext(ctx).Order("id DESC").Limit(limit)
	if wallet != "" {
		q = q.Where("wallet = ?", wallet)
	}
	var out []CommitRecord
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("query commits: %w", err)
	}
	return out, nil
}

// Leaderboard returns the top best scores.
func (a *Archive) Leaderboard(ctx context.Context, limit int) ([]BestScore, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []BestScore
	if err := a.db.WithContext(ctx).Order("score DESC, confirmed_at ASC").Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	return out, nil
}

func (a *Archive) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
