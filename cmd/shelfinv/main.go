package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/montsmed/shelfinv/internal/config"
	"github.com/montsmed/shelfinv/internal/db"
	"github.com/montsmed/shelfinv/internal/domain"
	"github.com/montsmed/shelfinv/internal/gateway"
	"github.com/montsmed/shelfinv/internal/logging"
	"github.com/montsmed/shelfinv/internal/session"
	"github.com/montsmed/shelfinv/internal/store"
	"github.com/montsmed/shelfinv/internal/web"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	snapshots := store.NewSnapshotStore(database)
	inv := store.NewInventory()

	restored, err := snapshots.Load(context.Background())
	if err != nil {
		logger.Error("failed to restore snapshot", "error", err)
		return
	}
	if len(restored) > 0 {
		inv.LoadReplace(restored)
		logger.Info("restored inventory from snapshot", "rows", len(restored))
	}

	remote := newRemote(cfg, logger)

	onSave := func(rows []domain.Row) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := snapshots.Save(ctx, rows); err != nil {
			logger.Error("snapshot save failed", "rows", len(rows), "error", err)
		}
	}

	sess := session.New(inv, remote, onSave, logger)
	server := web.NewServer(sess, inv, remote != nil, logger)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

func newRemote(cfg *config.Config, logger *slog.Logger) gateway.Remote {
	if !cfg.RemoteConfigured() {
		logger.Info("no GitHub credentials configured, running in export-only mode")
		return nil
	}
	logger.Info("using GitHub remote", "repo", cfg.GitHubRepo, "path", cfg.GitHubPath, "branch", cfg.GitHubBranch)
	return gateway.NewGitHubRemote(cfg.GitHubRepo, cfg.GitHubPath, cfg.GitHubBranch, cfg.GitHubToken, cfg.SaveAttempts, cfg.SaveRetryDelay, logger)
}
