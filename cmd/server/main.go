package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/exp/slog"

	"github.com/xtding233/plinko-backend/internal/config"
	"github.com/xtding233/plinko-backend/internal/engine"
	"github.com/xtding233/plinko-backend/internal/game"
	"github.com/xtding233/plinko-backend/internal/grpcapi"
	"github.com/xtding233/plinko-backend/internal/httpapi"
	"github.com/xtding233/plinko-backend/internal/lib/logger/sl"
	"github.com/xtding233/plinko-backend/internal/table"
	"github.com/xtding233/plinko-backend/internal/wallet"
)

func main() {
	fs := flag.NewFlagSet("plinko", flag.ExitOnError)
	rows := fs.Int("rows", 0, "Override the starting row count")
	risk := fs.String("risk", "", "Override the starting risk level")

	cfg, err := config.ParseConfig(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	log := setupLogger(cfg.Env)
	log.Info("starting plinko server", slog.String("env", cfg.Env))
	log.Debug("debug messages are enabled")

	var o game.Overrides
	if *rows != 0 {
		o.Rows = rows
	}
	if *risk != "" {
		o.Risk = risk
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, o, log); err != nil {
		log.Error("server stopped", sl.Err(err))
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Config, o game.Overrides, log *slog.Logger) error {
	loader := game.NewLoader(cfg.ConfigDir)
	_, settings, err := loader.Resolve(cfg.Profile, o)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	balance, err := cfg.Balance()
	if err != nil {
		return err
	}

	acct := wallet.NewAccount(balance)
	eng, err := engine.New(engine.Config{
		Board:    settings.Board,
		Profiles: settings.Profiles,
		Tuning:   settings.Tuning,
		Wallet:   acct,
		Log:      log.With(slog.String("component", "engine")),
	})
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	tb := table.New(eng, table.Options{
		Log:    log.With(slog.String("component", "table")),
		Limits: table.Limits{Min: settings.MinWager, Max: settings.MaxWager},
	})
	log.Info("table ready",
		slog.Int("rows", settings.Board.Rows),
		slog.String("risk", settings.Board.Risk.String()),
		slog.String("balance", balance.String()),
		slog.String("config_version", settings.Version),
	)

	if cfg.WatchInterval > 0 {
		w := game.NewFileWatcher(loader.Paths().Watched(cfg.Profile), cfg.WatchInterval, func(path string) {
			log.Info("config changed", slog.String("path", path))
			loader.Invalidate()
			_, s, err := loader.Resolve(cfg.Profile, o)
			if err != nil {
				log.Error("reload rejected, keeping current config", sl.Err(err))
				return
			}
			if _, err := tb.ApplySettings(s); err != nil {
				log.Error("apply reloaded config", sl.Err(err))
			}
		})
		w.Start()
		defer w.Stop()
	}

	grpcSrv, err := grpcapi.NewServer(log.With(slog.String("component", "grpc")), cfg.GRPCAddr, grpcapi.NewService(log, tb, acct))
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.New(log.With(slog.String("component", "http")), tb, acct).Router(),
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: 0, // the websocket feed is long lived
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 3)
	go func() { errCh <- tb.Run(ctx, cfg.Tick) }()
	go func() { errCh <- grpcSrv.Serve(ctx) }()
	go func() {
		log.Info("http server listening", slog.String("addr", cfg.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serve http: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
	case err = <-errCh:
		if err == nil {
			err = errors.New("component exited early")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if serr := httpSrv.Shutdown(shutdownCtx); serr != nil {
		log.Error("http shutdown", sl.Err(serr))
	}
	grpcSrv.Close()
	return err
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case config.EnvLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.Default()
	}

	return log
}
