package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"termtris/config"
	"termtris/metrics"
	"termtris/terminal"
	"termtris/tetris"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	configPath := flag.String("config", ".", "directory containing tetris.yaml")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatal(err)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("unable to load config: %w", err)
	}

	// stdout belongs to the renderer, logs go to a file.
	logFile, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("unable to open log file: %w", err)
	}
	defer logFile.Close()
	level, _ := cfg.Log.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	collector, err := metrics.New("tetris", reg)
	if err != nil {
		return err
	}
	if cfg.Metrics.Address != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Address, reg, logger); err != nil {
				logger.Error("metrics server stopped", slog.String("error", err.Error()))
			}
		}()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	game := tetris.New(&tetris.Options{
		Width:    cfg.Field.Width,
		Height:   cfg.Field.Height,
		Rand:     rand.New(rand.NewPCG(seed, seed>>1)),
		Logger:   logger,
		Listener: collector,
	})

	t, err := terminal.New(game, &terminal.Options{
		Logger:    logger,
		FrameTime: cfg.FrameTime(),
	})
	if err != nil {
		return fmt.Errorf("unable to start terminal: %w", err)
	}
	defer t.Close()

	logger.Info("starting", slog.Uint64("seed", seed), slog.Int("fps", cfg.FPS))
	if err := t.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("game stopped: %w", err)
	}
	return nil
}
