// Command scoreboard runs the shared leaderboard service that game clients
// can post finished games to (scores.remote_url).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"akaun-master/internal/config"
	"akaun-master/internal/logger"
	"akaun-master/internal/scoreboard"
	"akaun-master/internal/scoring"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "scoreboard: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to a YAML config file")
	addr := flag.String("addr", "", "Listen address (overrides server.addr)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	log, err := logger.New(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	storage, err := scoring.NewJSONFileStorage(cfg.Scores.Path)
	if err != nil {
		return err
	}
	lb := scoring.NewLeaderboard(storage, nil, log)
	srv := scoreboard.NewServer(cfg.Server.Addr, lb, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
