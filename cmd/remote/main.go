package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smile/pkg/config"
	"smile/pkg/remote"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	addr := flag.String("addr", "", "listen address (default from config, :8080)")
	path := flag.String("path", "", "session endpoint path (default from config, /run)")
	maxSteps := flag.Int("max-steps", 0, "abort a session after this many instructions (default from config, 1000000)")
	trace := flag.Bool("trace", false, "log call stack and jump activity")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Remote.Addr = *addr
		case "path":
			cfg.Remote.Path = *path
		case "max-steps":
			cfg.Remote.MaxSteps = *maxSteps
		case "trace":
			cfg.Trace = *trace
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	level := slog.LevelInfo
	if cfg.Trace {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := remote.NewServer(cfg, logger)
	if err := srv.ListenAndServe(ctx, cfg.Remote.Addr, 10*time.Second); err != nil {
		log.Fatal(err)
	}
}
