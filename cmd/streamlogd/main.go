// streamlogd is the headless listener: it watches MPRIS players and records
// plays without the UI. Useful as a user service started at login.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/loicnogier/streamlog/internal/config"
	"github.com/loicnogier/streamlog/internal/mpris"
	"github.com/loicnogier/streamlog/internal/notify"
	"github.com/loicnogier/streamlog/internal/recorder"
	"github.com/loicnogier/streamlog/internal/store"
)

func run() error {
	var (
		player = flag.String("player", "", "override the watched player (substring of the MPRIS bus name)")
		dbPath = flag.String("db", "", "override the history database path")
		debug  = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger()
	if !*debug {
		log = log.Level(zerolog.InfoLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *player != "" {
		cfg.Player = *player
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer st.Close()
	st.SetLogger(log)

	notifier, err := notify.New()
	if err != nil {
		return fmt.Errorf("connecting notifier: %w", err)
	}

	watcher, err := mpris.NewWatcher(cfg.Player, log)
	if err != nil {
		return fmt.Errorf("connecting media-session watcher: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go watcher.Run(ctx)

	if cfg.Player == "" {
		log.Info().Msg("watching all media players")
	} else {
		log.Info().Str("player", cfg.Player).Msg("watching player")
	}

	rec := recorder.New(st, notifier, recorder.Options{
		Notifications:       cfg.NotificationsEnabled(),
		NotificationTimeout: cfg.NotificationTimeout(),
	}, log)
	rec.Run(ctx, watcher.Events())

	log.Info().Msg("shutting down")
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
