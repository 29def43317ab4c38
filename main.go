package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/loicnogier/streamlog/internal/app"
	"github.com/loicnogier/streamlog/internal/config"
	"github.com/loicnogier/streamlog/internal/mpris"
	"github.com/loicnogier/streamlog/internal/notify"
	"github.com/loicnogier/streamlog/internal/recorder"
	"github.com/loicnogier/streamlog/internal/store"
)

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// The TUI owns the terminal, so logs go to a file in the state dir.
	log := fileLogger()

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

	// The watcher and recorder run for the lifetime of the UI; plays are
	// logged while browsing.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go watcher.Run(ctx)

	rec := recorder.New(st, notifier, recorder.Options{
		Notifications:       cfg.NotificationsEnabled(),
		NotificationTimeout: cfg.NotificationTimeout(),
	}, log)
	go rec.Run(ctx, watcher.Events())

	p := tea.NewProgram(app.New(st, log), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// fileLogger logs to the XDG state dir, falling back to a no-op logger when
// the file cannot be opened.
func fileLogger() zerolog.Logger {
	path, err := xdg.StateFile(filepath.Join("streamlog", "streamlog.log"))
	if err != nil {
		return zerolog.Nop()
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop()
	}
	return zerolog.New(f).With().Timestamp().Logger()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
