package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/atomicstack/replay-control/internal/action"
	"github.com/atomicstack/replay-control/internal/backend"
	"github.com/atomicstack/replay-control/internal/logging"
	"github.com/atomicstack/replay-control/internal/logging/events"
	"github.com/atomicstack/replay-control/internal/recorder"
	"github.com/atomicstack/replay-control/internal/session"
	"github.com/atomicstack/replay-control/internal/ui"
)

// Config describes user-provided application options.
type Config struct {
	ServiceURL      string
	Timeout         time.Duration
	PollInterval    time.Duration
	CatalogInterval time.Duration
	RateLimit       float64
	Width           int
	Height          int
	ShowFooter      bool
	Verbose         bool
	ExportDir       string
	Replay          action.ReplayOptions
	MetricsAddr     string
}

// NewClient builds the Recording Service client described by cfg.
func NewClient(cfg Config) *recorder.Client {
	return recorder.NewClientWithOptions(cfg.ServiceURL, recorder.Options{
		Timeout:   cfg.Timeout,
		RateLimit: rate.Limit(cfg.RateLimit),
	})
}

// Run bootstraps and executes the Bubble Tea program. The metrics endpoint,
// when configured, runs alongside it and stops when the program exits.
func Run(ctx context.Context, cfg Config) error {
	client := NewClient(cfg)
	controller := session.NewController()
	watcher := backend.NewWatcher(client, backend.Options{
		StatusInterval:  cfg.PollInterval,
		CatalogInterval: cfg.CatalogInterval,
		Stamp:           controller.Generation,
	})
	defer func() {
		watcher.Stop()
		watcher.Wait()
	}()

	g, gctx := errgroup.WithContext(ctx)
	runCtx, stop := context.WithCancel(gctx)
	defer stop()

	if cfg.MetricsAddr != "" {
		ln, err := net.Listen("tcp", cfg.MetricsAddr)
		if err != nil {
			return fmt.Errorf("metrics listen %s: %w", cfg.MetricsAddr, err)
		}
		log := logging.Component("app")
		log.Info().Str("addr", ln.Addr().String()).Msg("serving metrics")
		g.Go(func() error {
			return serveMetrics(runCtx, ln)
		})
	}

	model := ui.NewModel(ui.Options{
		Base:       runCtx,
		Service:    client,
		Watcher:    watcher,
		Session:    controller,
		Width:      cfg.Width,
		Height:     cfg.Height,
		ShowFooter: cfg.ShowFooter,
		Verbose:    cfg.Verbose,
		Replay:     cfg.Replay,
		ExportDir:  cfg.ExportDir,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(runCtx))
	g.Go(func() error {
		defer stop()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			events.App.Stop("killed")
			return nil
		}
		events.App.Stop("exit")
		return err
	})
	return g.Wait()
}
