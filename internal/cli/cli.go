// Package cli wires the cobra command tree. The root command runs the
// interactive client; subcommands run one operation headless and exit.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/atomicstack/replay-control/internal/action"
	"github.com/atomicstack/replay-control/internal/app"
	"github.com/atomicstack/replay-control/internal/config"
	"github.com/atomicstack/replay-control/internal/recorder"
	"github.com/atomicstack/replay-control/internal/session"
)

// ErrConfig marks failures to resolve or validate the configuration.
var ErrConfig = errors.New("configuration error")

// Options controls how the command tree is built.
type Options struct {
	Environ []string
	Stdout  io.Writer
	Stderr  io.Writer
	// RunTUI runs the interactive client. Defaults to app.Run.
	RunTUI func(context.Context, app.Config) error
	// OnConfig is called once the configuration is resolved and valid.
	OnConfig func(config.Config)
}

type runtime struct {
	opts    Options
	cfg     config.Config
	service action.Service
	json    bool
}

// NewRootCommand builds the replay-control command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Environ == nil {
		opts.Environ = os.Environ()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.RunTUI == nil {
		opts.RunTUI = app.Run
	}
	rt := &runtime{opts: opts}

	root := &cobra.Command{
		Use:           "replay-control",
		Short:         "Control a recording service: record, replay and manage recordings",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.load(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.opts.RunTUI(cmd.Context(), rt.cfg.App)
		},
	}
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)
	config.RegisterFlags(root.PersistentFlags())
	root.PersistentFlags().BoolVar(&rt.json, "json", false, "print headless results as JSON")

	root.AddCommand(
		rt.statusCommand(),
		rt.listCommand(),
		rt.lifecycleCommand("start", "Start a recording session", action.StartAction),
		rt.lifecycleCommand("pause", "Pause or resume the current recording", action.PauseAction),
		rt.lifecycleCommand("stop", "Stop the current recording", action.StopAction),
		rt.replayCommand(),
		rt.deleteCommand(),
		rt.exportCommand(),
		rt.importCommand(),
		rt.categorizeCommand(),
	)
	return root
}

func (rt *runtime) load(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromFlags(cmd.Flags(), args, rt.opts.Environ)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	rt.cfg = cfg
	rt.service = app.NewClient(cfg.App)
	if rt.opts.OnConfig != nil {
		rt.opts.OnConfig(cfg)
	}
	return nil
}

// actionContext builds a handler context seeded with the live session state.
func (rt *runtime) actionContext(ctx context.Context) (action.Context, error) {
	st, err := rt.service.Status(ctx)
	if err != nil {
		return action.Context{}, err
	}
	return action.Context{
		Base:      ctx,
		Service:   rt.service,
		Session:   session.Normalize(st),
		Replay:    rt.cfg.App.Replay,
		ExportDir: rt.cfg.App.ExportDir,
	}, nil
}

// report prints the outcome of a handler and returns its error.
func (rt *runtime) report(out io.Writer, msg interface{}) error {
	var info string
	var err error
	switch res := msg.(type) {
	case action.SessionResult:
		info, err = res.Info, res.Err
	case action.Result:
		info, err = res.Info, res.Err
	case action.CatalogResult:
		err = res.Err
		info = fmt.Sprintf("%d recording(s)", len(res.Recordings))
	default:
		return fmt.Errorf("unexpected result %T", msg)
	}
	if err != nil {
		return err
	}
	if rt.json {
		return writeJSON(out, map[string]string{"status": recorder.StatusSuccess, "message": info})
	}
	_, werr := fmt.Fprintln(out, info)
	return werr
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
