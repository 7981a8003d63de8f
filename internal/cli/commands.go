package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atomicstack/replay-control/internal/action"
	"github.com/atomicstack/replay-control/internal/format/table"
	"github.com/atomicstack/replay-control/internal/recorder"
	"github.com/atomicstack/replay-control/internal/session"
	uistate "github.com/atomicstack/replay-control/internal/ui/state"
)

type statusOutput struct {
	State       string `json:"state"`
	IsRecording bool   `json:"is_recording"`
	IsPaused    bool   `json:"is_paused"`
}

func (rt *runtime) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the recorder state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rt.service.Status(cmd.Context())
			if err != nil {
				return err
			}
			state := session.Normalize(st)
			if rt.json {
				return writeJSON(cmd.OutOrStdout(), statusOutput{
					State:       state.String(),
					IsRecording: state.Active(),
					IsPaused:    state == session.Paused,
				})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), state)
			return err
		},
	}
}

func (rt *runtime) listCommand() *cobra.Command {
	var criteria uistate.Criteria
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recordings in the catalog",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := action.Run(action.Context{Base: cmd.Context(), Service: rt.service, Input: "cli"}, action.RefreshAction)
			res, ok := msg.(action.CatalogResult)
			if !ok {
				return rt.report(cmd.OutOrStdout(), msg)
			}
			if res.Err != nil {
				return res.Err
			}
			recs := uistate.FilterRecordings(res.Recordings, criteria)
			if rt.json {
				if recs == nil {
					recs = []recorder.Recording{}
				}
				return writeJSON(cmd.OutOrStdout(), recs)
			}
			rows := make([][]string, len(recs))
			for i, rec := range recs {
				rows[i] = []string{rec.Name, rec.Category}
			}
			for _, line := range table.Format(rows, []table.Alignment{table.AlignLeft, table.AlignLeft}) {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(line, " ")); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&criteria.Search, "search", "", "only list names containing this text (case-insensitive)")
	cmd.Flags().StringVar(&criteria.Category, "category", "", "only list recordings in this category")
	return cmd
}

// lifecycleCommand runs a session command against the live recorder state.
func (rt *runtime) lifecycleCommand(use, short string, h action.Handler) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := rt.actionContext(cmd.Context())
			if err != nil {
				return err
			}
			return rt.report(cmd.OutOrStdout(), action.Run(ctx, h))
		},
	}
}

func (rt *runtime) replayCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "replay NAME",
		Short: "Replay one recording using the configured loops, speed and precision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := rt.actionContext(cmd.Context())
			if err != nil {
				return err
			}
			ctx.Selected = args
			return rt.report(cmd.OutOrStdout(), action.Run(ctx, action.ReplayAction))
		},
	}
}

func (rt *runtime) deleteCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete NAME...",
		Short: "Delete recordings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete %d recording(s) without --yes", len(args))
			}
			ctx, err := rt.actionContext(cmd.Context())
			if err != nil {
				return err
			}
			ctx.Selected = args
			ctx.Confirmed = true
			return rt.report(cmd.OutOrStdout(), action.Run(ctx, action.DeleteAction))
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the deletion")
	return cmd
}

func (rt *runtime) exportCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export NAME...",
		Short: "Export recordings to " + action.ExportFileName,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := action.Context{
				Base:      cmd.Context(),
				Service:   rt.service,
				Selected:  args,
				ExportDir: rt.cfg.App.ExportDir,
			}
			if out != "" {
				ctx.ExportDir = out
			}
			return rt.report(cmd.OutOrStdout(), action.Run(ctx, action.ExportAction))
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "directory to write the export to (defaults to --export-dir)")
	return cmd
}

func (rt *runtime) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import recordings from an exported .json file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := action.Context{Base: cmd.Context(), Service: rt.service, Input: args[0]}
			return rt.report(cmd.OutOrStdout(), action.Run(ctx, action.ImportAction))
		},
	}
}

func (rt *runtime) categorizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categorize LABEL NAME...",
		Short: "Assign a category to recordings",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := action.Context{
				Base:     cmd.Context(),
				Service:  rt.service,
				Input:    args[0],
				Selected: args[1:],
			}
			return rt.report(cmd.OutOrStdout(), action.Run(ctx, action.CategorizeAction))
		},
	}
}
