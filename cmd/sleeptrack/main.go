package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"sleeptrack/internal/bootstrap"
	"sleeptrack/internal/modules/tracker/dto"
	"sleeptrack/internal/platform/config"
	"sleeptrack/internal/platform/naturaldate"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           "sleeptrack",
		Short:         "Track nights of sleep from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data", ".", "data directory holding .sleeptrack/")

	root.AddCommand(newTUICmd(&dataDir))
	root.AddCommand(newStartCmd(&dataDir))
	root.AddCommand(newStopCmd(&dataDir))
	root.AddCommand(newClearCmd(&dataDir))
	root.AddCommand(newStatusCmd(&dataDir))
	root.AddCommand(newHistoryCmd(&dataDir))
	root.AddCommand(newShowCmd(&dataDir))
	root.AddCommand(newRateCmd(&dataDir))
	root.AddCommand(newExportCmd(&dataDir))
	return root
}

func loadApp(dataDir string) (*bootstrap.App, error) {
	cfg, err := config.Load(dataDir)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg)
}

// withApp loads the app for one command and closes it afterwards.
func withApp(dataDir string, fn func(*bootstrap.App) error) (err error) {
	app, err := loadApp(dataDir)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); err == nil {
			err = closeErr
		}
	}()
	return fn(app)
}

func newTUICmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the sleeptrack terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(*dataDir, bootstrap.RunTUI)
		},
	}
}

func newStartCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start tonight's sleep",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				night, err := app.TrackerCLI.Start(context.Background())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "night %d started at %s\n", night.ID, night.StartedAt.Local().Format(time.Kitchen))
				return nil
			})
		},
	}
}

func newStopCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the open night",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				night, err := app.TrackerCLI.Stop(context.Background())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "night %d stopped after %s\n", night.ID, night.EndedAt.Sub(night.StartedAt).Round(time.Second))
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "rate it with: sleeptrack rate --id %d --quality <0-5>\n", night.ID)
				return nil
			})
		},
	}
}

func newClearCmd(dataDir *string) *cobra.Command {
	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear --yes",
		Short: "Delete every recorded night",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear history without --yes")
			}
			return withApp(*dataDir, func(app *bootstrap.App) error {
				if err := app.TrackerCLI.Clear(context.Background()); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "All your data is gone forever.")
				return nil
			})
		},
	}
	clearCmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting all nights")
	return clearCmd
}

func newStatusCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a night is open",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				state, err := app.TrackerCLI.Status(context.Background())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if state.HasTonight {
					_, _ = fmt.Fprintf(out, "asleep: night %d started %s\n", state.Tonight.ID, humanize.Time(state.Tonight.StartedAt))
				} else {
					_, _ = fmt.Fprintln(out, "awake")
				}
				_, _ = fmt.Fprintf(out, "nights recorded: %d\n", len(state.History))
				return nil
			})
		},
	}
}

func newHistoryCmd(dataDir *string) *cobra.Command {
	var since string
	history := &cobra.Command{
		Use:   "history",
		Short: "List recorded nights, most recent first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var from time.Time
			if strings.TrimSpace(since) != "" {
				parsed, err := naturaldate.Parse(since, time.Now())
				if err != nil {
					return err
				}
				from = parsed
			}
			return withApp(*dataDir, func(app *bootstrap.App) error {
				nights, err := app.TrackerCLI.History(context.Background(), from)
				if err != nil {
					return err
				}
				printHistory(cmd.OutOrStdout(), nights)
				return nil
			})
		},
	}
	history.Flags().StringVar(&since, "since", "", "only nights started after this date (e.g. yesterday, \"a week ago\", 2026-03-01)")
	return history
}

func printHistory(w io.Writer, nights []dto.NightOutput) {
	if len(nights) == 0 {
		_, _ = fmt.Fprintln(w, "no nights")
		return
	}
	for i, n := range nights {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintf(w, "#%d\n%s\n", n.ID, n.Display)
	}
}

func newShowCmd(dataDir *string) *cobra.Command {
	var nightID int64
	show := &cobra.Command{
		Use:   "show --id <night>",
		Short: "Show one recorded night",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if nightID <= 0 {
				return fmt.Errorf("--id is required")
			}
			return withApp(*dataDir, func(app *bootstrap.App) error {
				night, err := app.TrackerCLI.Show(context.Background(), nightID)
				if err != nil {
					return err
				}
				printHistory(cmd.OutOrStdout(), []dto.NightOutput{night})
				return nil
			})
		},
	}
	show.Flags().Int64Var(&nightID, "id", 0, "night id")
	return show
}

func newRateCmd(dataDir *string) *cobra.Command {
	var nightID int64
	var quality int
	var notes string
	rate := &cobra.Command{
		Use:   "rate --id <night> --quality <0-5>",
		Short: "Rate how well a night went",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if nightID <= 0 {
				return fmt.Errorf("--id is required")
			}
			return withApp(*dataDir, func(app *bootstrap.App) error {
				night, err := app.TrackerCLI.Rate(context.Background(), nightID, quality, notes)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "night %d rated: %s\n", night.ID, night.QualityLabel)
				return nil
			})
		},
	}
	rate.Flags().Int64Var(&nightID, "id", 0, "night id")
	rate.Flags().IntVar(&quality, "quality", -1, "0 very bad .. 5 excellent")
	rate.Flags().StringVar(&notes, "notes", "", "optional notes")
	return rate
}

func newExportCmd(dataDir *string) *cobra.Command {
	var dir string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write closed nights as markdown notes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				out, err := app.TrackerCLI.Export(context.Background(), dir)
				if err != nil {
					return err
				}
				for _, path := range out.Paths {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d nights, skipped %d open\n", len(out.Paths), out.Skipped)
				return nil
			})
		},
	}
	export.Flags().StringVar(&dir, "dir", "", "export directory (defaults to export_dir from config)")
	return export
}
