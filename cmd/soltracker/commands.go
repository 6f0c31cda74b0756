package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/programme-lv/soltracker/planglist"
	"github.com/programme-lv/soltracker/soltrack"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	root       string
	dryRun     bool
	workers    int
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	var rootCmd = &cobra.Command{
		Use:           "soltracker",
		Short:         "Forward the latest solution of every author from a solution archive",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "TOML config file (default soltracker.toml)")
	rootCmd.PersistentFlags().StringVarP(&flags.root, "root", "r", "", "solution archive directory, overrides config")
	rootCmd.PersistentFlags().BoolVar(&flags.dryRun, "dry-run", false, "log solutions instead of distributing them")
	rootCmd.PersistentFlags().IntVarP(&flags.workers, "workers", "w", 0, "files parsed in parallel, overrides config")

	rootCmd.AddCommand(newRunCmd(flags))
	rootCmd.AddCommand(newScanCmd(flags))
	rootCmd.AddCommand(newLangsCmd())

	return rootCmd
}

func newRunCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Scan once at startup and keep serving the status endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := setup(ctx, flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.close()

			run, err := app.tracker.Start(ctx)
			if err != nil {
				return err
			}

			if app.cfg.Http.Addr == "" {
				select {
				case <-run.Done():
				case <-ctx.Done():
				}
				return nil
			}

			app.logger.Info("serving status", "address", app.cfg.Http.Addr)
			return serveWhileRunning(ctx, run.Done(), func(ctx context.Context) error {
				return app.status.Serve(ctx, app.cfg.Http.Addr)
			}, app.logger)
		},
	}
}

// serveWhileRunning runs serve and, whatever it returns, keeps the process
// alive until the cycle is done or ctx is cancelled so that sinks are not
// closed under a forward in progress.
func serveWhileRunning(ctx context.Context, cycleDone <-chan struct{}, serve func(context.Context) error, log *slog.Logger) error {
	err := serve(ctx)
	if err != nil {
		log.Error("status server failed, waiting for the scan cycle", "error", err)
	}
	select {
	case <-cycleDone:
	case <-ctx.Done():
	}
	return err
}

func newScanCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Scan once, wait for the result and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := setup(ctx, flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.close()

			run, err := app.tracker.Start(ctx)
			if err != nil {
				return err
			}

			report, err := run.Wait(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"files: %d, solutions: %d, authors: %d, forwarded: %d\n",
				report.Scan.Files, report.Scan.Matched, report.Authors,
				len(report.Forward.Forwarded))

			var fwdErr *soltrack.ForwardError
			if errors.As(report.Forward.Err(), &fwdErr) {
				return fwdErr
			}
			return nil
		},
	}
}

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List the languages solutions can be written in",
		RunE: func(cmd *cobra.Command, args []string) error {
			header := lipgloss.NewStyle().Bold(true)
			disabled := lipgloss.NewStyle().Faint(true)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, header.Render(fmt.Sprintf("%-12s %-14s %s", "ID", "NAME", "EXTENSIONS")))
			for _, lang := range planglist.ListProgrammingLanguages() {
				line := fmt.Sprintf("%-12s %-14s %s", lang.ID, lang.FullName, strings.Join(lang.Extensions, ","))
				if !lang.Enabled {
					line = disabled.Render(line)
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

