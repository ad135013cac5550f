// Package cli holds the cobra command tree. The root command runs the
// interactive app; subcommands are one-shot edits and listings.
package cli

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/daytodo/internal/config"
	"github.com/sandeepkv93/daytodo/internal/update"
)

func New() *cobra.Command {
	opts := &GlobalOptions{}

	cmd := &cobra.Command{
		Use:           "daytodo",
		Short:         "Day-by-day to-do list with reminders.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default "+config.DefaultConfigPath+")")
	flags.StringVar(&opts.DataDir, "data-dir", "", "directory holding the task data")
	flags.StringVar(&opts.Backend, "backend", "", "storage backend: file, sqlite or diskv")
	flags.StringVar(&opts.LogLevel, "log-level", "", "debug, info, warn or error")

	AddCommands(cmd, opts)
	return cmd
}

func AddCommands(topLevel *cobra.Command, opts *GlobalOptions) {
	addList(topLevel, opts)
	addAdd(topLevel, opts)
	addDone(topLevel, opts)
	addClear(topLevel, opts)
	addPurge(topLevel, opts)
}

func runTUI(ctx context.Context, opts *GlobalOptions) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx, opts, true)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(); err == nil {
			err = cerr
		}
	}()

	weekStart, _ := a.cfg.FirstWeekday()
	m := update.NewModel(update.Deps{
		Store:                a.store,
		Engine:               a.engine,
		Notifier:             a.notifier,
		Desktop:              update.ExecDesktopNotifier{},
		Logger:               a.logger.WithPrefix("tui"),
		Now:                  time.Now,
		WeekStart:            weekStart,
		DesktopNotifications: a.cfg.DesktopNotifications,
	})

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if warn := loadWarning(a); warn != nil {
		go program.Send(update.AppErrorMsg{Err: warn})
	}
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("daytodo: %w", err)
	}
	return nil
}
