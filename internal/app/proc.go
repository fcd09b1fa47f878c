package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shellkit/internal/process"
)

func newProcCommand(d *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proc",
		Short: "Find and terminate processes",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "kill-by-name <pattern>",
			Short: "Terminate processes whose command line matches pattern",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				pids, err := process.NewResolver(d.Runner).ByName(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return d.terminate(cmd, pids, fmt.Sprintf("kill all processes matching '%s'?", args[0]))
			},
		},
		&cobra.Command{
			Use:   "kill-by-port <port>",
			Short: "Terminate processes bound to a TCP or UDP port",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				pids, err := process.NewResolver(d.Runner).ByPort(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return d.terminate(cmd, pids, fmt.Sprintf("kill the processes on port %s?", args[0]))
			},
		},
		&cobra.Command{
			Use:   "kill <pid>...",
			Short: "Terminate the given PIDs",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				pids, err := process.ParsePIDs(args)
				if err != nil {
					return err
				}
				return d.terminate(cmd, pids, fmt.Sprintf("kill processes: %s?", strings.Join(args, " ")))
			},
		},
	)
	return cmd
}

func (d *Deps) terminate(cmd *cobra.Command, pids []int, message string) error {
	killer := process.NewKiller(d.Runner, d.console(), d.cfg.Process.TermGrace, d.cfg.Process.KillGrace)
	if d.Signals != nil {
		killer.Signals = d.Signals
	}
	report, err := killer.Terminate(cmd.Context(), pids, message)
	if err != nil {
		return err
	}
	if len(report.Remaining) > 0 {
		return &ExitError{Code: 1}
	}
	return nil
}
