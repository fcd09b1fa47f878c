package app

import (
	"github.com/spf13/cobra"

	"shellkit/internal/fileops"
)

func newFilesCommand(d *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Bulk file removal",
	}

	remover := func() *fileops.Remover {
		return &fileops.Remover{Fs: d.Fs, Console: d.console()}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:     "rmr <root> <pattern>...",
			Short:   "Delete everything under root whose name matches a glob",
			Example: "  shellkit files rmr . node_modules '*.log'",
			Args:    cobra.MinimumNArgs(2),
			RunE: func(_ *cobra.Command, args []string) error {
				return remover().Rmr(args[0], args[1:])
			},
		},
		&cobra.Command{
			Use:     "rme <keep>...",
			Short:   "Delete everything in the working directory except the named entries",
			Example: "  shellkit files rme .git README.md package.json",
			Args:    cobra.MinimumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				dir, err := d.Getwd()
				if err != nil {
					return err
				}
				return remover().Rme(dir, args)
			},
		},
	)
	return cmd
}
