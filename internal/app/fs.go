package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"shellkit/internal/listing"
)

func newFsCommand(d *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fs",
		Short: "Icon-prefixed file listings for fzf",
	}

	var (
		dir string
		typ string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List paths under a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lister := listing.Lister{Runner: d.Runner, Fs: d.Fs}
			paths, err := lister.List(cmd.Context(), dir, listing.ParseTypeFilter(typ))
			if err != nil {
				return err
			}
			return listing.WriteIconLines(d.Stdout, d.Fs, paths)
		},
	}
	list.Flags().StringVar(&dir, "dir", ".", "directory to list")
	list.Flags().StringVar(&typ, "type", "a", "d for directories, f for files, a for both")

	rg := &cobra.Command{
		Use:   "rg",
		Short: "Prefix path:line:col:text lines from stdin with file icons",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return listing.AnnotateGrep(d.Stdin, d.Stdout)
		},
	}

	cmd.AddCommand(list, rg)
	return cmd
}

func newGitCommand(d *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "git",
		Short: "Git listings for fzf",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List changed files with staged/unstaged icons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := listing.GitStatus(cmd.Context(), d.Runner)
			if err != nil {
				return err
			}
			return listing.WriteGitLines(d.Stdout, entries)
		},
	})
	return cmd
}

func newPathCommand(d *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Path utilities",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "abs [path[:line[:col]]]",
		Short: "Print the absolute path, keeping a :line:col suffix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			abs, err := listing.Abs(input)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(d.Stdout, abs)
			return err
		},
	})
	return cmd
}
