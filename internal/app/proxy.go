package app

import (
	"github.com/spf13/cobra"

	"shellkit/internal/proxy"
)

func newProxyCommand(d *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Print shell code that sets or clears proxy variables",
		Long: `The output is meant for eval in the calling shell:

  eval "$(shellkit proxy set 8080)"`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:                "set [URL] [PORT] [-p PORT] [-u URL] [-s SCHEME] [-n LIST]",
			Short:              "Export proxy variables and git proxy settings",
			DisableFlagParsing: true,
			Annotations:        map[string]string{rawArgsKey: rawArgsAnywhere},
			RunE: func(cmd *cobra.Command, args []string) error {
				rf, err := splitRootFlags(cmd, args)
				if err != nil {
					return err
				}
				args = rf.rest
				for _, a := range args {
					if a == "-h" || a == "--help" {
						return cmd.Help()
					}
				}
				opts, err := proxy.ParseSet(args, d.cfg.Proxy)
				if err != nil {
					return err
				}
				return proxy.WriteSet(d.Stdout, opts)
			},
		},
		&cobra.Command{
			Use:   "unset",
			Short: "Clear proxy variables and git proxy settings",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				return proxy.WriteUnset(d.Stdout)
			},
		},
	)
	return cmd
}
