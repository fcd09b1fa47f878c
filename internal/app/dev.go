package app

import (
	"github.com/spf13/cobra"

	"shellkit/internal/project"
)

func newDevCommand(d *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "dev <d|b|i|t> [args...]",
		Short: "Run the dev, build, install or test command of the current project",
		Long: `Detects the project in the working directory (package.json, pom.xml or
pubspec.yaml) and runs the matching command. Node projects use the package
manager chosen from lockfiles and installed binaries. Arguments after i are
packages to add; arguments after d and t are forwarded to the script.`,
		Args:               cobra.MinimumNArgs(1),
		DisableFlagParsing: true,
		Annotations:        map[string]string{rawArgsKey: rawArgsLeading},
		RunE: func(cmd *cobra.Command, args []string) error {
			rf, err := splitRootFlags(cmd, args)
			if err != nil {
				return err
			}
			args = rf.rest
			if err := cobra.MinimumNArgs(1)(cmd, args); err != nil {
				return err
			}
			if args[0] == "-h" || args[0] == "--help" {
				return cmd.Help()
			}
			action, err := project.ParseAction(args[0])
			if err != nil {
				return err
			}
			dir, err := d.Getwd()
			if err != nil {
				return err
			}

			planner := project.Planner{Fs: d.Fs, LookPath: d.Runner.LookPath}
			plan, err := planner.PlanFor(action, dir, args[1:])
			if err != nil {
				return err
			}
			code, err := project.Run(cmd.Context(), d.Runner, d.console(), dir, plan)
			if err != nil {
				return err
			}
			return exitWith(code)
		},
	}
}
