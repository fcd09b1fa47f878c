package app

import (
	"github.com/spf13/cobra"

	"shellkit/internal/docker"
	"shellkit/internal/filter"
	"shellkit/internal/hub"
	"shellkit/internal/ui"
)

func newDockerCommand(d *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docker",
		Short: "Docker helpers for the fzf widgets",
	}
	cmd.AddCommand(
		newDockerListCommand(d),
		newDockerDispatchCommand(d),
		newDockerDinfoCommand(d),
		newDockerBrowseCommand(d),
	)
	return cmd
}

func (d *Deps) engine() (DockerEngine, error) {
	return d.Docker(d.cfg.Docker.Timeout)
}

func newDockerListCommand(d *Deps) *cobra.Command {
	var (
		all  bool
		expr string
	)

	cmd := &cobra.Command{
		Use:       "list [containers]",
		Short:     "List containers and images as fzf lines",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"containers"},
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := filter.Parse(expr)
			if err != nil {
				return err
			}
			engine, err := d.engine()
			if err != nil {
				return err
			}
			defer engine.Close()

			ctx := cmd.Context()
			if len(args) == 1 {
				containers, err := engine.ListContainers(ctx, all)
				if err != nil {
					return err
				}
				return docker.WriteContainers(d.Stdout, f.Containers(containers), all)
			}

			containers, err := engine.ListContainers(ctx, true)
			if err != nil {
				return err
			}
			images, err := engine.ListImages(ctx)
			if err != nil {
				return err
			}
			return docker.WriteList(d.Stdout, f.Containers(containers), f.Images(images))
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include stopped containers (list containers only)")
	cmd.Flags().StringVar(&expr, "filter", "", "search text or criteria such as status~up,age>1h")
	return cmd
}

func newDockerDispatchCommand(d *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch <action> [line...]",
		Short: "Run logs, exec, copy, stop, run, restart, delete or image on selected lines",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := d.engine()
			if err != nil {
				return err
			}
			defer engine.Close()

			dispatcher := docker.NewDispatcher(engine, d.Runner, d.Stderr, d.cfg.Docker.Sudo)
			code, err := dispatcher.Dispatch(cmd.Context(), args[0], args[1:])
			if err != nil {
				return err
			}
			return exitWith(code)
		},
	}
}

func newDockerDinfoCommand(d *Deps) *cobra.Command {
	var jq string

	cmd := &cobra.Command{
		Use:     "dinfo <repo> <tag> [arch] [os]",
		Short:   "Show Docker Hub metadata and image digests for a tag",
		Example: "  shellkit docker dinfo clickhouse/clickhouse-server 26.1.2 arm64 linux",
		Args:    cobra.RangeArgs(2, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := hub.Request{Repo: args[0], Tag: args[1], JQ: jq}
			if len(args) > 2 {
				req.Arch = args[2]
			}
			if len(args) > 3 {
				req.OS = args[3]
			}
			client := hub.NewClient(d.cfg.Docker.HubURL, d.cfg.Docker.Timeout)
			return client.Dinfo(cmd.Context(), d.Stdout, req)
		},
	}
	cmd.Flags().StringVar(&jq, "jq", "", "jq expression applied to the tag document")
	return cmd
}

func newDockerBrowseCommand(d *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse containers and images in a terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			engine, err := d.engine()
			if err != nil {
				return err
			}
			defer engine.Close()

			browser := ui.New(engine, d.Runner, d.cfg.Docker.Sudo)
			browser.Initialize()
			return browser.Run()
		},
	}
}
