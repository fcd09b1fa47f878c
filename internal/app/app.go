// Package app wires the shellkit command tree.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"shellkit/internal/config"
	"shellkit/internal/console"
	"shellkit/internal/docker"
	"shellkit/internal/hub"
	"shellkit/internal/logging"
	"shellkit/internal/process"
	"shellkit/internal/proxy"
	"shellkit/internal/shell"
	"shellkit/internal/ui"
)

// ExitError carries a specific process exit status. Its message has already
// been reported, usually by a child process.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// DockerEngine is the Docker client surface used by the docker commands.
type DockerEngine interface {
	ui.Engine
	Close() error
}

// Deps holds everything the commands touch outside the process.
type Deps struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Runner shell.Runner
	Fs     afero.Fs
	Getwd  func() (string, error)
	// LoadConfig reads the configuration file at path.
	LoadConfig func(path string) (config.Config, error)
	// Docker connects to the engine.
	Docker func(timeout time.Duration) (DockerEngine, error)
	// Signals overrides the process signaler; nil means real signals.
	Signals process.Signaler

	cfg config.Config
}

// DefaultDeps returns Deps bound to the real process environment.
func DefaultDeps() *Deps {
	return &Deps{
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Runner:     shell.NewExec(),
		Fs:         afero.NewOsFs(),
		Getwd:      os.Getwd,
		LoadConfig: config.LoadFile,
		Docker: func(timeout time.Duration) (DockerEngine, error) {
			c, err := docker.NewClient(timeout)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
	}
}

func (d *Deps) console() *console.Console {
	return console.New(d.Stdin, d.Stdout, d.Stderr)
}

// NewRootCommand builds the shellkit command tree over d.
func NewRootCommand(d *Deps, version string) *cobra.Command {
	var (
		logLevel   string
		configPath string
	)

	root := &cobra.Command{
		Use:           "shellkit",
		Short:         "Helpers behind the zsh dev, docker, fzf, process and proxy shortcuts",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			levelSet := cmd.Flags().Changed("log-level")
			if _, ok := cmd.Annotations[rawArgsKey]; ok {
				rf, err := splitRootFlags(cmd, args)
				if err != nil {
					return err
				}
				if rf.configSet {
					configPath = rf.configPath
				}
				if rf.levelSet {
					logLevel, levelSet = rf.logLevel, true
				}
			}
			if configPath == "" {
				configPath = config.Path()
			}
			cfg, err := d.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if levelSet {
				cfg.LogLevel = logLevel
			}
			d.cfg = cfg

			logCfg := logging.DefaultConfig()
			logCfg.Level = logging.ParseLevel(cfg.LogLevel)
			logCfg.Output = d.Stderr
			// JSON lines when stderr is redirected.
			f, ok := d.Stderr.(*os.File)
			logCfg.Pretty = ok && console.Interactive(f)
			logging.Init(logCfg)
			logging.Debug().Str("config", configPath).Str("command", cmd.CommandPath()).Msg("starting")
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "diagnostic log level (debug, info, warn, error, off)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "configuration file (default $XDG_CONFIG_HOME/shellkit/config.yaml)")

	root.AddCommand(
		newDevCommand(d),
		newDockerCommand(d),
		newFsCommand(d),
		newGitCommand(d),
		newPathCommand(d),
		newProcCommand(d),
		newProxyCommand(d),
		newFilesCommand(d),
	)
	return root
}

// Execute runs the command tree with args and returns the exit status.
func Execute(ctx context.Context, d *Deps, version string, args []string) int {
	root := NewRootCommand(d, version)
	root.SetArgs(args)
	root.SetIn(d.Stdin)
	root.SetOut(d.Stdout)
	root.SetErr(d.Stderr)
	return ExitCode(d.Stderr, root.ExecuteContext(ctx))
}

// ExitCode reports err on w where needed and maps it to an exit status.
func ExitCode(w io.Writer, err error) int {
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	switch {
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.Is(err, hub.ErrReported):
		return 1
	case errors.Is(err, proxy.ErrUsage):
		fmt.Fprintln(w, err)
		fmt.Fprintln(w, proxy.Usage)
		return 1
	}
	fmt.Fprintln(w, err)
	return 1
}

func exitWith(code int) error {
	if code == 0 {
		return nil
	}
	return &ExitError{Code: code}
}
