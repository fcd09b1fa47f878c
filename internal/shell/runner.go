// Package shell spawns child processes for the helpers.
//
// Every helper awaits one child at a time; Runner exists so tests can replace
// the real processes with canned results.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"shellkit/internal/logging"
)

// Result is the captured outcome of a non-interactive command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external commands.
type Runner interface {
	// LookPath reports the resolved path of name on PATH.
	LookPath(name string) (string, error)
	// Interactive runs the command in dir with the terminal attached and
	// returns its exit code. The error is non-nil only when it could not start.
	Interactive(ctx context.Context, dir string, argv ...string) (int, error)
	// Output runs the command with captured stdout/stderr. A non-zero exit
	// is reported through Result.ExitCode, not as an error.
	Output(ctx context.Context, argv ...string) (Result, error)
	// Input runs the command feeding stdin, discarding its output.
	Input(ctx context.Context, stdin io.Reader, argv ...string) (int, error)
}

// Exec is the os/exec backed Runner.
type Exec struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExec returns a Runner bound to the process's standard streams.
func NewExec() *Exec {
	return &Exec{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (e *Exec) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (e *Exec) Interactive(ctx context.Context, dir string, argv ...string) (int, error) {
	if len(argv) == 0 {
		return 1, errors.New("empty command")
	}
	logging.Debug().Str("dir", dir).Strs("argv", argv).Msg("spawn interactive")

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	return exitCode(cmd.Run())
}

func (e *Exec) Output(ctx context.Context, argv ...string) (Result, error) {
	if len(argv) == 0 {
		return Result{ExitCode: 1}, errors.New("empty command")
	}
	logging.Debug().Strs("argv", argv).Msg("spawn")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	code, err := exitCode(cmd.Run())
	return Result{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: code}, err
}

func (e *Exec) Input(ctx context.Context, stdin io.Reader, argv ...string) (int, error) {
	if len(argv) == 0 {
		return 1, errors.New("empty command")
	}
	logging.Debug().Strs("argv", argv).Msg("spawn with stdin")

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = stdin
	return exitCode(cmd.Run())
}

// Has reports whether name resolves on PATH.
func Has(r Runner, name string) bool {
	_, err := r.LookPath(name)
	return err == nil
}

// Lines splits command output into trimmed, non-empty lines.
func Lines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// killed by a signal
			code = 1
		}
		return code, nil
	}
	return 1, err
}
