// Package process finds processes by name, port or PID and terminates them,
// escalating from SIGTERM to SIGKILL for the ones that ignore the first signal.
package process

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"

	"shellkit/internal/logging"
	"shellkit/internal/shell"
)

var (
	ErrPgrepMissing = errors.New("pgrep not found")
	ErrLsofMissing  = errors.New("lsof not found")
)

var digits = regexp.MustCompile(`^[0-9]+$`)

// NumberError reports an argument that had to be all digits, or whose value
// fell outside what the kernel accepts.
type NumberError struct {
	Label      string
	Value      string
	OutOfRange bool
}

func (e *NumberError) Error() string {
	if e.OutOfRange {
		return fmt.Sprintf("%s must be between 1 and %d: %s", e.Label, math.MaxInt32, e.Value)
	}
	return fmt.Sprintf("%s must be a number: %s", e.Label, e.Value)
}

// Resolver turns names, ports and PID strings into PIDs.
type Resolver struct {
	Runner shell.Runner
	// ProcPorts resolves a port without lsof. Nil disables the fallback.
	ProcPorts func(port int) ([]int, error)
	// Self is excluded from name matches; pgrep -f would otherwise find us.
	Self int
}

// NewResolver returns a Resolver using the platform's /proc fallback.
func NewResolver(r shell.Runner) *Resolver {
	return &Resolver{Runner: r, ProcPorts: procPortPIDs, Self: os.Getpid()}
}

// ByName returns the PIDs whose full command line matches pattern.
func (r *Resolver) ByName(ctx context.Context, pattern string) ([]int, error) {
	if !shell.Has(r.Runner, "pgrep") {
		return nil, ErrPgrepMissing
	}
	res, err := r.Runner.Output(ctx, "pgrep", "-f", pattern)
	if err != nil {
		return nil, fmt.Errorf("run pgrep: %w", err)
	}
	var pids []int
	for _, pid := range parsePIDLines(res.Stdout) {
		if pid != r.Self {
			pids = append(pids, pid)
		}
	}
	return pids, nil
}

// ByPort returns the PIDs holding a socket on port.
func (r *Resolver) ByPort(ctx context.Context, port string) ([]int, error) {
	if !digits.MatchString(port) {
		return nil, &NumberError{Label: "port", Value: port}
	}
	if !shell.Has(r.Runner, "lsof") {
		if r.ProcPorts == nil {
			return nil, ErrLsofMissing
		}
		n, err := strconv.Atoi(port)
		if err != nil {
			return nil, &NumberError{Label: "port", Value: port}
		}
		logging.Debug().Int("port", n).Msg("lsof not found, scanning /proc")
		return r.ProcPorts(n)
	}
	res, err := r.Runner.Output(ctx, "lsof", "-ti", ":"+port)
	if err != nil {
		return nil, fmt.Errorf("run lsof: %w", err)
	}
	return parsePIDLines(res.Stdout), nil
}

// ParsePIDs validates PID arguments.
func ParsePIDs(args []string) ([]int, error) {
	pids := make([]int, 0, len(args))
	for _, a := range args {
		if !digits.MatchString(a) {
			return nil, &NumberError{Label: "PID", Value: a}
		}
		pid, ok := parsePID(a)
		if !ok {
			return nil, &NumberError{Label: "PID", Value: a, OutOfRange: true}
		}
		pids = append(pids, pid)
	}
	return pids, nil
}

// parsePIDLines reads one PID per line, dropping duplicates and junk.
func parsePIDLines(out string) []int {
	seen := map[int]bool{}
	var pids []int
	for _, line := range shell.Lines(out) {
		pid, ok := parsePID(line)
		if !ok || seen[pid] {
			continue
		}
		seen[pid] = true
		pids = append(pids, pid)
	}
	return pids
}

// parsePID accepts decimal PIDs that fit pid_t. Anything wider would wrap
// when handed to kill(2), turning 4294967295 into -1.
func parsePID(s string) (int, bool) {
	if !digits.MatchString(s) {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil || n <= 0 {
		return 0, false
	}
	return int(n), true
}
