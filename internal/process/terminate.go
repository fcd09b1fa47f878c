package process

import (
	"context"
	"strconv"
	"strings"
	"time"

	"shellkit/internal/console"
	"shellkit/internal/logging"
	"shellkit/internal/shell"
)

// Signaler delivers signals and checks liveness.
type Signaler interface {
	Terminate(pid int) error
	Kill(pid int) error
	Alive(pid int) bool
}

// Report is the outcome of Terminate.
type Report struct {
	// Cancelled is set when the user declined the prompt.
	Cancelled bool
	// Remaining holds the PIDs still alive after SIGKILL.
	Remaining []int
}

// Killer runs the show, confirm, TERM, KILL sequence.
type Killer struct {
	Runner    shell.Runner
	Console   *console.Console
	Signals   Signaler
	Sleep     func(time.Duration)
	TermGrace time.Duration
	KillGrace time.Duration
}

// NewKiller returns a Killer that signals real processes.
func NewKiller(r shell.Runner, con *console.Console, termGrace, killGrace time.Duration) *Killer {
	return &Killer{
		Runner:    r,
		Console:   con,
		Signals:   System{},
		Sleep:     time.Sleep,
		TermGrace: termGrace,
		KillGrace: killGrace,
	}
}

// Terminate shows pids, asks for confirmation with message and ends them.
// A PID that no longer exists counts as terminated.
func (k *Killer) Terminate(ctx context.Context, pids []int, message string) (Report, error) {
	if len(pids) == 0 {
		k.Console.Println("no matching process")
		return Report{}, nil
	}

	k.show(ctx, pids)

	ok, err := k.Console.Confirm(message)
	if err != nil {
		return Report{}, err
	}
	if !ok {
		k.Console.Fail("cancelled")
		return Report{Cancelled: true}, nil
	}

	for _, pid := range pids {
		if err := k.Signals.Terminate(pid); err != nil {
			logging.Debug().Int("pid", pid).Err(err).Msg("SIGTERM failed")
		}
	}
	k.Sleep(k.TermGrace)

	if alive := k.alive(pids); len(alive) > 0 {
		k.Console.Warn("some processes ignored SIGTERM, sending SIGKILL...")
		for _, pid := range alive {
			if err := k.Signals.Kill(pid); err != nil {
				logging.Debug().Int("pid", pid).Err(err).Msg("SIGKILL failed")
			}
		}
		k.Sleep(k.KillGrace)
	}

	remaining := k.alive(pids)
	if len(remaining) > 0 {
		k.Console.Fail("could not terminate: %s", joinPIDs(remaining, " "))
	} else {
		k.Console.Success("processes terminated")
	}
	return Report{Remaining: remaining}, nil
}

func (k *Killer) show(ctx context.Context, pids []int) {
	res, err := k.Runner.Output(ctx, "ps", "-p", joinPIDs(pids, ","), "-o", "pid,ppid,user,comm,args")
	out := strings.TrimSpace(res.Stdout)
	if err != nil || out == "" {
		k.Console.Println("no matching process")
		return
	}
	k.Console.Println("Found processes:")
	k.Console.Println(out)
	k.Console.Println()
}

func (k *Killer) alive(pids []int) []int {
	var alive []int
	for _, pid := range pids {
		if k.Signals.Alive(pid) {
			alive = append(alive, pid)
		}
	}
	return alive
}

func joinPIDs(pids []int, sep string) string {
	parts := make([]string, len(pids))
	for i, pid := range pids {
		parts[i] = strconv.Itoa(pid)
	}
	return strings.Join(parts, sep)
}
