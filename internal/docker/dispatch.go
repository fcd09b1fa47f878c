package docker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"shellkit/internal/logging"
	"shellkit/internal/shell"
)

// Engine is the subset of Client used by dispatch and the browse UI.
type Engine interface {
	ListContainers(ctx context.Context, all bool) ([]ContainerInfo, error)
	ListImages(ctx context.Context) ([]ImageInfo, error)
	StartContainer(ctx context.Context, id string) error
	StopContainer(ctx context.Context, id string) error
	RestartContainer(ctx context.Context, id string) error
	RemoveContainer(ctx context.Context, id string) error
	RemoveImage(ctx context.Context, id string) error
}

// Actions accepted by Dispatch.
const (
	ActionLogs    = "logs"
	ActionExec    = "exec"
	ActionCopy    = "copy"
	ActionStop    = "stop"
	ActionRun     = "run"
	ActionRestart = "restart"
	ActionDelete  = "delete"
	ActionImage   = "image"
)

var actions = []string{ActionLogs, ActionExec, ActionCopy, ActionStop, ActionRun, ActionRestart, ActionDelete, ActionImage}

// ErrImageOnContainers is returned by the image action when only containers
// were selected.
var ErrImageOnContainers = errors.New("rmi only applies to images; select a line under " + ImagesHeader)

// UnknownActionError names an action Dispatch does not know.
type UnknownActionError struct {
	Action     string
	Suggestion string
}

func (e *UnknownActionError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("Unknown action: %s (did you mean %q?)", e.Action, e.Suggestion)
	}
	return "Unknown action: " + e.Action
}

// Dispatcher runs an action against a selection.
type Dispatcher struct {
	Engine Engine
	Runner shell.Runner
	Stderr io.Writer
	// Sudo prefixes the interactive docker CLI calls with sudo.
	Sudo bool
	GOOS string
}

// NewDispatcher returns a Dispatcher for the current platform.
func NewDispatcher(engine Engine, r shell.Runner, stderr io.Writer, sudo bool) *Dispatcher {
	return &Dispatcher{Engine: engine, Runner: r, Stderr: stderr, Sudo: sudo, GOOS: runtime.GOOS}
}

// Dispatch parses lines and runs action. The returned code is the process
// exit status; an error is returned only for an unknown action or a
// misdirected rmi.
func (d *Dispatcher) Dispatch(ctx context.Context, action string, lines []string) (int, error) {
	sel := ParseSelection(lines)
	logging.Debug().Str("action", action).Strs("containers", sel.Containers).Strs("images", sel.Images).Msg("dispatch")

	switch action {
	case ActionLogs:
		if len(sel.Containers) == 0 {
			return 0, nil
		}
		return d.interactive(ctx, "logs", "-f", sel.Containers[0])
	case ActionExec:
		if len(sel.Containers) == 0 {
			return 0, nil
		}
		return d.Exec(ctx, sel.Containers[0])
	case ActionCopy:
		id := sel.First()
		if id == "" {
			return 0, nil
		}
		d.Copy(ctx, id)
		return 0, nil
	case ActionStop:
		return d.each(ctx, "stop", sel.Containers, d.Engine.StopContainer), nil
	case ActionRun:
		return d.each(ctx, "start", sel.Containers, d.Engine.StartContainer), nil
	case ActionRestart:
		return d.each(ctx, "restart", sel.Containers, d.Engine.RestartContainer), nil
	case ActionDelete:
		code := d.each(ctx, "stop", sel.Containers, d.Engine.StopContainer)
		if rm := d.each(ctx, "rm", sel.Containers, d.Engine.RemoveContainer); rm != 0 {
			code = rm
		}
		return code, nil
	case ActionImage:
		if len(sel.Containers) > 0 && len(sel.Images) == 0 {
			return 1, ErrImageOnContainers
		}
		return d.each(ctx, "rmi", sel.Images, d.Engine.RemoveImage), nil
	default:
		return 1, &UnknownActionError{Action: action, Suggestion: suggest(action)}
	}
}

// each applies fn to every id, reporting failures and carrying on.
func (d *Dispatcher) each(ctx context.Context, verb string, ids []string, fn func(context.Context, string) error) int {
	code := 0
	for _, id := range ids {
		if err := fn(ctx, id); err != nil {
			fmt.Fprintf(d.Stderr, "docker %s %s: %v\n", verb, id, err)
			code = 1
		}
	}
	return code
}

func (d *Dispatcher) dockerArgv(args ...string) []string {
	argv := []string{"docker"}
	if d.Sudo {
		argv = []string{"sudo", "docker"}
	}
	return append(argv, args...)
}

func (d *Dispatcher) interactive(ctx context.Context, args ...string) (int, error) {
	code, err := d.Runner.Interactive(ctx, "", d.dockerArgv(args...)...)
	if err != nil {
		fmt.Fprintf(d.Stderr, "docker %s: %v\n", args[0], err)
		return 1, nil
	}
	return code, nil
}

// Exec opens bash in the container, falling back to sh when bash fails.
func (d *Dispatcher) Exec(ctx context.Context, id string) (int, error) {
	code, err := d.interactive(ctx, "exec", "-it", id, "bash")
	if err != nil || code == 0 {
		return code, err
	}
	return d.interactive(ctx, "exec", "-it", id, "sh")
}

// clipboards lists clipboard writers to try, in order.
func (d *Dispatcher) clipboards() [][]string {
	if d.GOOS == "darwin" {
		return [][]string{{"pbcopy"}}
	}
	return [][]string{{"wl-copy"}, {"xclip", "-selection", "clipboard"}, {"clip.exe"}}
}

// Copy puts id on the clipboard when a clipboard tool exists and always
// reports the ID on stderr, since stdout may not be usable inside fzf.
func (d *Dispatcher) Copy(ctx context.Context, id string) {
	for _, argv := range d.clipboards() {
		if !shell.Has(d.Runner, argv[0]) {
			continue
		}
		if code, err := d.Runner.Input(ctx, strings.NewReader(id), argv...); err != nil || code != 0 {
			logging.Debug().Strs("argv", argv).Int("code", code).Err(err).Msg("clipboard write failed")
			continue
		}
		break
	}
	fmt.Fprintf(d.Stderr, "Copied: %s\n", id)
}

// suggest returns the closest known action within two edits.
func suggest(action string) string {
	type candidate struct {
		name string
		dist int
	}
	var cands []candidate
	for _, a := range actions {
		if dist := levenshtein.ComputeDistance(strings.ToLower(action), a); dist <= 2 {
			cands = append(cands, candidate{a, dist})
		}
	}
	if len(cands) == 0 {
		return ""
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })
	return cands[0].name
}
