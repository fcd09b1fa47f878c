package shell

import (
	"context"
	"io"
	"os/exec"
	"strings"
)

// Fake is a scripted Runner for tests in other packages.
type Fake struct {
	// Paths lists the binaries that LookPath resolves.
	Paths map[string]bool
	// Results maps a space-joined argv to its canned result.
	Results map[string]Result
	// Codes maps a space-joined argv to the exit code of an interactive run.
	Codes map[string]int
	// Calls records every argv run, space-joined, in order.
	Calls []string
	// Dirs records the working directory of each interactive run.
	Dirs []string
	// Stdin records what each Input call was fed.
	Stdin []string
}

func (f *Fake) LookPath(name string) (string, error) {
	if f.Paths[name] {
		return "/usr/bin/" + name, nil
	}
	return "", exec.ErrNotFound
}

func (f *Fake) Interactive(_ context.Context, dir string, argv ...string) (int, error) {
	key := strings.Join(argv, " ")
	f.Calls = append(f.Calls, key)
	f.Dirs = append(f.Dirs, dir)
	return f.Codes[key], nil
}

func (f *Fake) Output(_ context.Context, argv ...string) (Result, error) {
	key := strings.Join(argv, " ")
	f.Calls = append(f.Calls, key)
	return f.Results[key], nil
}

func (f *Fake) Input(_ context.Context, stdin io.Reader, argv ...string) (int, error) {
	key := strings.Join(argv, " ")
	f.Calls = append(f.Calls, key)
	data, _ := io.ReadAll(stdin)
	f.Stdin = append(f.Stdin, string(data))
	return f.Codes[key], nil
}
