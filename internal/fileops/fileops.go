// Package fileops implements the rmr and rme bulk removal helpers.
package fileops

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"shellkit/internal/console"
	"shellkit/internal/logging"
)

// ErrNotDirectory is returned when the rmr root is missing or not a directory.
var ErrNotDirectory = errors.New("directory does not exist")

// Remover deletes files after asking for confirmation.
type Remover struct {
	Fs      afero.Fs
	Console *console.Console
}

// New returns a Remover over the OS filesystem.
func New(con *console.Console) *Remover {
	return &Remover{Fs: afero.NewOsFs(), Console: con}
}

// Matches walks root and returns every path whose base name matches one of
// patterns. Hidden and ignored entries are included. Paths are ordered by
// pattern, then by walk order, each listed once.
func (r *Remover) Matches(root string, patterns []string) ([]string, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
	}
	if ok, _ := afero.IsDir(r.Fs, root); !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	var all []string
	err := afero.Walk(r.Fs, root, func(path string, _ fs.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if path != root {
			all = append(all, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	seen := make(map[string]bool)
	var out []string
	for _, p := range patterns {
		for _, path := range all {
			if seen[path] {
				continue
			}
			if ok, _ := doublestar.Match(p, filepath.Base(path)); ok {
				seen[path] = true
				out = append(out, path)
			}
		}
	}
	return out, nil
}

// Rmr removes every match of patterns under root once the user confirms.
func (r *Remover) Rmr(root string, patterns []string) error {
	r.Console.Println("🔍 searching " + root + " for: " + strings.Join(patterns, " "))

	targets, err := r.Matches(root, patterns)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		r.Console.Println("🗂️  no matching files")
		return nil
	}

	r.Console.Printf("🗑️  will delete %d entries:\n", len(targets))
	for _, t := range targets {
		r.Console.Println("   " + t)
	}
	r.Console.Println()

	ok, err := r.Console.Confirm("confirm deletion?")
	if err != nil {
		return err
	}
	if !ok {
		r.Console.Fail("cancelled")
		return nil
	}

	r.Console.Println("🚀 deleting...")
	failed := 0
	for _, t := range targets {
		r.Console.Println("   delete: " + t)
		if err := r.Fs.RemoveAll(t); err != nil {
			r.Console.Error("delete %s: %v", t, err)
			failed++
		}
	}
	return r.finish(failed)
}

// Keepers returns the entries of dir that match none of keep.
func (r *Remover) Keepers(dir string, keep []string) ([]string, error) {
	for _, k := range keep {
		if !doublestar.ValidatePattern(k) {
			return nil, fmt.Errorf("invalid pattern %q", k)
		}
	}
	entries, err := afero.ReadDir(r.Fs, dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var doomed []string
	for _, e := range entries {
		if !matchesAny(keep, e.Name()) {
			doomed = append(doomed, e.Name())
		}
	}
	return doomed, nil
}

func matchesAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Rme removes every top-level entry of dir except those matching keep.
func (r *Remover) Rme(dir string, keep []string) error {
	r.Console.Println("🔍 deleting everything in the current directory except:")
	for _, k := range keep {
		r.Console.Println("   ✓ " + k)
	}
	r.Console.Println()

	ok, err := r.Console.Confirm("confirm deletion?")
	if err != nil {
		return err
	}
	if !ok {
		r.Console.Fail("cancelled")
		return nil
	}

	doomed, err := r.Keepers(dir, keep)
	if err != nil {
		return err
	}
	logging.Debug().Strs("entries", doomed).Msg("rme")

	r.Console.Println("🚀 deleting...")
	failed := 0
	for _, name := range doomed {
		if err := r.Fs.RemoveAll(filepath.Join(dir, name)); err != nil {
			r.Console.Error("delete %s: %v", name, err)
			failed++
		}
	}
	return r.finish(failed)
}

func (r *Remover) finish(failed int) error {
	if failed > 0 {
		return fmt.Errorf("%d entries could not be deleted", failed)
	}
	r.Console.Println("🎉 done!")
	return nil
}
