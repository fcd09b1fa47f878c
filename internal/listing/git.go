package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"shellkit/internal/icons"
	"shellkit/internal/shell"
)

// ErrNotRepository is returned when git status fails, usually because the
// working directory is not inside a repository.
var ErrNotRepository = errors.New("git status failed")

// GitEntry is one line of `git status --short`.
type GitEntry struct {
	Status string // the XY columns plus the separating space
	Path   string
}

// Staged reports whether the index column carries a change.
func (e GitEntry) Staged() bool {
	return len(e.Status) > 0 && e.Status[0] != ' ' && e.Status[0] != '?'
}

// GitStatus runs git status in the current directory and returns its
// entries sorted by path.
func GitStatus(ctx context.Context, r shell.Runner) ([]GitEntry, error) {
	res, err := r.Output(ctx, "git", "-c", "core.quotepath=false", "status", "--short")
	if err != nil {
		return nil, fmt.Errorf("run git: %w", err)
	}
	if res.ExitCode != 0 {
		return nil, ErrNotRepository
	}
	return ParseGitStatus(res.Stdout), nil
}

// ParseGitStatus parses `git status --short` output.
func ParseGitStatus(out string) []GitEntry {
	var entries []GitEntry
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		status, rest := line, ""
		if len(line) > 3 {
			status, rest = line[:3], line[3:]
		}
		entries = append(entries, GitEntry{Status: status, Path: unquotePath(rest)})
	}

	col := collate.New(language.English)
	sort.SliceStable(entries, func(i, j int) bool {
		return col.CompareString(entries[i].Path, entries[j].Path) < 0
	})
	return entries
}

// unquotePath undoes git's quoting of paths with special characters.
func unquotePath(raw string) string {
	p := strings.TrimSpace(raw)
	if len(p) >= 2 && strings.HasPrefix(p, `"`) {
		p = strings.ReplaceAll(p[1:len(p)-1], `\\`, `\`)
	}
	return p
}

// WriteGitLines writes `<icon>\t<status>\t<path>` per entry.
func WriteGitLines(w io.Writer, entries []GitEntry) error {
	for _, e := range entries {
		icon := icons.GitOther
		if e.Staged() {
			icon = icons.GitStaged
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", icon.Colored(), e.Status, e.Path); err != nil {
			return err
		}
	}
	return nil
}
