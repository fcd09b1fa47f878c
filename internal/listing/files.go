// Package listing produces the icon-prefixed lines behind the fzf file,
// grep and git widgets.
package listing

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"shellkit/internal/icons"
	"shellkit/internal/logging"
	"shellkit/internal/shell"
)

// FieldSep separates the icon column from the path. A control character
// keeps the icon column one cell wide for fzf's --delimiter.
const FieldSep = "\x01"

// TypeFilter restricts a listing to directories, files, or both.
type TypeFilter string

const (
	TypeDir  TypeFilter = "d"
	TypeFile TypeFilter = "f"
	TypeAll  TypeFilter = "a"
)

// ParseTypeFilter maps d/f/a; anything else lists everything.
func ParseTypeFilter(s string) TypeFilter {
	switch TypeFilter(s) {
	case TypeDir, TypeFile:
		return TypeFilter(s)
	}
	return TypeAll
}

// Lister lists paths under a directory.
type Lister struct {
	Runner shell.Runner
	Fs     afero.Fs
}

// List returns the paths under dir, sorted in English collation order.
// fd is used when installed; otherwise dir is walked directly.
func (l Lister) List(ctx context.Context, dir string, typ TypeFilter) ([]string, error) {
	var (
		paths []string
		err   error
	)
	if shell.Has(l.Runner, "fd") {
		paths, err = l.listFd(ctx, dir, typ)
	} else {
		logging.Debug().Str("dir", dir).Msg("fd not found, walking directory")
		paths, err = l.walk(dir, typ)
	}
	if err != nil {
		return nil, err
	}
	SortPaths(paths)
	return paths, nil
}

func (l Lister) listFd(ctx context.Context, dir string, typ TypeFilter) ([]string, error) {
	argv := []string{"fd", ".", dir, "--color", "never", "--follow", "--hidden", "--exclude", ".git"}
	if typ != TypeAll {
		argv = append(argv, "--type", string(typ))
	}
	res, err := l.Runner.Output(ctx, argv...)
	if err != nil {
		return nil, fmt.Errorf("run fd: %w", err)
	}
	if res.ExitCode != 0 {
		return nil, nil
	}
	return shell.Lines(res.Stdout), nil
}

func (l Lister) walk(dir string, typ TypeFilter) ([]string, error) {
	var paths []string
	err := afero.Walk(l.Fs, dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			// unreadable entries are skipped, like find does
			return nil
		}
		if path == dir {
			return nil
		}
		if info.Name() == ".git" {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		switch {
		case typ == TypeDir && !info.IsDir():
			return nil
		case typ == TypeFile && !info.Mode().IsRegular():
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return paths, nil
}

// SortPaths sorts in place using English collation, the order a
// locale-aware `sort` gives.
func SortPaths(paths []string) {
	collate.New(language.English).SortStrings(paths)
}

// WriteIconLines writes `<colored icon>\x01<path>` for each path. isDir is
// resolved against fsys.
func WriteIconLines(w io.Writer, fsys afero.Fs, paths []string) error {
	bw := bufio.NewWriter(w)
	for _, p := range paths {
		isDir, _ := afero.IsDir(fsys, p)
		fmt.Fprintf(bw, "%s%s%s\n", icons.ForPath(p, isDir).Colored(), FieldSep, p)
	}
	return bw.Flush()
}

// AnnotateGrep prefixes every non-empty `path:line:col:text` line read from r
// with the icon of its path. Lines have no length limit and the last one
// may lack a newline.
func AnnotateGrep(r io.Reader, w io.Writer) error {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)
	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("read input: %w", err)
		}
		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
		if line != "" {
			path := line
			if idx := strings.IndexByte(line, ':'); idx >= 0 {
				path = line[:idx]
			}
			fmt.Fprintf(bw, "%s%s%s\n", icons.ForPath(path, false).Colored(), FieldSep, line)
		}
		if err == io.EOF {
			return bw.Flush()
		}
	}
}

// Abs resolves the path part of `path[:line[:col]]` to an absolute path,
// keeping everything after the first colon unchanged.
func Abs(input string) (string, error) {
	p, rest, hasSuffix := strings.Cut(input, ":")
	if p == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		p = wd
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if hasSuffix {
		return abs + ":" + rest, nil
	}
	return abs, nil
}
