// Package project detects the kind of project in a directory and the
// package manager it uses, and turns the d/b/i/t shortcuts into commands.
package project

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// Manager is a JavaScript package manager.
type Manager string

const (
	PNPM Manager = "pnpm"
	Bun  Manager = "bun"
	Yarn Manager = "yarn"
	NPM  Manager = "npm"
)

// Kind is the project type, identified by its marker file.
type Kind string

const (
	Node    Kind = "node"
	Maven   Kind = "maven"
	Flutter Kind = "flutter"
)

// markers are checked in order; the first present file decides the kind.
var markers = []struct {
	file string
	kind Kind
}{
	{"package.json", Node},
	{"pom.xml", Maven},
	{"pubspec.yaml", Flutter},
}

// lockfiles pairs each manager with the lockfiles that select it. A lockfile
// only counts when the manager's binary is installed.
var lockfiles = []struct {
	manager Manager
	files   []string
}{
	{PNPM, []string{"pnpm-lock.yaml"}},
	{Bun, []string{"bun.lockb", "bun.lock"}},
	{Yarn, []string{"yarn.lock"}},
}

// LookPathFunc resolves a binary on PATH.
type LookPathFunc func(name string) (string, error)

// Detect picks the package manager for dir: a lockfile whose manager is
// installed wins, then the first installed of pnpm, bun and yarn, then npm.
func Detect(fs afero.Fs, dir string, lookPath LookPathFunc) Manager {
	installed := func(m Manager) bool {
		_, err := lookPath(string(m))
		return err == nil
	}

	for _, lf := range lockfiles {
		for _, name := range lf.files {
			if exists(fs, filepath.Join(dir, name)) && installed(lf.manager) {
				return lf.manager
			}
		}
	}

	for _, m := range []Manager{PNPM, Bun, Yarn} {
		if installed(m) {
			return m
		}
	}
	return NPM
}

// KindOf returns the project kind of dir, or false when no marker exists.
func KindOf(fs afero.Fs, dir string) (Kind, bool) {
	for _, m := range markers {
		if exists(fs, filepath.Join(dir, m.file)) {
			return m.kind, true
		}
	}
	return "", false
}

func exists(fs afero.Fs, path string) bool {
	ok, err := afero.Exists(fs, path)
	return err == nil && ok
}
