// Package icons maps paths and docker objects to Nerd Font glyphs with an
// ANSI color, for fzf lists rendered with --ansi.
package icons

import (
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Icon is a glyph and the color it is drawn in.
type Icon struct {
	Glyph string
	Color color.Attribute
}

// Colored returns the glyph wrapped in ANSI color codes. Colors are forced
// on: the consumer is a pipe into fzf, never a terminal.
func (i Icon) Colored() string {
	c := color.New(i.Color)
	c.EnableColor()
	return c.Sprint(i.Glyph)
}

var (
	Directory = Icon{"\uf07b", color.FgBlue}
	File      = Icon{"\uf15b", color.FgWhite}

	Container = Icon{"\uf308", color.FgCyan}
	Image     = Icon{"\uf1b2", color.FgBlue}

	GitStaged = Icon{"\uf00c", color.FgGreen}
	GitOther  = Icon{"\uf06a", color.FgRed}
)

// byName is matched against the exact base name before any extension lookup.
var byName = []struct {
	name string
	icon Icon
}{
	{"Dockerfile", Icon{"\uf308", color.FgCyan}},
	{"docker-compose.yml", Icon{"\uf308", color.FgCyan}},
	{"Makefile", Icon{"\ue779", color.FgHiBlack}},
	{"package.json", Icon{"\ue71e", color.FgRed}},
	{"go.mod", Icon{"\ue627", color.FgCyan}},
	{".gitignore", Icon{"\ue702", color.FgRed}},
	{"README.md", Icon{"\uf48a", color.FgYellow}},
}

// byExt is keyed by lowercase extension without the dot.
var byExt = []struct {
	ext  string
	icon Icon
}{
	{"go", Icon{"\ue627", color.FgCyan}},
	{"ts", Icon{"\ue628", color.FgBlue}},
	{"tsx", Icon{"\ue7ba", color.FgBlue}},
	{"js", Icon{"\ue74e", color.FgYellow}},
	{"jsx", Icon{"\ue7ba", color.FgCyan}},
	{"vue", Icon{"\ue6a0", color.FgGreen}},
	{"json", Icon{"\ue60b", color.FgYellow}},
	{"md", Icon{"\ue609", color.FgWhite}},
	{"yaml", Icon{"\ue6a8", color.FgMagenta}},
	{"yml", Icon{"\ue6a8", color.FgMagenta}},
	{"toml", Icon{"\ue615", color.FgHiBlack}},
	{"py", Icon{"\ue606", color.FgYellow}},
	{"rs", Icon{"\ue7a8", color.FgRed}},
	{"java", Icon{"\ue738", color.FgRed}},
	{"dart", Icon{"\ue798", color.FgBlue}},
	{"sh", Icon{"\uf489", color.FgGreen}},
	{"zsh", Icon{"\uf489", color.FgGreen}},
	{"html", Icon{"\ue736", color.FgRed}},
	{"css", Icon{"\ue749", color.FgBlue}},
	{"scss", Icon{"\ue603", color.FgMagenta}},
	{"sql", Icon{"\ue706", color.FgYellow}},
	{"xml", Icon{"\uf121", color.FgYellow}},
	{"png", Icon{"\uf1c5", color.FgMagenta}},
	{"jpg", Icon{"\uf1c5", color.FgMagenta}},
	{"svg", Icon{"\uf1c5", color.FgYellow}},
	{"lock", Icon{"\uf023", color.FgHiBlack}},
	{"txt", Icon{"\uf15c", color.FgWhite}},
}

// ForPath returns the icon for path. Directories always get the folder icon.
func ForPath(path string, isDir bool) Icon {
	if isDir {
		return Directory
	}

	base := filepath.Base(path)
	for _, row := range byName {
		if row.name == base {
			return row.icon
		}
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))
	if ext == "" {
		return File
	}
	for _, row := range byExt {
		if row.ext == ext {
			return row.icon
		}
	}
	return File
}
