// Package console prints the human-facing status lines of shellkit and asks
// for y/N confirmation before destructive operations.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	commandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#737373"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ECE6A"))

	warnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#E0AF68"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))
)

var yes = regexp.MustCompile(`^[Yy]$`)

// Console writes status lines and reads confirmations.
type Console struct {
	Out io.Writer
	Err io.Writer
	in  *bufio.Reader
}

// New returns a Console over the given streams.
func New(in io.Reader, out, errOut io.Writer) *Console {
	return &Console{Out: out, Err: errOut, in: bufio.NewReader(in)}
}

// Println writes a plain line to stdout.
func (c *Console) Println(a ...any) {
	fmt.Fprintln(c.Out, a...)
}

// Printf writes formatted text to stdout.
func (c *Console) Printf(format string, a ...any) {
	fmt.Fprintf(c.Out, format, a...)
}

// Command echoes a command line before it runs, shell-trace style.
func (c *Console) Command(argv ...string) {
	fmt.Fprintln(c.Out, commandStyle.Render("+ "+strings.Join(argv, " ")))
}

// Success prints a ✅ line.
func (c *Console) Success(format string, a ...any) {
	fmt.Fprintln(c.Out, successStyle.Render("✅ "+fmt.Sprintf(format, a...)))
}

// Warn prints a ⚠️ line.
func (c *Console) Warn(format string, a ...any) {
	fmt.Fprintln(c.Out, warnStyle.Render("⚠️  "+fmt.Sprintf(format, a...)))
}

// Fail prints a ❌ line to stdout; used for outcomes that are reported but
// are not command errors, like a cancelled prompt.
func (c *Console) Fail(format string, a ...any) {
	fmt.Fprintln(c.Out, errorStyle.Render("❌ "+fmt.Sprintf(format, a...)))
}

// Error prints a ❌ line to stderr.
func (c *Console) Error(format string, a ...any) {
	fmt.Fprintln(c.Err, errorStyle.Render("❌ "+fmt.Sprintf(format, a...)))
}

// Confirm prints prompt and reads one line. Only a lone "y" or "Y" confirms;
// end of input counts as "no".
func (c *Console) Confirm(prompt string) (bool, error) {
	fmt.Fprint(c.Out, warnStyle.Render("⚠️  "+prompt)+" [y/N] ")
	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	if err == io.EOF && line == "" {
		fmt.Fprintln(c.Out)
	}
	return yes.MatchString(strings.TrimSpace(line)), nil
}

// Interactive reports whether f is attached to a terminal.
func Interactive(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
