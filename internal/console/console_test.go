package console

import (
	"bytes"
	"strings"
	"testing"
)

func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"lowerY", "y\n", true},
		{"upperY", "Y\n", true},
		{"paddedY", "  y  \n", true},
		{"yes", "yes\n", false},
		{"n", "n\n", false},
		{"empty", "\n", false},
		{"eof", "", false},
		{"noNewline", "y", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			c := New(strings.NewReader(tt.input), &out, &out)
			got, err := c.Confirm("delete?")
			if err != nil {
				t.Fatalf("Confirm() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), "delete? [y/N]") {
				t.Fatalf("prompt not printed: %q", out.String())
			}
		})
	}
}

func TestConfirmReadsOneLinePerCall(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	c := New(strings.NewReader("y\nn\n"), &out, &out)
	first, _ := c.Confirm("one?")
	second, _ := c.Confirm("two?")
	if !first || second {
		t.Fatalf("got (%v, %v), want (true, false)", first, second)
	}
}

func TestStatusLines(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	c := New(strings.NewReader(""), &out, &errOut)
	c.Command("pnpm", "add", "react")
	c.Success("done")
	c.Error("boom %d", 1)

	if !strings.Contains(out.String(), "+ pnpm add react") {
		t.Fatalf("command echo missing: %q", out.String())
	}
	if !strings.Contains(out.String(), "✅ done") {
		t.Fatalf("success line missing: %q", out.String())
	}
	if !strings.Contains(errOut.String(), "❌ boom 1") {
		t.Fatalf("error line missing from stderr: %q", errOut.String())
	}
}
