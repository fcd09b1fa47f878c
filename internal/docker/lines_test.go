package docker

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"shellkit/internal/icons"
)

func TestWriteList(t *testing.T) {
	t.Parallel()

	containers := []ContainerInfo{{ID: "aaaaaaaaaaaa", Image: "nginx:1.27", Status: "Up 2 hours", Names: "web"}}
	images := []ImageInfo{{ID: "bbbbbbbbbbbb", Repository: "nginx", Tag: "1.27", Size: "187MB"}}

	var buf bytes.Buffer
	if err := WriteList(&buf, containers, images); err != nil {
		t.Fatalf("WriteList() unexpected error: %v", err)
	}

	want := strings.Join([]string{
		"=== CONTAINERS ===",
		"C\t" + icons.Container.Colored() + "\taaaaaaaaaaaa\tnginx:1.27\tUp 2 hours\tweb",
		"",
		"=== IMAGES ===",
		"I\t" + icons.Image.Colored() + "\tbbbbbbbbbbbb\tnginx\t1.27\t187MB",
		"",
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("WriteList() mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteListEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteList(&buf, nil, nil); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "=== CONTAINERS ===\n\n=== IMAGES ===\n" {
		t.Fatalf("WriteList() = %q", got)
	}
}

func TestWriteContainers(t *testing.T) {
	t.Parallel()

	containers := []ContainerInfo{{ID: "abc", Image: "redis", Status: "Exited (0) 1 day ago", Names: "cache"}}

	var running, all bytes.Buffer
	if err := WriteContainers(&running, containers, false); err != nil {
		t.Fatal(err)
	}
	if err := WriteContainers(&all, containers, true); err != nil {
		t.Fatal(err)
	}
	if got := running.String(); got != "abc\tredis\tcache\n" {
		t.Fatalf("running = %q", got)
	}
	if got := all.String(); got != "abc\tredis\tExited (0) 1 day ago\tcache\n" {
		t.Fatalf("all = %q", got)
	}
}

func TestParseSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lines []string
		want  Selection
	}{
		{
			name:  "mixed",
			lines: []string{"C\ticon\tc1\tnginx", "I\ticon\ti1\tnginx\tlatest", "C\ticon\tc2"},
			want:  Selection{Containers: []string{"c1", "c2"}, Images: []string{"i1"}},
		},
		{
			name:  "headersAndBlanks",
			lines: []string{ContainersHeader, "", "   ", ImagesHeader},
			want:  Selection{},
		},
		{
			name:  "tooFewFields",
			lines: []string{"C\ticon", "I"},
			want:  Selection{},
		},
		{
			name:  "emptyID",
			lines: []string{"C\ticon\t\tnginx"},
			want:  Selection{},
		},
		{
			name:  "unknownTag",
			lines: []string{"X\ticon\tid"},
			want:  Selection{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParseSelection(tt.lines)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("ParseSelection() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSelectionFirst(t *testing.T) {
	t.Parallel()

	if got := (Selection{Containers: []string{"c"}, Images: []string{"i"}}).First(); got != "c" {
		t.Fatalf("First() = %q, want c", got)
	}
	if got := (Selection{Images: []string{"i"}}).First(); got != "i" {
		t.Fatalf("First() = %q, want i", got)
	}
	if got := (Selection{}).First(); got != "" {
		t.Fatalf("First() = %q, want empty", got)
	}
}
