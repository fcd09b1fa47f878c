package ui

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rivo/tview"

	"shellkit/internal/docker"
	"shellkit/internal/filter"
)

func TestRestoreSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		selectedRow int
		total       int
		wantRow     int
	}{
		{"empty", 5, 0, 0},
		{"valid", 3, 5, 3},
		{"lessThanOne", 0, 4, 1},
		{"greaterThanTotal", 10, 2, 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			testUI := &UI{table: tview.NewTable()}
			testUI.table.Select(9, 0)
			testUI.restoreSelection(tt.selectedRow, tt.total)
			row, _ := testUI.table.GetSelection()
			if row != tt.wantRow {
				t.Fatalf("restoreSelection row = %d, want %d", row, tt.wantRow)
			}
		})
	}
}

func TestBuildRows(t *testing.T) {
	t.Parallel()

	containers := []docker.ContainerInfo{
		{ID: "c1", Names: "web", Image: "nginx:1.27", State: "running"},
		{ID: "c2", Names: "db", Image: "postgres:16", State: "exited"},
	}
	images := []docker.ImageInfo{
		{ID: "i1", Repository: "nginx", Tag: "1.27"},
		{ID: "i2", Repository: "redis", Tag: "7"},
	}

	rows := buildRows(containers, images, filter.New())
	var got []string
	for _, r := range rows {
		got = append(got, r.line())
	}
	want := []string{"C\t\tc1", "C\t\tc2", "I\t\ti1", "I\t\ti2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("buildRows mismatch (-want +got):\n%s", diff)
	}

	f, err := filter.Parse("nginx")
	if err != nil {
		t.Fatal(err)
	}
	rows = buildRows(containers, images, f)
	if len(rows) != 2 || rows[0].id() != "c1" || rows[1].id() != "i1" {
		t.Fatalf("filtered rows = %+v", rows)
	}
}

func TestRowLinesRoundTripThroughSelection(t *testing.T) {
	t.Parallel()

	c := docker.ContainerInfo{ID: "abc123"}
	img := docker.ImageInfo{ID: "def456", Repository: "app", Tag: "dev"}
	sel := docker.ParseSelection([]string{row{container: &c}.line(), row{image: &img}.line()})
	if diff := cmp.Diff([]string{"abc123"}, sel.Containers); diff != "" {
		t.Fatalf("containers mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"def456"}, sel.Images); diff != "" {
		t.Fatalf("images mismatch (-want +got):\n%s", diff)
	}
}

func TestRowLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		r    row
		want string
	}{
		{"namedContainer", row{container: &docker.ContainerInfo{ID: "c1", Names: "web"}}, "web"},
		{"unnamedContainer", row{container: &docker.ContainerInfo{ID: "c1"}}, "c1"},
		{"taggedImage", row{image: &docker.ImageInfo{ID: "i1", Repository: "nginx", Tag: "latest"}}, "nginx:latest"},
		{"danglingImage", row{image: &docker.ImageInfo{ID: "i1", Repository: "<none>", Tag: "<none>"}}, "i1"},
	}
	for _, tt := range tests {
		if got := tt.r.label(); got != tt.want {
			t.Fatalf("%s: label() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestKeyActionsConfirmDestructive(t *testing.T) {
	t.Parallel()

	for key := range confirmKeys {
		if _, ok := keyActions[key]; !ok {
			t.Fatalf("confirm key %q has no action", key)
		}
	}
	for _, key := range []rune{'d', 'i', 's'} {
		if !confirmKeys[key] {
			t.Fatalf("key %q should ask for confirmation", key)
		}
	}
	if keyActions['R'] != docker.ActionRestart || keyActions['r'] != docker.ActionRun {
		t.Fatalf("restart/run keys mapped wrong: %v", keyActions)
	}
}
