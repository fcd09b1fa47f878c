package docker

import (
	"context"
	"testing"
	"time"
)

func TestShortImageID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"sha256WithLongDigest", "sha256:1234567890abcdef", "1234567890ab"},
		{"sha256ShortDigest", "sha256:abc", "abc"},
		{"noPrefixLong", "abcdef1234567890", "abcdef123456"},
		{"noPrefixShort", "tiny", "tiny"},
		{"containerID", "4f66ad9a0b2e8f3c1d5e6a7b", "4f66ad9a0b2e"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := shortImageID(tt.input)
			if got != tt.want {
				t.Fatalf("shortImageID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatRelativeDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input time.Duration
		want  string
	}{
		{"justNow", 30 * time.Second, "just now"},
		{"oneMinute", time.Minute, "1m ago"},
		{"multiMinutes", 5 * time.Minute, "5m ago"},
		{"hours", 3 * time.Hour, "3h ago"},
		{"days", 72 * time.Hour, "3d ago"},
		{"weeks", 15 * 24 * time.Hour, "2w ago"},
		{"months", 90 * 24 * time.Hour, "3mo ago"},
		{"years", 800 * 24 * time.Hour, "2y ago"},
		{"negative", -2 * time.Hour, "2h ago"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := formatRelativeDuration(tt.input)
			if got != tt.want {
				t.Fatalf("formatRelativeDuration(%s) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTimeoutCtx(t *testing.T) {
	t.Parallel()

	checkDeadline := func(t *testing.T, d time.Duration, tolerance time.Duration) {
		ctx, cancel := timeoutCtx(context.Background(), d)
		t.Cleanup(cancel)

		deadline, ok := ctx.Deadline()
		if !ok {
			t.Fatalf("deadline not set for duration %s", d)
		}

		remaining := time.Until(deadline)
		if remaining > d+tolerance {
			t.Fatalf("deadline too far: got %s want <= %s", remaining, d+tolerance)
		}
	}

	t.Run("customDuration", func(t *testing.T) {
		t.Parallel()
		checkDeadline(t, 200*time.Millisecond, 50*time.Millisecond)
	})

	t.Run("parentDeadlineWins", func(t *testing.T) {
		t.Parallel()
		parent, cancelParent := context.WithTimeout(context.Background(), 100*time.Millisecond)
		t.Cleanup(cancelParent)
		ctx, cancel := timeoutCtx(parent, time.Hour)
		t.Cleanup(cancel)

		deadline, _ := ctx.Deadline()
		if time.Until(deadline) > 150*time.Millisecond {
			t.Fatalf("child outlives parent deadline: %s", time.Until(deadline))
		}
	})

	t.Run("defaultDuration", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := timeoutCtx(context.Background(), 0)
		t.Cleanup(cancel)

		deadline, ok := ctx.Deadline()
		if !ok {
			t.Fatalf("expected deadline for default duration")
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			t.Fatalf("deadline already expired")
		}
		if remaining < defaultTimeout-50*time.Millisecond || remaining > defaultTimeout+50*time.Millisecond {
			t.Fatalf("default deadline outside tolerance: got %s", remaining)
		}
	})
}

func TestFormatAsJSON(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		input := struct {
			A string
			B int
		}{A: "foo", B: 42}
		got, err := formatAsJSON(input)
		if err != nil {
			t.Fatalf("formatAsJSON() unexpected error: %v", err)
		}
		want := "{\n  \"A\": \"foo\",\n  \"B\": 42\n}"
		if got != want {
			t.Fatalf("formatAsJSON() = %q, want %q", got, want)
		}
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()
		_, err := formatAsJSON(make(chan int))
		if err == nil {
			t.Fatalf("expected error for unsupported type")
		}
	})
}

func TestSplitRepoTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  [2]string
	}{
		{"nginx:1.27", [2]string{"nginx", "1.27"}},
		{"localhost:5000/app:dev", [2]string{"localhost:5000/app", "dev"}},
		{"localhost:5000/app", [2]string{"localhost:5000/app", "<none>"}},
		{"ghcr.io/acme/tool:v1.2.3", [2]string{"ghcr.io/acme/tool", "v1.2.3"}},
	}

	for _, tt := range tests {
		if got := splitRepoTag(tt.input); got != tt.want {
			t.Fatalf("splitRepoTag(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestImageRefs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		tags    []string
		digests []string
		want    [][2]string
	}{
		{"twoTags", []string{"app:1", "app:latest"}, nil, [][2]string{{"app", "1"}, {"app", "latest"}}},
		{"danglingWithDigest", nil, []string{"app@sha256:abc"}, [][2]string{{"app", "<none>"}}},
		{"noneTag", []string{"<none>:<none>"}, []string{"<none>@<none>"}, [][2]string{{"<none>", "<none>"}}},
		{"nothing", nil, nil, [][2]string{{"<none>", "<none>"}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := imageRefs(tt.tags, tt.digests)
			if len(got) != len(tt.want) {
				t.Fatalf("imageRefs() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("imageRefs()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestContainerNames(t *testing.T) {
	t.Parallel()

	got := containerNames([]string{"/web", "/db/alias", "/worker"})
	if got != "web,worker" {
		t.Fatalf("containerNames() = %q, want %q", got, "web,worker")
	}
}

func TestHumanSize(t *testing.T) {
	t.Parallel()

	tests := map[int64]string{
		0:          "0B",
		999:        "999B",
		187000000:  "187MB",
		1234567890: "1.23GB",
	}
	for in, want := range tests {
		if got := humanSize(in); got != want {
			t.Fatalf("humanSize(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestImageInfoRef(t *testing.T) {
	t.Parallel()

	if got := (ImageInfo{ID: "abc", Repository: "app", Tag: "1"}).Ref(); got != "app:1" {
		t.Fatalf("Ref() = %q", got)
	}
	if got := (ImageInfo{ID: "abc", Repository: "app", Tag: "<none>"}).Ref(); got != "abc" {
		t.Fatalf("Ref() = %q", got)
	}
}
