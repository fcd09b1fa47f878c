package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shellkit/internal/config"
	"shellkit/internal/docker"
	"shellkit/internal/hub"
	"shellkit/internal/proxy"
	"shellkit/internal/shell"
)

type fakeDocker struct {
	containers []docker.ContainerInfo
	images     []docker.ImageInfo
	calls      []string
	closed     bool
}

func (f *fakeDocker) ListContainers(_ context.Context, all bool) ([]docker.ContainerInfo, error) {
	if all {
		return f.containers, nil
	}
	var running []docker.ContainerInfo
	for _, c := range f.containers {
		if c.State == "running" {
			running = append(running, c)
		}
	}
	return running, nil
}

func (f *fakeDocker) ListImages(context.Context) ([]docker.ImageInfo, error) { return f.images, nil }

func (f *fakeDocker) StartContainer(_ context.Context, id string) error {
	f.calls = append(f.calls, "start "+id)
	return nil
}

func (f *fakeDocker) StopContainer(_ context.Context, id string) error {
	f.calls = append(f.calls, "stop "+id)
	return nil
}

func (f *fakeDocker) RestartContainer(_ context.Context, id string) error {
	f.calls = append(f.calls, "restart "+id)
	return nil
}

func (f *fakeDocker) RemoveContainer(_ context.Context, id string) error {
	f.calls = append(f.calls, "rm "+id)
	return nil
}

func (f *fakeDocker) RemoveImage(_ context.Context, id string) error {
	f.calls = append(f.calls, "rmi "+id)
	return nil
}

func (f *fakeDocker) ContainerLogs(context.Context, string, string) (string, error) { return "", nil }
func (f *fakeDocker) DescribeContainer(context.Context, string) (string, error)     { return "", nil }
func (f *fakeDocker) DescribeImage(context.Context, string) (string, error)         { return "", nil }

func (f *fakeDocker) Close() error {
	f.closed = true
	return nil
}

// deadOnTerm is a signaler whose processes exit on the first SIGTERM.
type deadOnTerm struct {
	alive map[int]bool
}

func (s *deadOnTerm) Terminate(pid int) error {
	delete(s.alive, pid)
	return nil
}

func (s *deadOnTerm) Kill(pid int) error {
	delete(s.alive, pid)
	return nil
}

func (s *deadOnTerm) Alive(pid int) bool { return s.alive[pid] }

type harness struct {
	deps   *Deps
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	runner *shell.Fake
	engine *fakeDocker
	cfg    config.Config
	// configPath is the last path handed to LoadConfig.
	configPath string
}

func newHarness(t *testing.T, stdin string) *harness {
	t.Helper()
	h := &harness{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		runner: &shell.Fake{},
		engine: &fakeDocker{},
		cfg:    config.Default(),
	}
	h.cfg.Process.TermGrace = 0
	h.cfg.Process.KillGrace = 0
	h.deps = &Deps{
		Stdin:  strings.NewReader(stdin),
		Stdout: h.stdout,
		Stderr: h.stderr,
		Runner: h.runner,
		Fs:     afero.NewMemMapFs(),
		Getwd:  func() (string, error) { return "/w", nil },
		LoadConfig: func(path string) (config.Config, error) {
			h.configPath = path
			return h.cfg, nil
		},
		Docker: func(time.Duration) (DockerEngine, error) {
			return h.engine, nil
		},
	}
	return h
}

func (h *harness) run(args ...string) int {
	return Execute(context.Background(), h.deps, "1.2.3", args)
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantOutput string
	}{
		{"nil", nil, 0, ""},
		{"exitError", &ExitError{Code: 3}, 3, ""},
		{"wrappedExitError", fmt.Errorf("run: %w", &ExitError{Code: 130}), 130, ""},
		{"hubReported", fmt.Errorf("%w", hub.ErrReported), 1, ""},
		{"proxyUsage", fmt.Errorf("%w: bad", proxy.ErrUsage), 1, "invalid arguments: bad\n" + proxy.Usage + "\n"},
		{"other", errors.New("boom"), 1, "boom\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			assert.Equal(t, tt.wantCode, ExitCode(&buf, tt.err))
			assert.Equal(t, tt.wantOutput, buf.String())
		})
	}
}

func TestVersion(t *testing.T) {
	h := newHarness(t, "")
	require.Equal(t, 0, h.run("--version"))
	assert.Contains(t, h.stdout.String(), "1.2.3")
}

func TestDevInstallWithPackages(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, afero.WriteFile(h.deps.Fs, "/w/package.json", []byte("{}"), 0o644))
	require.NoError(t, afero.WriteFile(h.deps.Fs, "/w/pnpm-lock.yaml", nil, 0o644))
	h.runner.Paths = map[string]bool{"pnpm": true}

	require.Equal(t, 0, h.run("dev", "i", "react", "--save-exact"))
	assert.Equal(t, []string{"pnpm add react --save-exact"}, h.runner.Calls)
	assert.Equal(t, []string{"/w"}, h.runner.Dirs)
}

func TestDevPropagatesExitCode(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, afero.WriteFile(h.deps.Fs, "/w/pom.xml", nil, 0o644))
	h.runner.Codes = map[string]int{"mvn test": 4}

	assert.Equal(t, 4, h.run("dev", "t"))
}

func TestDevWithoutProject(t *testing.T) {
	h := newHarness(t, "")
	assert.Equal(t, 1, h.run("dev", "d"))
	assert.Contains(t, h.stderr.String(), "no supported project file")
	assert.Empty(t, h.runner.Calls)
}

func TestDevAcceptsRootFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"beforeCommand", []string{"--log-level", "debug", "--config", "/etc/sk.yaml", "dev", "i", "react"}},
		{"afterCommand", []string{"dev", "--log-level=debug", "--config=/etc/sk.yaml", "i", "react"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "")
			require.NoError(t, afero.WriteFile(h.deps.Fs, "/w/package.json", []byte("{}"), 0o644))
			require.NoError(t, afero.WriteFile(h.deps.Fs, "/w/pnpm-lock.yaml", nil, 0o644))
			h.runner.Paths = map[string]bool{"pnpm": true}

			require.Equal(t, 0, h.run(tt.args...), h.stderr.String())
			assert.Equal(t, []string{"pnpm add react"}, h.runner.Calls)
			assert.Equal(t, "/etc/sk.yaml", h.configPath)
			assert.Equal(t, "debug", h.deps.cfg.LogLevel)
			assert.Contains(t, h.stderr.String(), "starting")
		})
	}
}

func TestDevForwardsScriptFlagsNamedLikeRootFlags(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, afero.WriteFile(h.deps.Fs, "/w/package.json", []byte("{}"), 0o644))
	require.NoError(t, afero.WriteFile(h.deps.Fs, "/w/pnpm-lock.yaml", nil, 0o644))
	h.runner.Paths = map[string]bool{"pnpm": true}

	require.Equal(t, 0, h.run("dev", "i", "react", "--config", "x"))
	assert.Equal(t, []string{"pnpm add react --config x"}, h.runner.Calls)
	assert.NotEqual(t, "x", h.configPath)
}

func TestDevRootFlagsOnly(t *testing.T) {
	h := newHarness(t, "")
	assert.Equal(t, 1, h.run("dev", "--log-level", "debug"))
	assert.Contains(t, h.stderr.String(), "requires at least 1 arg(s)")

	h = newHarness(t, "")
	assert.Equal(t, 1, h.run("dev", "--config"))
	assert.Contains(t, h.stderr.String(), "flag needs an argument: --config")
	assert.Empty(t, h.runner.Calls)
}

func TestDockerList(t *testing.T) {
	h := newHarness(t, "")
	h.engine.containers = []docker.ContainerInfo{
		{ID: "c1", Image: "nginx:1.27", Status: "Up 2 hours", State: "running", Names: "web"},
		{ID: "c2", Image: "redis:7", Status: "Exited (0) 1 day ago", State: "exited", Names: "cache"},
	}
	h.engine.images = []docker.ImageInfo{{ID: "i1", Repository: "nginx", Tag: "1.27", Size: "187MB"}}

	require.Equal(t, 0, h.run("docker", "list"))
	out := h.stdout.String()
	assert.True(t, strings.HasPrefix(out, docker.ContainersHeader+"\n"), out)
	assert.Contains(t, out, "\tc1\tnginx:1.27\tUp 2 hours\tweb\n")
	assert.Contains(t, out, "\tc2\tredis:7\tExited (0) 1 day ago\tcache\n")
	assert.Contains(t, out, "\n\n"+docker.ImagesHeader+"\n")
	assert.Contains(t, out, "\ti1\tnginx\t1.27\t187MB\n")
	assert.True(t, h.engine.closed)
}

func TestDockerListContainers(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"running", []string{"docker", "list", "containers"}, "c1\tnginx:1.27\tweb\n"},
		{"all", []string{"docker", "list", "containers", "--all"}, "c1\tnginx:1.27\tUp\tweb\nc2\tredis:7\tExited\tcache\n"},
		{"filtered", []string{"docker", "list", "containers", "--all", "--filter", "name=cache"}, "c2\tredis:7\tExited\tcache\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "")
			h.engine.containers = []docker.ContainerInfo{
				{ID: "c1", Image: "nginx:1.27", Status: "Up", State: "running", Names: "web"},
				{ID: "c2", Image: "redis:7", Status: "Exited", State: "exited", Names: "cache"},
			}
			require.Equal(t, 0, h.run(tt.args...))
			assert.Equal(t, tt.want, h.stdout.String())
		})
	}
}

func TestDockerListRejectsUnknownKind(t *testing.T) {
	h := newHarness(t, "")
	assert.Equal(t, 1, h.run("docker", "list", "volumes"))
}

func TestDockerDispatch(t *testing.T) {
	h := newHarness(t, "")
	lines := []string{"C\tx\tc1\tnginx\tUp\tweb", "I\tx\ti1\tnginx\tlatest\t1MB"}

	require.Equal(t, 0, h.run(append([]string{"docker", "dispatch", "delete"}, lines...)...))
	assert.Equal(t, []string{"stop c1", "rm c1"}, h.engine.calls)
}

func TestDockerDispatchUnknownAction(t *testing.T) {
	h := newHarness(t, "")
	assert.Equal(t, 1, h.run("docker", "dispatch", "stpo", "C\tx\tc1"))
	assert.Contains(t, h.stderr.String(), "Unknown action: stpo")
	assert.Empty(t, h.engine.calls)
}

func TestDockerDinfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/repositories/acme/app":
			w.Write([]byte(`{"name":"app"}`))
		case "/v2/repositories/acme/app/tags/1":
			w.Write([]byte(`{"images":[{"architecture":"arm64","os":"linux","digest":"sha256:abc","size":2097152}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	h := newHarness(t, "")
	h.cfg.Docker.HubURL = srv.URL

	require.Equal(t, 0, h.run("docker", "dinfo", "acme/app", "1", "arm64"))
	assert.True(t, strings.HasSuffix(h.stdout.String(), "== images (os=linux, arch=arm64) ==\nsha256:abc  2.00 MiB\n"), h.stdout.String())

	h = newHarness(t, "")
	h.cfg.Docker.HubURL = srv.URL
	assert.Equal(t, 1, h.run("docker", "dinfo", "acme/app", "2"))
	assert.Empty(t, h.stderr.String())
}

func TestProxySet(t *testing.T) {
	h := newHarness(t, "")
	require.Equal(t, 0, h.run("proxy", "set", "-s", "socks5", "1080"))
	assert.Contains(t, h.stdout.String(), "socks5://127.0.0.1:1080")
	assert.Contains(t, h.stdout.String(), "export ALL_PROXY=")
}

func TestProxySetAcceptsRootFlags(t *testing.T) {
	h := newHarness(t, "")
	require.Equal(t, 0, h.run("--log-level", "debug", "proxy", "set", "8080", "--config=/etc/sk.yaml"), h.stderr.String())
	assert.Contains(t, h.stdout.String(), "http://127.0.0.1:8080")
	assert.Equal(t, "/etc/sk.yaml", h.configPath)
	assert.Equal(t, "debug", h.deps.cfg.LogLevel)
}

func TestProxySetUsage(t *testing.T) {
	h := newHarness(t, "")
	assert.Equal(t, 1, h.run("proxy", "set", "not-a-url"))
	assert.Contains(t, h.stderr.String(), proxy.Usage)
	assert.Empty(t, h.stdout.String())
}

func TestProcKill(t *testing.T) {
	h := newHarness(t, "y\n")
	h.deps.Signals = &deadOnTerm{alive: map[int]bool{4242: true}}
	h.runner.Results = map[string]shell.Result{
		"ps -p 4242 -o pid,ppid,user,comm,args": {Stdout: "  PID  PPID USER COMMAND ARGS\n 4242     1 me   sleep   sleep 100\n"},
	}

	require.Equal(t, 0, h.run("proc", "kill", "4242"))
	assert.Contains(t, h.stdout.String(), "kill processes: 4242?")
	assert.Contains(t, h.stdout.String(), "processes terminated")
}

func TestProcKillRejectsNonNumeric(t *testing.T) {
	h := newHarness(t, "")
	assert.Equal(t, 1, h.run("proc", "kill", "12", "abc"))
	assert.Contains(t, h.stderr.String(), "PID must be a number: abc")
}

func TestProcKillByPortRejectsNonNumeric(t *testing.T) {
	h := newHarness(t, "")
	assert.Equal(t, 1, h.run("proc", "kill-by-port", "http"))
	assert.Contains(t, h.stderr.String(), "must be a number")
}

func TestFilesRmr(t *testing.T) {
	h := newHarness(t, "y\n")
	require.NoError(t, afero.WriteFile(h.deps.Fs, "/w/a/debug.log", nil, 0o644))
	require.NoError(t, afero.WriteFile(h.deps.Fs, "/w/b/main.go", nil, 0o644))

	require.Equal(t, 0, h.run("files", "rmr", "/w", "*.log"))
	ok, _ := afero.Exists(h.deps.Fs, "/w/a/debug.log")
	assert.False(t, ok)
	ok, _ = afero.Exists(h.deps.Fs, "/w/b/main.go")
	assert.True(t, ok)
}

func TestFilesRmrMissingRoot(t *testing.T) {
	h := newHarness(t, "")
	assert.Equal(t, 1, h.run("files", "rmr", "/nope", "*.log"))
	assert.Contains(t, h.stderr.String(), "directory does not exist: /nope")
}

func TestFilesRme(t *testing.T) {
	h := newHarness(t, "y\n")
	require.NoError(t, afero.WriteFile(h.deps.Fs, "/w/keep.md", nil, 0o644))
	require.NoError(t, afero.WriteFile(h.deps.Fs, "/w/drop.txt", nil, 0o644))

	require.Equal(t, 0, h.run("files", "rme", "keep.md"))
	ok, _ := afero.Exists(h.deps.Fs, "/w/keep.md")
	assert.True(t, ok)
	ok, _ = afero.Exists(h.deps.Fs, "/w/drop.txt")
	assert.False(t, ok)
}

func TestPathAbs(t *testing.T) {
	h := newHarness(t, "")
	require.Equal(t, 0, h.run("path", "abs", "/srv/app/main.go:12:4"))
	assert.Equal(t, "/srv/app/main.go:12:4\n", h.stdout.String())
}

func TestFsRg(t *testing.T) {
	h := newHarness(t, "main.go:1:1:package main\n")
	require.Equal(t, 0, h.run("fs", "rg"))
	assert.True(t, strings.HasSuffix(h.stdout.String(), "\x01main.go:1:1:package main\n"), h.stdout.String())
}

func TestGitStatus(t *testing.T) {
	h := newHarness(t, "")
	h.runner.Results = map[string]shell.Result{
		"git -c core.quotepath=false status --short": {Stdout: "?? b.txt\nM  a.go\n"},
	}
	require.Equal(t, 0, h.run("git", "status"))
	lines := strings.Split(strings.TrimSuffix(h.stdout.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], "\tM  \ta.go"), lines[0])
	assert.True(t, strings.HasSuffix(lines[1], "\t?? \tb.txt"), lines[1])

	h = newHarness(t, "")
	h.runner.Results = map[string]shell.Result{
		"git -c core.quotepath=false status --short": {ExitCode: 128},
	}
	assert.Equal(t, 1, h.run("git", "status"))
}
