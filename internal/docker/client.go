// Package docker lists containers and images for the fzf widgets and the
// browse UI, and runs the lifecycle actions selected from those lists.
package docker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-units"
)

const defaultTimeout = 10 * time.Second

const none = "<none>"

// Client wraps the Docker SDK client with the calls the helpers need.
type Client struct {
	cli     *client.Client
	timeout time.Duration
}

// ContainerInfo is one row of `docker ps`.
type ContainerInfo struct {
	ID      string
	Image   string
	Status  string
	State   string
	Names   string
	Age     string
	Created time.Time
}

// ImageInfo is one row of `docker images`; an image with several tags
// yields one row per tag.
type ImageInfo struct {
	ID         string
	Repository string
	Tag        string
	Size       string
	SizeBytes  int64
	Age        string
	Created    time.Time
}

// Ref is repository:tag, or the ID for untagged images.
func (i ImageInfo) Ref() string {
	if i.Repository == none || i.Tag == none {
		return i.ID
	}
	return i.Repository + ":" + i.Tag
}

// NewClient creates a Docker client from the environment (DOCKER_HOST etc.).
// timeout bounds every engine call.
func NewClient(timeout time.Duration) (*Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, err
	}
	return &Client{cli: cli, timeout: timeout}, nil
}

// Close releases the underlying transport.
func (c *Client) Close() error {
	return c.cli.Close()
}

func timeoutCtx(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return context.WithTimeout(parent, timeout)
}

// ListContainers returns running containers, or all of them when all is set,
// newest first as the engine reports them.
func (c *Client) ListContainers(ctx context.Context, all bool) ([]ContainerInfo, error) {
	ctx, cancel := timeoutCtx(ctx, c.timeout)
	defer cancel()

	containers, err := c.cli.ContainerList(ctx, container.ListOptions{All: all})
	if err != nil {
		return nil, err
	}

	result := make([]ContainerInfo, 0, len(containers))
	for _, ctr := range containers {
		createdTime := time.Unix(ctr.Created, 0)
		result = append(result, ContainerInfo{
			ID:      shortImageID(ctr.ID),
			Image:   ctr.Image,
			Status:  ctr.Status,
			State:   string(ctr.State),
			Names:   containerNames(ctr.Names),
			Age:     formatRelativeDuration(time.Since(createdTime)),
			Created: createdTime,
		})
	}
	return result, nil
}

// ListImages returns the top-level images, one row per repository tag.
func (c *Client) ListImages(ctx context.Context) ([]ImageInfo, error) {
	ctx, cancel := timeoutCtx(ctx, c.timeout)
	defer cancel()

	images, err := c.cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return nil, err
	}

	var result []ImageInfo
	for _, img := range images {
		createdTime := time.Unix(img.Created, 0)
		base := ImageInfo{
			ID:        shortImageID(img.ID),
			Size:      humanSize(img.Size),
			SizeBytes: img.Size,
			Age:       formatRelativeDuration(time.Since(createdTime)),
			Created:   createdTime,
		}
		for _, ref := range imageRefs(img.RepoTags, img.RepoDigests) {
			row := base
			row.Repository, row.Tag = ref[0], ref[1]
			result = append(result, row)
		}
	}
	return result, nil
}

// imageRefs splits tags into repository/tag pairs the way `docker images`
// prints them. Untagged images fall back to the repository of their digest.
func imageRefs(repoTags, repoDigests []string) [][2]string {
	var refs [][2]string
	for _, rt := range repoTags {
		if rt == "<none>:<none>" {
			continue
		}
		refs = append(refs, splitRepoTag(rt))
	}
	if len(refs) > 0 {
		return refs
	}
	for _, rd := range repoDigests {
		if repo, _, ok := strings.Cut(rd, "@"); ok && repo != none {
			return [][2]string{{repo, none}}
		}
	}
	return [][2]string{{none, none}}
}

// splitRepoTag splits at the last colon after the last slash so registry
// ports stay part of the repository.
func splitRepoTag(ref string) [2]string {
	slash := strings.LastIndex(ref, "/")
	colon := strings.LastIndex(ref, ":")
	if colon > slash {
		return [2]string{ref[:colon], ref[colon+1:]}
	}
	return [2]string{ref, none}
}

// containerNames mirrors the {{.Names}} column: leading slashes removed and
// legacy link aliases (names with a second slash) dropped.
func containerNames(names []string) string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimPrefix(n, "/")
		if strings.Contains(n, "/") {
			continue
		}
		out = append(out, n)
	}
	return strings.Join(out, ",")
}

// humanSize matches the docker CLI's size column.
func humanSize(size int64) string {
	return units.HumanSizeWithPrecision(float64(size), 3)
}

func (c *Client) StartContainer(ctx context.Context, id string) error {
	ctx, cancel := timeoutCtx(ctx, c.timeout)
	defer cancel()
	return c.cli.ContainerStart(ctx, id, container.StartOptions{})
}

// StopContainer uses the container's own stop timeout, like `docker stop`.
func (c *Client) StopContainer(ctx context.Context, id string) error {
	ctx, cancel := timeoutCtx(ctx, c.timeout+30*time.Second)
	defer cancel()
	return c.cli.ContainerStop(ctx, id, container.StopOptions{})
}

func (c *Client) RestartContainer(ctx context.Context, id string) error {
	ctx, cancel := timeoutCtx(ctx, c.timeout+30*time.Second)
	defer cancel()
	return c.cli.ContainerRestart(ctx, id, container.StopOptions{})
}

func (c *Client) RemoveContainer(ctx context.Context, id string) error {
	ctx, cancel := timeoutCtx(ctx, c.timeout)
	defer cancel()
	return c.cli.ContainerRemove(ctx, id, container.RemoveOptions{})
}

func (c *Client) RemoveImage(ctx context.Context, id string) error {
	ctx, cancel := timeoutCtx(ctx, c.timeout)
	defer cancel()
	_, err := c.cli.ImageRemove(ctx, id, image.RemoveOptions{PruneChildren: true})
	return err
}

// ContainerLogs returns the last tail lines of stdout and stderr with
// timestamps, demultiplexed when the container has no TTY.
func (c *Client) ContainerLogs(ctx context.Context, id string, tail string) (string, error) {
	ctx, cancel := timeoutCtx(ctx, c.timeout)
	defer cancel()

	info, err := c.cli.ContainerInspect(ctx, id)
	if err != nil {
		return "", err
	}

	out, err := c.cli.ContainerLogs(ctx, id, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       tail,
		Timestamps: true,
	})
	if err != nil {
		return "", err
	}
	defer out.Close()

	if info.Config != nil && info.Config.Tty {
		data, err := io.ReadAll(out)
		return string(data), err
	}
	var buf strings.Builder
	if _, err := stdcopy.StdCopy(&buf, &buf, out); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (c *Client) DescribeContainer(ctx context.Context, id string) (string, error) {
	ctx, cancel := timeoutCtx(ctx, c.timeout)
	defer cancel()

	data, err := c.cli.ContainerInspect(ctx, id)
	if err != nil {
		return "", err
	}
	return formatAsJSON(data)
}

func (c *Client) DescribeImage(ctx context.Context, id string) (string, error) {
	ctx, cancel := timeoutCtx(ctx, c.timeout)
	defer cancel()

	data, err := c.cli.ImageInspect(ctx, id)
	if err != nil {
		return "", err
	}
	return formatAsJSON(data)
}

func formatAsJSON(v interface{}) (string, error) {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// shortImageID trims the digest algorithm and truncates to 12 characters.
func shortImageID(id string) string {
	const prefix = "sha256:"
	id = strings.TrimPrefix(id, prefix)
	if len(id) >= 12 {
		return id[:12]
	}
	return id
}

func formatRelativeDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	if d < time.Minute {
		return "just now"
	}

	steps := []struct {
		dur   time.Duration
		label string
	}{
		{time.Hour * 24 * 365, "y"},
		{time.Hour * 24 * 30, "mo"},
		{time.Hour * 24 * 7, "w"},
		{time.Hour * 24, "d"},
		{time.Hour, "h"},
		{time.Minute, "m"},
	}

	for _, unit := range steps {
		if d >= unit.dur {
			value := d / unit.dur
			return fmt.Sprintf("%d%s ago", value, unit.label)
		}
	}

	return "just now"
}
