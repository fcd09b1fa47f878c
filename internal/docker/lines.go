package docker

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"shellkit/internal/icons"
)

const (
	ContainersHeader = "=== CONTAINERS ==="
	ImagesHeader     = "=== IMAGES ==="

	tagContainer = "C"
	tagImage     = "I"
)

// WriteList writes the combined list read by the dd widget:
// `C\t<icon>\t<id>\t<image>\t<status>\t<names>` per container and
// `I\t<icon>\t<id>\t<repository>\t<tag>\t<size>` per image.
func WriteList(w io.Writer, containers []ContainerInfo, images []ImageInfo) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, ContainersHeader)
	for _, c := range containers {
		fmt.Fprintln(bw, strings.Join([]string{tagContainer, icons.Container.Colored(), c.ID, c.Image, c.Status, c.Names}, "\t"))
	}
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, ImagesHeader)
	for _, img := range images {
		fmt.Fprintln(bw, strings.Join([]string{tagImage, icons.Image.Colored(), img.ID, img.Repository, img.Tag, img.Size}, "\t"))
	}
	return bw.Flush()
}

// WriteContainers writes `<id>\t<image>\t<names>`, with the status column
// before names when withStatus is set.
func WriteContainers(w io.Writer, containers []ContainerInfo, withStatus bool) error {
	bw := bufio.NewWriter(w)
	for _, c := range containers {
		cols := []string{c.ID, c.Image, c.Names}
		if withStatus {
			cols = []string{c.ID, c.Image, c.Status, c.Names}
		}
		fmt.Fprintln(bw, strings.Join(cols, "\t"))
	}
	return bw.Flush()
}

// Selection is what the user picked in fzf.
type Selection struct {
	Containers []string
	Images     []string
}

// First returns the first container ID, else the first image ID.
func (s Selection) First() string {
	if len(s.Containers) > 0 {
		return s.Containers[0]
	}
	if len(s.Images) > 0 {
		return s.Images[0]
	}
	return ""
}

// ParseSelection extracts IDs from list lines. Headers, blank lines and lines
// with fewer than three fields are skipped.
func ParseSelection(lines []string) Selection {
	var sel Selection
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 3 || parts[2] == "" {
			continue
		}
		switch parts[0] {
		case tagContainer:
			sel.Containers = append(sel.Containers, parts[2])
		case tagImage:
			sel.Images = append(sel.Images, parts[2])
		}
	}
	return sel
}
