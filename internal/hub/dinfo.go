package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/itchyny/gojq"

	"shellkit/internal/logging"
)

// ErrReported marks a failure whose message was already written to the
// output; callers should exit non-zero without printing it again.
var ErrReported = errors.New("dinfo failed")

// Request selects what Dinfo looks up.
type Request struct {
	Repo string
	Tag  string
	Arch string
	OS   string
	// JQ, when set, replaces the tag document dump with the query results.
	JQ string
}

// Dinfo prints the repository document, the tag document and the digests
// and sizes of the images matching the requested platform.
func (c *Client) Dinfo(ctx context.Context, w io.Writer, req Request) error {
	if req.Arch == "" {
		req.Arch = "amd64"
	}
	if req.OS == "" {
		req.OS = "linux"
	}

	var query *gojq.Code
	if req.JQ != "" {
		q, err := compileJQ(req.JQ)
		if err != nil {
			return err
		}
		query = q
	}

	official := !strings.Contains(req.Repo, "/")
	library := "library/" + req.Repo
	repo := req.Repo

	fmt.Fprintf(w, "== repo: %s ==\n", repo)
	repoDoc, err := c.Repository(ctx, repo)
	if err != nil {
		logging.Debug().Err(err).Str("repo", repo).Msg("repository lookup failed")
		if !official {
			fmt.Fprintf(w, "failed to fetch repository: %s\n", repo)
			return ErrReported
		}
		repo = library
		fmt.Fprintf(w, "repository %s not found, trying official image: %s\n", req.Repo, repo)
		if repoDoc, err = c.Repository(ctx, repo); err != nil {
			fmt.Fprintf(w, "still unable to fetch repository: %s (also tried %s)\n", req.Repo, repo)
			return ErrReported
		}
	}

	if official && repo != library && emptySearch(repoDoc) {
		repo = library
		fmt.Fprintf(w, "repository %s not found, trying official image: %s\n", req.Repo, repo)
		if repoDoc, err = c.Repository(ctx, repo); err != nil {
			fmt.Fprintf(w, "still unable to find repository: %s (also tried %s)\n", req.Repo, repo)
			return ErrReported
		}
	}

	if err := writeIndented(w, repoDoc); err != nil {
		return err
	}

	fmt.Fprintf(w, "== tag: %s:%s ==\n", repo, req.Tag)
	tagDoc, err := c.Tag(ctx, repo, req.Tag)
	if err != nil {
		logging.Debug().Err(err).Msg("tag lookup failed")
		fmt.Fprintf(w, "failed to fetch tag: %s:%s\n", repo, req.Tag)
		return ErrReported
	}
	if query != nil {
		if err := runJQ(w, query, tagDoc); err != nil {
			return err
		}
		fmt.Fprintln(w)
	} else if err := writeIndented(w, tagDoc); err != nil {
		return err
	}

	matched, err := MatchImages(tagDoc, req.OS, req.Arch)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "== images (os=%s, arch=%s) ==\n", req.OS, req.Arch)
	if len(matched) == 0 {
		fmt.Fprintf(w, "no images for %s:%s (os=%s, arch=%s)\n", repo, req.Tag, req.OS, req.Arch)
		return ErrReported
	}
	for _, img := range matched {
		fmt.Fprintf(w, "%s  %.2f MiB\n", img.Digest, float64(img.Size)/1024/1024)
	}
	return nil
}

// writeIndented prints doc with two-space indentation and a blank line.
func writeIndented(w io.Writer, doc json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, doc, "", "  "); err != nil {
		return fmt.Errorf("format json: %w", err)
	}
	buf.WriteString("\n\n")
	_, err := w.Write(buf.Bytes())
	return err
}

func compileJQ(expr string) (*gojq.Code, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("jq: parse %q: %w", expr, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("jq: compile %q: %w", expr, err)
	}
	return code, nil
}

// runJQ prints every result: strings raw, everything else as indented JSON.
func runJQ(w io.Writer, code *gojq.Code, doc json.RawMessage) error {
	var input any
	if err := json.Unmarshal(doc, &input); err != nil {
		return fmt.Errorf("jq: decode input: %w", err)
	}
	iter := code.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, ok := v.(error); ok {
			return fmt.Errorf("jq: %w", err)
		}
		if s, ok := v.(string); ok {
			fmt.Fprintln(w, s)
			continue
		}
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("jq: marshal: %w", err)
		}
		fmt.Fprintln(w, string(out))
	}
}
