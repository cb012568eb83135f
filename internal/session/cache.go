// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// EnsureDownloaded returns the local PDF for display number n. A number
// already in the download map whose file still exists is returned without
// any fetch. A mapped file that has disappeared is evicted, together with
// its upload, and fetched again.
func (c *Controller) EnsureDownloaded(ctx context.Context, n int) (string, error) {
	if path, ok := c.downloads[n]; ok {
		if fileExists(path) {
			return path, nil
		}
		c.log.Warn("downloaded PDF missing, fetching again", "number", n, "path", path,
			"error", types.NewError(types.KindResourceMissing, "ensure downloaded", fmt.Errorf("%s no longer exists", path)))
		c.evict(n, path)
	}

	paper, err := c.Resolve(n)
	if err != nil {
		return "", err
	}

	path, skipped, err := c.fetcher.Fetch(ctx, paper)
	if err != nil {
		return "", fmt.Errorf("downloading [%d] %s: %w", n, paper.ID, err)
	}
	c.downloads[n] = path
	c.log.Debug("pdf ready", "number", n, "id", paper.ID, "path", path, "skipped", skipped)

	if c.library != nil {
		if err := c.library.Record(ctx, paper, path); err != nil {
			c.log.Warn("recording paper in library", "id", paper.ID, "error", err)
		}
	}
	return path, nil
}

// ItemError is the failure for one number in a batch.
type ItemError struct {
	Number int
	Err    error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("[%d] %v", e.Number, e.Err)
}

func (e ItemError) Unwrap() error { return e.Err }

// BatchResult tallies a sequential batch operation.
type BatchResult struct {
	Paths     map[int]string
	Succeeded int
	Failed    []ItemError
}

// Total returns the number of items attempted.
func (b BatchResult) Total() int { return b.Succeeded + len(b.Failed) }

// DownloadBatch runs EnsureDownloaded for each number in order. A failure
// is recorded and the batch continues.
func (c *Controller) DownloadBatch(ctx context.Context, nums []int) BatchResult {
	res := BatchResult{Paths: make(map[int]string)}
	for _, n := range nums {
		if err := ctx.Err(); err != nil {
			res.Failed = append(res.Failed, ItemError{Number: n, Err: err})
			continue
		}
		path, err := c.EnsureDownloaded(ctx, n)
		if err != nil {
			res.Failed = append(res.Failed, ItemError{Number: n, Err: err})
			continue
		}
		res.Paths[n] = path
		res.Succeeded++
	}
	return res
}

// EnsureUploaded returns an active AI backend handle for the PDF at path.
// A cached handle is re-validated first and reused only while active.
// A stale handle is evicted, deleted remotely on a best-effort basis, and
// replaced by exactly one new upload. A failed upload leaves no cache
// entry.
func (c *Controller) EnsureUploaded(ctx context.Context, path string) (*types.RemoteFile, error) {
	if c.ai == nil {
		return nil, ErrAIDisabled
	}

	if cached, ok := c.uploads[path]; ok {
		current, err := c.ai.Status(ctx, cached.Name)
		if err == nil && current.Active() {
			c.uploads[path] = current
			return current, nil
		}
		state := types.FileState("gone")
		if err == nil {
			state = current.State
		}
		c.log.Info("cached upload is stale, uploading again", "path", path, "file", cached.Name, "state", state)
		delete(c.uploads, path)
		if err := c.ai.Delete(ctx, cached.Name); err != nil {
			c.log.Debug("deleting stale upload", "file", cached.Name, "error", err)
		}
	}

	f, err := c.ai.Upload(ctx, path)
	if err != nil {
		delete(c.uploads, path)
		return nil, err
	}
	c.uploads[path] = f
	return f, nil
}

// prepare downloads and uploads the paper at display number n.
func (c *Controller) prepare(ctx context.Context, n int) (*types.RemoteFile, error) {
	if c.ai == nil {
		return nil, ErrAIDisabled
	}
	path, err := c.EnsureDownloaded(ctx, n)
	if err != nil {
		return nil, err
	}
	f, err := c.EnsureUploaded(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("uploading [%d]: %w", n, err)
	}
	return f, nil
}

// DownloadStatus describes one entry of the download map.
type DownloadStatus struct {
	Number   int
	Path     string
	Exists   bool
	Uploaded bool
}

// Downloads lists the download map ordered by display number.
func (c *Controller) Downloads() []DownloadStatus {
	nums := make([]int, 0, len(c.downloads))
	for n := range c.downloads {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	out := make([]DownloadStatus, 0, len(nums))
	for _, n := range nums {
		path := c.downloads[n]
		_, uploaded := c.uploads[path]
		out = append(out, DownloadStatus{
			Number:   n,
			Path:     path,
			Exists:   fileExists(path),
			Uploaded: uploaded,
		})
	}
	return out
}

func (c *Controller) evict(n int, path string) {
	delete(c.downloads, n)
	delete(c.uploads, path)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}
