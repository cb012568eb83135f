// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultMaxWait      = 10 * time.Minute

	// DefaultComparison is used when compare is given no type.
	DefaultComparison = "general"

	// DefaultSummary is used when summarize is given no style.
	DefaultSummary = "default"
)

// Client runs the research prompts on top of a Backend.
type Client struct {
	Backend Backend

	// PollInterval is the fixed delay between readiness checks after upload.
	PollInterval time.Duration

	// MaxWait bounds how long Upload waits for a file to become active.
	MaxWait time.Duration

	Log *slog.Logger
}

// NewClient wraps backend with the poll settings from cfg.
func NewClient(backend Backend, cfg types.AIConfig, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	c := &Client{
		Backend:      backend,
		PollInterval: cfg.PollInterval,
		MaxWait:      cfg.MaxWait,
		Log:          log,
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.MaxWait <= 0 {
		c.MaxWait = defaultMaxWait
	}
	return c
}

// Upload registers the PDF at path and blocks until the backend reports it
// active. While the file is pending the state is re-read every
// PollInterval, for at most MaxWait. A failed state, a polling error, a
// timeout or a cancelled context deletes the remote file and returns an
// error.
func (c *Client) Upload(ctx context.Context, path string) (*types.RemoteFile, error) {
	const op = "upload"

	f, err := c.Backend.UploadFile(ctx, path, filepath.Base(path))
	if err != nil {
		return nil, types.NewError(types.KindTransport, op, err)
	}
	c.Log.Info("file uploaded", "name", f.Name, "state", f.State, "path", path)

	deadline := time.NewTimer(c.MaxWait)
	defer deadline.Stop()
	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()

	for f.State == types.FileStatePending {
		select {
		case <-ctx.Done():
			c.discard(ctx, f.Name)
			return nil, types.NewError(types.KindTransport, op, fmt.Errorf("waiting for %s: %w", f.Name, ctx.Err()))
		case <-deadline.C:
			c.discard(ctx, f.Name)
			return nil, types.NewError(types.KindTransport, op, fmt.Errorf("%s still processing after %s", f.Name, c.MaxWait))
		case <-ticker.C:
		}

		name := f.Name
		f, err = c.Backend.GetFile(ctx, name)
		if err != nil {
			c.discard(ctx, name)
			return nil, types.NewError(types.KindTransport, op, err)
		}
		c.Log.Debug("file state", "name", f.Name, "state", f.State)
	}

	if f.State != types.FileStateActive {
		c.discard(ctx, f.Name)
		return nil, types.NewError(types.KindUpstream, op, fmt.Errorf("file %s ended in state %s", f.Name, f.State))
	}
	c.Log.Info("file active", "name", f.Name)
	return f, nil
}

// Status re-reads a registered file's state.
func (c *Client) Status(ctx context.Context, name string) (*types.RemoteFile, error) {
	f, err := c.Backend.GetFile(ctx, name)
	if err != nil {
		return nil, types.NewError(types.KindTransport, "file status", err)
	}
	return f, nil
}

// Delete removes a registered file.
func (c *Client) Delete(ctx context.Context, name string) error {
	if err := c.Backend.DeleteFile(ctx, name); err != nil {
		return types.NewError(types.KindTransport, "delete file", err)
	}
	return nil
}

// discard deletes a file that will not be used, logging instead of
// returning failures. It runs even when ctx is already cancelled.
func (c *Client) discard(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := c.Backend.DeleteFile(context.WithoutCancel(ctx), name); err != nil {
		c.Log.Warn("could not delete unusable file", "name", name, "error", err)
		return
	}
	c.Log.Info("deleted unusable file", "name", name)
}

// Ask answers a free-form question about one file. Figure questions use a
// prompt that directs the model to the document's figures and tables.
func (c *Client) Ask(ctx context.Context, model string, f *types.RemoteFile, question string, figure bool) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", types.NewError(types.KindNotFound, "ask", errors.New("empty question"))
	}
	tmpl := askPromptTmpl
	if figure {
		tmpl = askFigurePromptTmpl
	}
	prompt, err := render(tmpl, struct{ Question string }{question})
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return c.generate(ctx, "ask", GenerateRequest{Model: model, Files: []*types.RemoteFile{f}, Prompt: prompt})
}

// Summarize summarizes one file in the given style. An empty style selects
// the default summary.
func (c *Client) Summarize(ctx context.Context, model string, f *types.RemoteFile, style string) (string, error) {
	style, err := SummaryStyle(style)
	if err != nil {
		return "", err
	}
	prompt := summaryPrompts[style]
	return c.generate(ctx, "summarize", GenerateRequest{Model: model, Files: []*types.RemoteFile{f}, Prompt: prompt})
}

// Extract asks for structured information matching the schema for key and
// returns the reply as indented JSON. A reply that is not valid JSON is a
// malformed-response error.
func (c *Client) Extract(ctx context.Context, model string, f *types.RemoteFile, key string) (string, error) {
	const op = "extract"

	key, err := ExtractionKey(key)
	if err != nil {
		return "", err
	}
	schema := extractionSchemas[key]
	prompt, err := render(extractPromptTmpl, struct{ Key string }{key})
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	text, err := c.generate(ctx, op, GenerateRequest{Model: model, Files: []*types.RemoteFile{f}, Prompt: prompt, Schema: schema})
	if err != nil {
		return "", err
	}

	raw := []byte(stripCodeFence(text))
	if !json.Valid(raw) {
		return "", types.NewError(types.KindMalformed, op, fmt.Errorf("reply is not valid JSON: %.200s", text))
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return "", types.NewError(types.KindMalformed, op, err)
	}
	return out.String(), nil
}

// Compare runs one comparison prompt over two or more files.
func (c *Client) Compare(ctx context.Context, model string, files []*types.RemoteFile, kind string) (string, error) {
	const op = "compare"

	if len(files) < 2 {
		return "", types.NewError(types.KindNotFound, op, fmt.Errorf("need at least 2 papers, got %d", len(files)))
	}
	kind, err := ComparisonType(kind)
	if err != nil {
		return "", err
	}
	prompt, err := render(comparePromptTmpl, comparisons[kind])
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return c.generate(ctx, op, GenerateRequest{Model: model, Files: files, Prompt: prompt})
}

// Keywords asks the model for search keywords describing paper, most
// important first. No file upload is needed.
func (c *Client) Keywords(ctx context.Context, model string, paper *types.Paper) ([]string, error) {
	const op = "keywords"

	prompt, err := render(keywordsPromptTmpl, paper)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}
	text, err := c.generate(ctx, op, GenerateRequest{Model: model, Prompt: prompt, Schema: keywordsSchema})
	if err != nil {
		return nil, err
	}
	var keywords []string
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &keywords); err != nil {
		return nil, types.NewError(types.KindMalformed, op, fmt.Errorf("parsing keywords: %w", err))
	}
	var out []string
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	if len(out) == 0 {
		return nil, types.NewError(types.KindUpstream, op, errors.New("model returned no keywords"))
	}
	return out, nil
}

func (c *Client) generate(ctx context.Context, op string, req GenerateRequest) (string, error) {
	for _, f := range req.Files {
		if !f.Active() {
			return "", types.NewError(types.KindNotFound, op, fmt.Errorf("file %s is not active", f.Name))
		}
	}
	c.Log.Debug("generate", "op", op, "model", req.Model, "files", len(req.Files))
	text, err := c.Backend.Generate(ctx, req)
	if err != nil {
		return "", types.NewError(types.KindTransport, op, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", types.NewError(types.KindUpstream, op, errors.New("model returned an empty reply"))
	}
	return text, nil
}

// stripCodeFence removes a surrounding ```json fence some models add even
// in JSON mode.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
