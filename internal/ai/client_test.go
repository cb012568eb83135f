// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// --- mock backend ---

type mockBackend struct {
	// states is the sequence GetFile walks through after the upload.
	uploadState types.FileState
	states      []types.FileState
	uploadErr   error
	getErr      error

	reply    string
	genErr   error
	requests []GenerateRequest

	gets    int
	deleted []string
}

func (m *mockBackend) UploadFile(_ context.Context, path, displayName string) (*types.RemoteFile, error) {
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	return &types.RemoteFile{Name: "files/" + displayName, URI: "https://files/" + displayName, MIMEType: "application/pdf", State: m.uploadState}, nil
}

func (m *mockBackend) GetFile(_ context.Context, name string) (*types.RemoteFile, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	state := types.FileStateActive
	if m.gets < len(m.states) {
		state = m.states[m.gets]
	}
	m.gets++
	return &types.RemoteFile{Name: name, URI: "https://" + name, MIMEType: "application/pdf", State: state}, nil
}

func (m *mockBackend) DeleteFile(_ context.Context, name string) error {
	m.deleted = append(m.deleted, name)
	return nil
}

func (m *mockBackend) Generate(_ context.Context, req GenerateRequest) (string, error) {
	m.requests = append(m.requests, req)
	return m.reply, m.genErr
}

func testClient(b Backend) *Client {
	return NewClient(b, types.AIConfig{
		PollInterval: time.Millisecond,
		MaxWait:      time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func activeFile(name string) *types.RemoteFile {
	return &types.RemoteFile{Name: name, URI: "https://" + name, MIMEType: "application/pdf", State: types.FileStateActive}
}

// --- Upload ---

func TestUpload(t *testing.T) {
	tests := []struct {
		name        string
		backend     *mockBackend
		wantErr     bool
		wantKind    types.ErrorKind
		wantGets    int
		wantDeleted int
	}{
		{
			name:     "active immediately",
			backend:  &mockBackend{uploadState: types.FileStateActive},
			wantGets: 0,
		},
		{
			name:     "pending then active",
			backend:  &mockBackend{uploadState: types.FileStatePending, states: []types.FileState{types.FileStatePending, types.FileStatePending, types.FileStateActive}},
			wantGets: 3,
		},
		{
			name:        "pending then failed",
			backend:     &mockBackend{uploadState: types.FileStatePending, states: []types.FileState{types.FileStateFailed}},
			wantErr:     true,
			wantKind:    types.KindUpstream,
			wantGets:    1,
			wantDeleted: 1,
		},
		{
			name:     "upload error",
			backend:  &mockBackend{uploadErr: errors.New("boom")},
			wantErr:  true,
			wantKind: types.KindTransport,
		},
		{
			name:        "poll error",
			backend:     &mockBackend{uploadState: types.FileStatePending, getErr: errors.New("gone")},
			wantErr:     true,
			wantKind:    types.KindTransport,
			wantDeleted: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(tt.backend)
			f, err := c.Upload(context.Background(), "/tmp/papers/2301.07041v2.pdf")
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, types.KindOf(err))
				assert.Nil(t, f)
			} else {
				require.NoError(t, err)
				assert.True(t, f.Active())
				assert.Equal(t, "files/2301.07041v2.pdf", f.Name)
			}
			assert.Equal(t, tt.wantGets, tt.backend.gets)
			assert.Len(t, tt.backend.deleted, tt.wantDeleted)
		})
	}
}

func TestUpload_TimesOut(t *testing.T) {
	b := &mockBackend{uploadState: types.FileStatePending, states: make([]types.FileState, 1000)}
	for i := range b.states {
		b.states[i] = types.FileStatePending
	}
	c := testClient(b)
	c.MaxWait = 20 * time.Millisecond

	_, err := c.Upload(context.Background(), "x.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "still processing")
	assert.Equal(t, []string{"files/x.pdf"}, b.deleted)
}

func TestUpload_ContextCancelled(t *testing.T) {
	b := &mockBackend{uploadState: types.FileStatePending}
	c := testClient(b)
	c.PollInterval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Upload(ctx, "x.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"files/x.pdf"}, b.deleted)
}

// --- prompts ---

func TestAsk(t *testing.T) {
	b := &mockBackend{reply: "the answer"}
	c := testClient(b)

	got, err := c.Ask(context.Background(), "m1", activeFile("files/a"), "What is new?", false)
	require.NoError(t, err)
	assert.Equal(t, "the answer", got)

	_, err = c.Ask(context.Background(), "m1", activeFile("files/a"), "What does Figure 2 show?", true)
	require.NoError(t, err)

	require.Len(t, b.requests, 2)
	assert.Equal(t, "m1", b.requests[0].Model)
	assert.Contains(t, b.requests[0].Prompt, "Question: What is new?")
	assert.NotContains(t, b.requests[0].Prompt, "figures")
	assert.Contains(t, b.requests[1].Prompt, "figures, tables and charts")
	assert.Nil(t, b.requests[0].Schema)
}

func TestAsk_RejectsInactiveFile(t *testing.T) {
	b := &mockBackend{reply: "x"}
	c := testClient(b)
	f := activeFile("files/a")
	f.State = types.FileStatePending

	_, err := c.Ask(context.Background(), "m", f, "q", false)
	require.Error(t, err)
	assert.Empty(t, b.requests)
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		style    string
		wantText string
		wantErr  bool
	}{
		{"", "Provide a concise summary", false},
		{"key_findings", "key findings and results", false},
		{"tech", "technical summary", false},
		{"TECHNICAL", "technical summary", false},
		{"eli5", "like I'm 5 years old", false},
		{"simple", "like I'm 5 years old", false},
		{"haiku", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			b := &mockBackend{reply: "summary"}
			c := testClient(b)
			_, err := c.Summarize(context.Background(), "m", activeFile("files/a"), tt.style)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, types.IsKind(err, types.KindNotFound))
				assert.Empty(t, b.requests)
				return
			}
			require.NoError(t, err)
			require.Len(t, b.requests, 1)
			assert.Contains(t, b.requests[0].Prompt, tt.wantText)
		})
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		reply    string
		want     string
		wantKind types.ErrorKind
	}{
		{
			name:  "valid json is indented",
			key:   "methods",
			reply: `{"methodologies":["GNN","ablation"]}`,
			want:  "{\n  \"methodologies\": [\n    \"GNN\",\n    \"ablation\"\n  ]\n}",
		},
		{
			name:  "code fence stripped",
			key:   "conclusion",
			reply: "```json\n{\"main_conclusion\":\"it works\"}\n```",
			want:  "{\n  \"main_conclusion\": \"it works\"\n}",
		},
		{
			name:     "invalid json",
			key:      "datasets",
			reply:    "The datasets are MNIST and CIFAR.",
			wantKind: types.KindMalformed,
		},
		{
			name:     "unknown key",
			key:      "authors",
			wantKind: types.KindNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &mockBackend{reply: tt.reply}
			c := testClient(b)
			got, err := c.Extract(context.Background(), "m", activeFile("files/a"), tt.key)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, types.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			require.Len(t, b.requests, 1)
			assert.NotNil(t, b.requests[0].Schema)
			assert.Contains(t, b.requests[0].Prompt, "JSON schema: "+tt.key+".")
		})
	}
}

func TestCompare(t *testing.T) {
	b := &mockBackend{reply: "comparison"}
	c := testClient(b)
	files := []*types.RemoteFile{activeFile("files/a"), activeFile("files/b")}

	got, err := c.Compare(context.Background(), "m", files, "methods")
	require.NoError(t, err)
	assert.Equal(t, "comparison", got)

	require.Len(t, b.requests, 1)
	req := b.requests[0]
	assert.Len(t, req.Files, 2)
	assert.Contains(t, req.Prompt, "IMPORTANT: You must analyze ALL the provided papers")
	assert.Contains(t, req.Prompt, "compare the methodologies used in ALL these papers, focusing on:")
	assert.Contains(t, req.Prompt, "1. Research approaches and techniques employed in each paper")
	assert.Contains(t, req.Prompt, "5. Innovations in research methods introduced by each paper")
}

func TestCompare_Validation(t *testing.T) {
	b := &mockBackend{reply: "x"}
	c := testClient(b)

	_, err := c.Compare(context.Background(), "m", []*types.RemoteFile{activeFile("files/a")}, "general")
	require.Error(t, err)

	_, err = c.Compare(context.Background(), "m", []*types.RemoteFile{activeFile("files/a"), activeFile("files/b")}, "vibes")
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindNotFound))
	assert.Empty(t, b.requests)
}

func TestComparePrompts_AllTypesRender(t *testing.T) {
	for _, kind := range ComparisonTypes() {
		prompt, err := render(comparePromptTmpl, comparisons[kind])
		require.NoError(t, err, kind)
		for i := 1; i <= 5; i++ {
			assert.Contains(t, prompt, fmt.Sprintf("\n%d. ", i), kind)
		}
		assert.NotContains(t, prompt, "\n6. ", kind)
		assert.True(t, strings.HasSuffix(prompt, "throughout your analysis."), kind)
	}
}

func TestKeywords(t *testing.T) {
	b := &mockBackend{reply: `["graph neural networks", " ", "scalability"]`}
	c := testClient(b)
	paper := &types.Paper{Title: "GNNs at Scale", Abstract: "We scale GNNs."}

	got, err := c.Keywords(context.Background(), "m", paper)
	require.NoError(t, err)
	assert.Equal(t, []string{"graph neural networks", "scalability"}, got)
	assert.Contains(t, b.requests[0].Prompt, "Paper Title: GNNs at Scale")
	assert.Empty(t, b.requests[0].Files)

	b.reply = "not json"
	_, err = c.Keywords(context.Background(), "m", paper)
	assert.True(t, types.IsKind(err, types.KindMalformed))
}

func TestGenerate_EmptyReply(t *testing.T) {
	b := &mockBackend{reply: "   "}
	c := testClient(b)
	_, err := c.Summarize(context.Background(), "m", activeFile("files/a"), "")
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindUpstream))
}

func TestCanonicalNames(t *testing.T) {
	style, err := SummaryStyle(" Tech ")
	require.NoError(t, err)
	assert.Equal(t, "technical", style)

	style, err = SummaryStyle("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSummary, style)

	_, err = SummaryStyle("haiku")
	assert.True(t, types.IsKind(err, types.KindNotFound))

	key, err := ExtractionKey("DATASETS")
	require.NoError(t, err)
	assert.Equal(t, "datasets", key)

	_, err = ExtractionKey("figures")
	assert.True(t, types.IsKind(err, types.KindNotFound))

	kind, err := ComparisonType("")
	require.NoError(t, err)
	assert.Equal(t, DefaultComparison, kind)

	_, err = ComparisonType("vibes")
	assert.True(t, types.IsKind(err, types.KindNotFound))
}
