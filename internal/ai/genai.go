// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const pdfMIMEType = "application/pdf"

// GenaiBackend calls the Gemini API through the official Go SDK.
type GenaiBackend struct {
	client *genai.Client
}

// NewGenaiBackend creates a Gemini API client for apiKey. The HTTP client is
// optional.
func NewGenaiBackend(ctx context.Context, apiKey string, httpClient *http.Client) (*GenaiBackend, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("missing Gemini API key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &GenaiBackend{client: client}, nil
}

// UploadFile uploads a PDF to the Gemini file store.
func (b *GenaiBackend) UploadFile(ctx context.Context, path, displayName string) (*types.RemoteFile, error) {
	f, err := b.client.Files.UploadFromPath(ctx, path, &genai.UploadFileConfig{
		MIMEType:    pdfMIMEType,
		DisplayName: displayName,
	})
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", path, err)
	}
	return fromGenaiFile(f), nil
}

// GetFile fetches the current metadata of a registered file.
func (b *GenaiBackend) GetFile(ctx context.Context, name string) (*types.RemoteFile, error) {
	f, err := b.client.Files.Get(ctx, name, nil)
	if err != nil {
		return nil, fmt.Errorf("getting file %s: %w", name, err)
	}
	return fromGenaiFile(f), nil
}

// DeleteFile removes a registered file.
func (b *GenaiBackend) DeleteFile(ctx context.Context, name string) error {
	if _, err := b.client.Files.Delete(ctx, name, nil); err != nil {
		return fmt.Errorf("deleting file %s: %w", name, err)
	}
	return nil
}

// Generate sends the files followed by the prompt as a single user turn.
func (b *GenaiBackend) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	parts := make([]*genai.Part, 0, len(req.Files)+1)
	for _, f := range req.Files {
		parts = append(parts, genai.NewPartFromURI(f.URI, f.MIMEType))
	}
	parts = append(parts, genai.NewPartFromText(req.Prompt))
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	var cfg *genai.GenerateContentConfig
	if req.Schema != nil {
		cfg = &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   req.Schema,
		}
	}

	resp, err := b.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("calling %s: %w", req.Model, err)
	}
	return resp.Text(), nil
}

// fromGenaiFile maps the SDK file record onto a RemoteFile. States other
// than active and failed, including an unset state, count as pending so
// the readiness poll keeps waiting for them.
func fromGenaiFile(f *genai.File) *types.RemoteFile {
	rf := &types.RemoteFile{
		Name:        f.Name,
		DisplayName: f.DisplayName,
		URI:         f.URI,
		MIMEType:    f.MIMEType,
		State:       types.FileStatePending,
	}
	if rf.MIMEType == "" {
		rf.MIMEType = pdfMIMEType
	}
	switch f.State {
	case genai.FileStateActive:
		rf.State = types.FileStateActive
	case genai.FileStateFailed:
		rf.State = types.FileStateFailed
	}
	return rf
}
