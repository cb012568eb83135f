// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ai registers PDFs with the Gemini file store and runs the
// question, summary, extraction, comparison and keyword prompts against them.
package ai

import (
	"context"

	"google.golang.org/genai"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// Backend abstracts the Generative AI API so tests can supply a mock.
// GenaiBackend is the production implementation.
type Backend interface {
	// UploadFile registers a local PDF and returns its initial handle,
	// usually still pending.
	UploadFile(ctx context.Context, path, displayName string) (*types.RemoteFile, error)

	// GetFile returns the current state of a registered file.
	GetFile(ctx context.Context, name string) (*types.RemoteFile, error)

	// DeleteFile removes a registered file.
	DeleteFile(ctx context.Context, name string) error

	// Generate runs one prompt over the given files and returns the text reply.
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// GenerateRequest is one model call. A non-nil Schema requests a JSON
// response constrained to it.
type GenerateRequest struct {
	Model  string
	Files  []*types.RemoteFile
	Prompt string
	Schema *genai.Schema
}
