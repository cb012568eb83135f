// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// secretsDir writes files into a fresh .secrets directory.
func secretsDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), ".secrets")
	require.NoError(t, os.Mkdir(dir, 0o700))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

// captureWarnings redirects Warnings for the duration of the test.
func captureWarnings(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Warnings
	Warnings = &buf
	t.Cleanup(func() { Warnings = prev })
	return &buf
}

func TestLoadServiceKeys(t *testing.T) {
	dir := secretsDir(t, map[string]string{
		GeminiAPIKey: "AIzaSyD-test-gemini\n",
		SerperAPIKey: "\t0f3c9e-serper  ",
	})

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "AIzaSyD-test-gemini", got[GeminiAPIKey])
	assert.Equal(t, "0f3c9e-serper", got[SerperAPIKey])
}

func TestLoadOnlyGeminiKey(t *testing.T) {
	dir := secretsDir(t, map[string]string{GeminiAPIKey: "AIza-only"})

	got, err := Load(dir)
	require.NoError(t, err)
	_, hasSerper := got[SerperAPIKey]
	assert.False(t, hasSerper, "a missing key file leaves related-work search without a key")
	assert.Equal(t, map[string]string{GeminiAPIKey: "AIza-only"}, got)
}

func TestLoadIgnoredEntries(t *testing.T) {
	dir := secretsDir(t, map[string]string{
		SerperAPIKey:          "   \n",
		".gemini-api-key.swp": "editor swap",
		GeminiAPIKey:          "AIza-kept",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "old"), 0o700))

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{GeminiAPIKey: "AIza-kept"}, got)
}

func TestLoadMissingDirectory(t *testing.T) {
	warnings := captureWarnings(t)

	got, err := Load(filepath.Join(t.TempDir(), ".secrets"))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, warnings.String())
}

func TestLoadPathIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".secrets")
	require.NoError(t, os.WriteFile(path, []byte(GeminiAPIKey), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading secrets directory")
}

func TestLoadUnreadableKeyWarns(t *testing.T) {
	warnings := captureWarnings(t)
	dir := secretsDir(t, map[string]string{SerperAPIKey: "0f3c9e"})
	// A dangling symlink cannot be read, even by root.
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing-target"), filepath.Join(dir, GeminiAPIKey)))

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{SerperAPIKey: "0f3c9e"}, got)
	assert.Contains(t, warnings.String(), "could not read secret "+GeminiAPIKey)
}
