// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FileState is the processing state of a file held by the AI backend.
type FileState string

const (
	FileStatePending FileState = "pending"
	FileStateActive  FileState = "active"
	FileStateFailed  FileState = "failed"
)

// RemoteFile is a handle to a PDF registered with the AI backend's file store.
type RemoteFile struct {
	// Name is the backend's resource name (e.g. "files/abc123").
	Name        string    `json:"name" yaml:"name"`
	DisplayName string    `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	URI         string    `json:"uri" yaml:"uri"`
	MIMEType    string    `json:"mime_type" yaml:"mime_type"`
	State       FileState `json:"state" yaml:"state"`
}

// Active reports whether the file can be referenced in a prompt.
func (f *RemoteFile) Active() bool {
	return f != nil && f.State == FileStateActive
}
