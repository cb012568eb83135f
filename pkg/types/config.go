package types

import "time"

// HTTPConfig holds shared HTTP settings used by clients that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-assistant/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the arXiv index client.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the default page size (default 10, capped at MaxPageSize).
	MaxResults int `json:"max_results" yaml:"max_results"`

	SortBy    SortBy    `json:"sort_by" yaml:"sort_by"`
	SortOrder SortOrder `json:"sort_order" yaml:"sort_order"`

	// RequestDelay is the minimum gap between consecutive arXiv API calls (default 3s).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`
}

// AcquisitionConfig holds settings for the PDF fetcher.
type AcquisitionConfig struct {
	HTTPConfig `yaml:",inline"`

	// DownloadDir is where PDFs and their metadata sidecars are written.
	DownloadDir string `json:"download_dir" yaml:"download_dir"`
}

// AIConfig holds settings for the Gemini backend.
type AIConfig struct {
	// Model is the model identifier (e.g. "gemini-2.5-pro-exp-03-25").
	Model string `json:"model" yaml:"model"`

	// APIKey is the Gemini API key. An empty key disables AI commands.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// PollInterval is the fixed delay between upload readiness checks (default 5s).
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`

	// MaxWait bounds the total upload readiness wait (default 10m).
	MaxWait time.Duration `json:"max_wait" yaml:"max_wait"`
}

// RelatedConfig holds settings for the Serper related-work client.
type RelatedConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is the Serper API key. An empty key disables related-work lookup.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// NumResults is the number of results requested (default 10).
	NumResults int `json:"num_results" yaml:"num_results"`
}

// LibraryConfig holds settings for the downloaded-paper library.
type LibraryConfig struct {
	// Path is the SQLite database file. Empty disables the library.
	Path string `json:"path" yaml:"path"`
}

// Config groups all settings for one research-assistant process.
type Config struct {
	Search      SearchConfig      `json:"search" yaml:"search"`
	Acquisition AcquisitionConfig `json:"acquisition" yaml:"acquisition"`
	AI          AIConfig          `json:"ai" yaml:"ai"`
	Related     RelatedConfig     `json:"related" yaml:"related"`
	Library     LibraryConfig     `json:"library" yaml:"library"`

	// WrapWidth is the column width for wrapped terminal output (default 100).
	WrapWidth int `json:"wrap_width" yaml:"wrap_width"`
}
