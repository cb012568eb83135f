package main

import (
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/research-assistant/internal/secrets"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	defaultModel        = "gemini-2.5-pro-exp-03-25"
	defaultDownloadDir  = "arxiv_downloads"
	defaultUserAgent    = "research-assistant/0.1"
	defaultTimeout      = 60 * time.Second
	defaultArxivDelay   = 3 * time.Second
	defaultPollInterval = 5 * time.Second
	defaultMaxWait      = 10 * time.Minute
	defaultWrapWidth    = 100
	libraryFile         = "library.db"
)

func setDefaults() {
	viper.SetDefault("model", defaultModel)
	viper.SetDefault("download_dir", defaultDownloadDir)
	viper.SetDefault("max_results", 10)
	viper.SetDefault("sort_by", string(types.SortSubmittedDate))
	viper.SetDefault("sort_order", string(types.SortDescending))
	viper.SetDefault("arxiv_delay", defaultArxivDelay)
	viper.SetDefault("http_timeout", defaultTimeout)
	viper.SetDefault("upload_poll_interval", defaultPollInterval)
	viper.SetDefault("upload_max_wait", defaultMaxWait)
	viper.SetDefault("related_results", 10)
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("wrap_width", defaultWrapWidth)
	viper.SetDefault("user_agent", defaultUserAgent)
}

// loadConfig assembles the process configuration from viper, falling back
// to .secrets/ for API keys. Invalid sort values fall back to the defaults.
func loadConfig() types.Config {
	httpCfg := types.HTTPConfig{
		Timeout:   viper.GetDuration("http_timeout"),
		UserAgent: viper.GetString("user_agent"),
	}
	if httpCfg.Timeout <= 0 {
		httpCfg.Timeout = defaultTimeout
	}

	sortBy, err := types.ParseSortBy(viper.GetString("sort_by"))
	if err != nil {
		sortBy = types.SortSubmittedDate
	}
	sortOrder, err := types.ParseSortOrder(viper.GetString("sort_order"))
	if err != nil {
		sortOrder = types.SortDescending
	}

	downloadDir := viper.GetString("download_dir")
	libraryPath := viper.GetString("library_path")
	if libraryPath == "" {
		libraryPath = filepath.Join(downloadDir, libraryFile)
	}

	return types.Config{
		Search: types.SearchConfig{
			HTTPConfig:   httpCfg,
			MaxResults:   viper.GetInt("max_results"),
			SortBy:       sortBy,
			SortOrder:    sortOrder,
			RequestDelay: viper.GetDuration("arxiv_delay"),
		},
		Acquisition: types.AcquisitionConfig{
			HTTPConfig:  httpCfg,
			DownloadDir: downloadDir,
		},
		AI: types.AIConfig{
			Model:        viper.GetString("model"),
			APIKey:       secretDefault(secrets.GeminiAPIKey, viper.GetString("gemini_api_key")),
			PollInterval: viper.GetDuration("upload_poll_interval"),
			MaxWait:      viper.GetDuration("upload_max_wait"),
		},
		Related: types.RelatedConfig{
			HTTPConfig: httpCfg,
			APIKey:     secretDefault(secrets.SerperAPIKey, viper.GetString("serper_api_key")),
			NumResults: viper.GetInt("related_results"),
		},
		Library: types.LibraryConfig{
			Path: libraryPath,
		},
		WrapWidth: viper.GetInt("wrap_width"),
	}
}
