package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Config holds the core, application-agnostic client configuration.
type Config struct {
	AuthBaseURL       string  `koanf:"auth_base_url"`       // Credential exchange service base URL.
	APIBaseURL        string  `koanf:"api_base_url"`        // Web API base URL.
	RequestsPerMinute float64 `koanf:"requests_per_minute"` // Client-side steady-state rate cap.
	Burst             int     `koanf:"burst"`               // Allowed burst above the steady rate.
	PollInterval      string  `koanf:"poll_interval"`       // Notification poll interval, e.g. "30s".
	InitPostPages     int     `koanf:"init_post_pages"`     // Post feed pages fetched per community on Init (0 = all).
	DownloadPath      string  `koanf:"download_path"`       // Where attachment downloads land.
	Verbose           bool    `koanf:"verbose"`             // Log raw API responses.
}

// Default returns the default core configuration.
func Default() *Config {
	var defaultPath string
	downloadDir := xdg.UserDirs.Download
	if downloadDir != "" {
		defaultPath = filepath.Join(downloadDir, "weverse")
	} else {
		defaultPath = filepath.Join("downloads", "weverse")
	}

	return &Config{
		AuthBaseURL:       "", // empty means the production endpoints
		APIBaseURL:        "",
		RequestsPerMinute: 60,
		Burst:             10,
		PollInterval:      "30s",
		InitPostPages:     1,
		DownloadPath:      defaultPath,
		Verbose:           false,
	}
}
