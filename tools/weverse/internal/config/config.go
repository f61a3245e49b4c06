package cliconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/halcyoned/weverse/pkg/config"
)

const AppName = "weverse"

// Config extends the core config with CLI-specific options.
type Config struct {
	config.Config `koanf:",squash"`

	// Account credentials. Either username+password or a bearer token.
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Token    string `koanf:"token"`

	DatabasePath        string `koanf:"database_path"`
	DownloadAttachments bool   `koanf:"download_attachments"`
	MaxWorkers          int    `koanf:"max_workers"`
	Editor              string `koanf:"editor"`
	CheckForUpdates     bool   `koanf:"check_for_updates"`
	AutoUpdate          bool   `koanf:"auto_update"`
}

// Default returns the default CLI configuration.
func Default() (*Config, error) {
	coreCfg := config.Default()
	dbPath, err := xdg.DataFile(filepath.Join(AppName, "archive.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to get default db path: %w", err)
	}

	return &Config{
		Config:          *coreCfg,
		DatabasePath:    dbPath,
		MaxWorkers:      runtime.NumCPU(),
		CheckForUpdates: true,
	}, nil
}

// Load loads the configuration from the given path, creating a commented
// default file on first run.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	defCfg, err := Default()
	if err != nil {
		return nil, err
	}
	cfgPath := path
	if cfgPath == "" {
		cfgPath, err = xdg.ConfigFile(filepath.Join(AppName, "config.yaml"))
		if err != nil {
			return nil, fmt.Errorf("failed to get default config path: %w", err)
		}
	}
	if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
		if err := createDefaultConfig(cfgPath, defCfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}
	if err := k.Load(file.Provider(cfgPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	cfg := defCfg
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = defCfg.DatabasePath
	}
	return cfg, nil
}

// createDefaultConfig creates a default configuration file.
func createDefaultConfig(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	content := fmt.Sprintf(`# weverse CLI configuration file.
# Account email used for the password login flow.
username: "%s"
# Account password. Leave empty if you provide a token instead.
password: "%s"
# Bearer access token. Takes precedence over username/password when set.
token: "%s"
# Path where notification attachments will be downloaded.
download_path: "%s"
# Path to the SQLite archive tracking seen notifications and downloads.
database_path: "%s"
# Set to true to download post photos and media videos automatically while
# the listen daemon runs.
download_attachments: %t
# Number of concurrent download workers.
max_workers: %d
# Interval between notification polls in daemon mode, e.g. "30s", "2m".
poll_interval: "%s"
# Pages of each community's post feed fetched during cache warmup.
# 0 fetches the entire feed.
init_post_pages: %d
# Client-side rate limit against the API.
requests_per_minute: %g
burst: %d
# Set to true to log raw API responses.
verbose: %t
# Editor to use for the 'edit' command. If empty, it will check $EDITOR, then common editors.
editor: "%s"
# Check GitHub for newer releases on startup.
check_for_updates: %t
# Apply updates automatically when found.
auto_update: %t
`, cfg.Username, cfg.Password, cfg.Token, cfg.DownloadPath, cfg.DatabasePath,
		cfg.DownloadAttachments, cfg.MaxWorkers, cfg.PollInterval, cfg.InitPostPages,
		cfg.RequestsPerMinute, cfg.Burst, cfg.Verbose, cfg.Editor, cfg.CheckForUpdates, cfg.AutoUpdate)
	content = strings.ReplaceAll(content, "\\", "/")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write default config file: %w", err)
	}
	return nil
}
