package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	YouTube  YouTubeConfig  `yaml:"youtube"`
	Download DownloadConfig `yaml:"download"`
	Activity ActivityConfig `yaml:"activity"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"SERVER_HOST"`
	Port         int           `yaml:"port" envconfig:"SERVER_PORT"`
	APIKey       string        `yaml:"api_key" envconfig:"SERVER_API_KEY"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT"` // downloads block the response
}

// StorageConfig holds filesystem storage configuration.
type StorageConfig struct {
	DownloadsDir string `yaml:"downloads_dir" envconfig:"DOWNLOADS_DIR"`
}

// YouTubeConfig holds YouTube Data API configuration.
type YouTubeConfig struct {
	APIKey  string        `yaml:"api_key" envconfig:"YOUTUBE_API_KEY"`
	BaseURL string        `yaml:"base_url" envconfig:"YOUTUBE_BASE_URL"`
	Timeout time.Duration `yaml:"timeout" envconfig:"YOUTUBE_TIMEOUT"` // 0 disables
}

// DownloadConfig holds yt-dlp configuration.
type DownloadConfig struct {
	YtDlpPath        string        `yaml:"ytdlp_path" envconfig:"YTDLP_PATH"`
	AutoInstall      bool          `yaml:"auto_install" envconfig:"YTDLP_AUTO_INSTALL"`
	ProgressInterval time.Duration `yaml:"progress_interval" envconfig:"DOWNLOAD_PROGRESS_INTERVAL"`
}

// ActivityConfig holds activity log configuration.
type ActivityConfig struct {
	BufferSize int    `yaml:"buffer_size" envconfig:"ACTIVITY_BUFFER_SIZE"`
	SQLitePath string `yaml:"sqlite_path" envconfig:"ACTIVITY_SQLITE_PATH"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `yaml:"level" envconfig:"LOG_LEVEL"`
}

// Default returns the configuration used when neither file nor environment set a value.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        5000,
			ReadTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			DownloadsDir: "~/Downloads",
		},
		YouTube: YouTubeConfig{
			BaseURL: "https://www.googleapis.com/youtube/v3",
		},
		Download: DownloadConfig{
			ProgressInterval: 2 * time.Second,
		},
		Activity: ActivityConfig{
			BufferSize: 500,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from file and environment variables.
// Environment variables override file values, which override Default.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	dir, err := expandHome(cfg.Storage.DownloadsDir)
	if err != nil {
		return nil, fmt.Errorf("expand downloads dir: %w", err)
	}
	cfg.Storage.DownloadsDir = dir

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.YouTube.APIKey == "" {
		return fmt.Errorf("YOUTUBE_API_KEY is required")
	}
	if c.YouTube.BaseURL == "" {
		return fmt.Errorf("YOUTUBE_BASE_URL is required")
	}
	if c.Storage.DownloadsDir == "" {
		return fmt.Errorf("DOWNLOADS_DIR is required")
	}
	if c.Activity.BufferSize <= 0 {
		return fmt.Errorf("ACTIVITY_BUFFER_SIZE must be positive")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SlogLevel parses the configured level name.
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
