package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds user preferences
type Config struct {
	ServerURL      string `yaml:"server_url" json:"server_url"`             // Sync server base URL
	Context        string `yaml:"context" json:"context"`                   // Current context: personal or work
	ArchiveAgeDays int    `yaml:"archive_age_days" json:"archive_age_days"` // Default age for 'archive old'
	PollSeconds    int    `yaml:"poll_seconds" json:"poll_seconds"`         // Connectivity probe interval
	ConfirmDelete  bool   `yaml:"confirm_delete" json:"confirm_delete"`     // Require confirmation for archive/purge

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	logPath := ""
	if home != "" {
		logPath = filepath.Join(home, ".focal", "logs", "focal.log")
	}

	return &Config{
		ServerURL:      getEnv("FOCAL_SERVER_URL", "http://localhost:8080"),
		Context:        "personal",
		ArchiveAgeDays: getEnvInt("FOCAL_ARCHIVE_AGE_DAYS", 28),
		PollSeconds:    30,
		ConfirmDelete:  true,
		LogLevel:       getEnv("FOCAL_LOG_LEVEL", "INFO"),
		LogFile:        getEnv("FOCAL_LOG_FILE", logPath),
		LogConsole:     getEnv("FOCAL_LOG_CONSOLE", "false") == "true",
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// Dir returns the focal config directory (~/.focal)
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".focal"), nil
}

// Load loads config from ~/.focal/config.yaml
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(dir, "config.yaml")

	// Check if exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Return defaults if no config
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save saves config to ~/.focal/config.yaml
func (c *Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(dir, "config.yaml")
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
