package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultLocale         = "hu"
	DefaultPageSize       = 10
	DefaultExportDir      = "."
	DefaultSessionDir     = "~/.volunteer-admin/sessions"

	EnvAPIURL     = "VOLUNTEER_ADMIN_API_URL"
	EnvJournalURL = "VOLUNTEER_ADMIN_JOURNAL_URL"
)

// Config represents the application configuration
type Config struct {
	APIBaseURL          string        `yaml:"apiBaseURL" validate:"required,url"`
	RequestTimeout      time.Duration `yaml:"requestTimeout"`
	Locale              string        `yaml:"locale" validate:"required,bcp47"`
	PageSize            int           `yaml:"pageSize" validate:"min=1,max=200"`
	ExportDir           string        `yaml:"exportDir"`
	ExportSpreadsheetID string        `yaml:"exportSpreadsheetID,omitempty"`
	JournalDatabaseURL  string        `yaml:"journalDatabaseURL,omitempty" validate:"omitempty,url"`
	SessionDir          string        `yaml:"sessionDir"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("bcp47", func(fl validator.FieldLevel) bool {
		_, err := language.Parse(fl.Field().String())
		return err == nil
	})
}

// ConfigFileName returns the file name searched for the given environment
func ConfigFileName(env string) string {
	if env == "" {
		return "volunteer_admin_config.yaml"
	}
	return "volunteer_admin_config." + env + ".yaml"
}

// LoadWithEnv loads .env (when present), then the environment's config file, applies defaults and
// environment overrides and validates the result.
// It looks for the config file in the current directory first, then in the user's home directory
func LoadWithEnv(env string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	configPath, err := findConfigFile(ConfigFileName(env))
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML config data, applies defaults and overrides and validates it
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.Locale == "" {
		c.Locale = DefaultLocale
	}
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.ExportDir == "" {
		c.ExportDir = DefaultExportDir
	}
	if c.SessionDir == "" {
		c.SessionDir = DefaultSessionDir
	}
}

func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.APIBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvJournalURL)); v != "" {
		c.JournalDatabaseURL = v
	}
}

// Validate validates the configuration struct
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// JournalEnabled reports whether mutations should be recorded in Postgres
func (c *Config) JournalEnabled() bool {
	return c.JournalDatabaseURL != ""
}

// findConfigFile searches for fileName in current directory and home directory
func findConfigFile(fileName string) (string, error) {
	// Check current directory
	if _, err := os.Stat(fileName); err == nil {
		return fileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, fileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", fileName)
}
