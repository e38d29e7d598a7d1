// Package config loads and validates the tidyd configuration.
// The on-disk shape is a JSON object; unknown keys are ignored and
// missing keys fall back to the documented defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"tidyd/internal/rules"
	"tidyd/pkg/types"
)

// Config is the immutable-after-load snapshot consulted by every
// component of a run.
type Config struct {
	SourceDirectory   string                `mapstructure:"source_directory" json:"source_directory"`
	TargetDirectory   string                `mapstructure:"target_directory" json:"target_directory"`
	Rules             map[string][]string   `mapstructure:"rules" json:"rules"`
	ExcludeFiles      []string              `mapstructure:"exclude_files" json:"exclude_files"`
	ExcludeDirs       []string              `mapstructure:"exclude_dirs" json:"exclude_dirs"`
	OrganizeBy        types.OrganizeMode    `mapstructure:"organize_by" json:"organize_by"`
	CreateDateFolders bool                  `mapstructure:"create_date_folders" json:"create_date_folders"`
	DuplicateHandling types.DuplicatePolicy `mapstructure:"duplicate_handling" json:"duplicate_handling"`
	MaxFileSizeMB     int64                 `mapstructure:"max_file_size_mb" json:"max_file_size_mb"`
	MinFileSizeKB     int64                 `mapstructure:"min_file_size_kb" json:"min_file_size_kb"`
	WatchDirectories  []string              `mapstructure:"watch_directories" json:"watch_directories"`
	OrganizeInterval  int                   `mapstructure:"organize_interval" json:"organize_interval"`

	Performance struct {
		MaxThreads int `mapstructure:"max_threads" json:"max_threads"`
		BatchSize  int `mapstructure:"batch_size" json:"batch_size"`
	} `mapstructure:"performance" json:"performance"`

	Advanced struct {
		RenamePattern     string `mapstructure:"rename_pattern" json:"rename_pattern"`
		MinFileAgeMinutes int    `mapstructure:"min_file_age_minutes" json:"min_file_age_minutes"`
		ExifDates         bool   `mapstructure:"exif_dates" json:"exif_dates"`
		DetectContentType bool   `mapstructure:"detect_content_type" json:"detect_content_type"`
	} `mapstructure:"advanced" json:"advanced"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`

	History struct {
		Path string `mapstructure:"path" json:"path"`
	} `mapstructure:"history" json:"history"`
}

// DefaultPath returns the default config location
// (~/.config/tidyd/config.json).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(home, ".config", "tidyd", "config.json")
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		SourceDirectory:   "~/Downloads",
		TargetDirectory:   "~/Organized",
		Rules:             rules.DefaultRules(),
		ExcludeFiles:      []string{".DS_Store", "Thumbs.db"},
		ExcludeDirs:       []string{".git", "node_modules", "__pycache__"},
		OrganizeBy:        types.ModeExtension,
		CreateDateFolders: false,
		DuplicateHandling: types.PolicyRename,
		MaxFileSizeMB:     500,
		MinFileSizeKB:     1,
		OrganizeInterval:  3600,
	}
	cfg.Performance.MaxThreads = 4
	cfg.Performance.BatchSize = 100
	cfg.Advanced.RenamePattern = "{name}{counter}{ext}"
	cfg.Logging.Level = "info"
	if home, err := os.UserHomeDir(); err == nil {
		cfg.History.Path = filepath.Join(home, ".local", "share", "tidyd", "history.db")
	}
	return cfg
}

// Load reads the config file at path. A missing file yields the
// defaults; an unreadable or malformed file is an error surfaced
// before any run starts.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.SourceDirectory = ExpandUser(cfg.SourceDirectory)
	cfg.TargetDirectory = ExpandUser(cfg.TargetDirectory)
	cfg.Logging.File = ExpandUser(cfg.Logging.File)
	cfg.History.Path = ExpandUser(cfg.History.Path)
	for i, dir := range cfg.WatchDirectories {
		cfg.WatchDirectories[i] = ExpandUser(dir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("source_directory", def.SourceDirectory)
	v.SetDefault("target_directory", def.TargetDirectory)
	v.SetDefault("rules", def.Rules)
	v.SetDefault("exclude_files", def.ExcludeFiles)
	v.SetDefault("exclude_dirs", def.ExcludeDirs)
	v.SetDefault("organize_by", string(def.OrganizeBy))
	v.SetDefault("create_date_folders", def.CreateDateFolders)
	v.SetDefault("duplicate_handling", string(def.DuplicateHandling))
	v.SetDefault("max_file_size_mb", def.MaxFileSizeMB)
	v.SetDefault("min_file_size_kb", def.MinFileSizeKB)
	v.SetDefault("organize_interval", def.OrganizeInterval)
	v.SetDefault("performance.max_threads", def.Performance.MaxThreads)
	v.SetDefault("performance.batch_size", def.Performance.BatchSize)
	v.SetDefault("advanced.rename_pattern", def.Advanced.RenamePattern)
	v.SetDefault("advanced.min_file_age_minutes", def.Advanced.MinFileAgeMinutes)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("history.path", def.History.Path)
}

// Validate checks the loaded configuration before any run starts.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("nil config")
	}
	if c.SourceDirectory == "" {
		return fmt.Errorf("source_directory is required")
	}
	if c.TargetDirectory == "" {
		return fmt.Errorf("target_directory is required")
	}
	if !c.OrganizeBy.Valid() {
		return fmt.Errorf("invalid organize_by: %q", c.OrganizeBy)
	}
	if !c.DuplicateHandling.Valid() {
		return fmt.Errorf("invalid duplicate_handling: %q", c.DuplicateHandling)
	}
	if c.MaxFileSizeMB < 0 || c.MinFileSizeKB < 0 {
		return fmt.Errorf("file size thresholds must be >= 0")
	}
	if c.Performance.MaxThreads < 1 {
		return fmt.Errorf("performance.max_threads must be >= 1")
	}
	if c.Performance.BatchSize < 1 {
		return fmt.Errorf("performance.batch_size must be >= 1")
	}
	if !strings.Contains(c.Advanced.RenamePattern, "{counter}") {
		return fmt.Errorf("advanced.rename_pattern must contain {counter}")
	}
	if c.OrganizeInterval < 1 {
		return fmt.Errorf("organize_interval must be >= 1 second")
	}
	return nil
}

// Save writes the configuration as indented JSON, creating parent
// directories as needed.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// ExpandUser replaces a leading ~ with the user's home directory.
func ExpandUser(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}
