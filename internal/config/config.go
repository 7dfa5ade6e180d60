// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultExtensions is the extension set used when the config names none.
var DefaultExtensions = []string{
	".mp4", ".mkv", ".avi", ".mov", ".wmv", ".flv", ".webm", ".m4v",
	".mp3", ".wav", ".flac", ".aac", ".ogg", ".m4a",
}

// Config is the root configuration structure.
type Config struct {
	Default DefaultConfig `toml:"default"`
	Parser  ParserConfig  `toml:"parser"`
	Search  SearchConfig  `toml:"search"`
	History HistoryConfig `toml:"history"`
}

type DefaultConfig struct {
	Extensions        []string `toml:"extensions"`
	CaseSensitive     bool     `toml:"case_sensitive"`
	Overwrite         bool     `toml:"overwrite"`
	MaintainStructure bool     `toml:"maintain_structure"`
	LogLevel          string   `toml:"log_level"`
}

// ParserConfig is accepted and validated but not consumed by the pipeline.
// The keys are reserved for remote playlist fetching.
type ParserConfig struct {
	Timeout   Duration `toml:"timeout"`
	UserAgent string   `toml:"user_agent"`
}

type SearchConfig struct {
	// Recursive is a pointer so an absent key defaults to true.
	Recursive      *bool `toml:"recursive"`
	FollowSymlinks bool  `toml:"follow_symlinks"`
}

type HistoryConfig struct {
	Path string `toml:"path"`
}

// Duration supports "5s"-style values in TOML.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Options is the immutable snapshot of configuration the pipeline reads.
type Options struct {
	Extensions        []string
	CaseSensitive     bool
	Overwrite         bool
	MaintainStructure bool
	Recursive         bool
	FollowSymlinks    bool
}

// Options builds the pipeline options snapshot.
func (c *Config) Options() Options {
	exts := make([]string, len(c.Default.Extensions))
	copy(exts, c.Default.Extensions)
	recursive := true
	if c.Search.Recursive != nil {
		recursive = *c.Search.Recursive
	}
	return Options{
		Extensions:        exts,
		CaseSensitive:     c.Default.CaseSensitive,
		Overwrite:         c.Default.Overwrite,
		MaintainStructure: c.Default.MaintainStructure,
		Recursive:         recursive,
		FollowSymlinks:    c.Search.FollowSymlinks,
	}
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Substitute environment variables
	content := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if len(cfg.Default.Extensions) == 0 {
		cfg.Default.Extensions = append([]string(nil), DefaultExtensions...)
	}
	if cfg.Default.LogLevel == "" {
		cfg.Default.LogLevel = "info"
	}
	if cfg.Parser.Timeout == 0 {
		cfg.Parser.Timeout = Duration(5 * time.Second)
	}
	if cfg.Parser.UserAgent == "" {
		cfg.Parser.UserAgent = "m3usync"
	}
	if cfg.Search.Recursive == nil {
		recursive := true
		cfg.Search.Recursive = &recursive
	}
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1] // Strip ${ and }
		if value, ok := os.LookupEnv(varName); ok {
			return value
		}
		return match // Leave unchanged if not found
	})
}
