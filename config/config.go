package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lepinkainen/imgconvert/converter"
	"github.com/lepinkainen/imgconvert/picker"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Defaults holds the starting values of the conversion form
type Defaults struct {
	Height  string `toml:"height"`
	Width   string `toml:"width"`
	Quality string `toml:"quality"`
	Format  string `toml:"format"`
}

// Logging controls the slog handler
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // console or json
	File   string `toml:"file"`
}

// Config is the imgconvert configuration file
type Config struct {
	Endpoint            string   `toml:"endpoint"`
	TimeoutSeconds      int      `toml:"timeout_seconds"`
	Offline             bool     `toml:"offline"`
	OutputDir           string   `toml:"output_dir"`
	MaxFiles            int      `toml:"max_files"`
	SimilarityThreshold int      `toml:"similarity_threshold"`
	Defaults            Defaults `toml:"defaults"`
	Logging             Logging  `toml:"logging"`
}

// DefaultConfigPath returns ~/.config/imgconvert/config.toml (or the platform equivalent)
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(dir, "imgconvert", "config.toml"), nil
}

// Load reads the config at path, or the default location when path is empty.
// A missing default file is not an error; defaults are returned instead.
// It returns the config, the resolved path and whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	resolved, explicit, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	exists := false

	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer func() { _ = file.Close() }()
		exists = true
		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, "", false, fmt.Errorf("open config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		return expanded, true, err
	}
	resolved, err := DefaultConfigPath()
	return resolved, false, err
}

func (c *Config) normalize() error {
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Defaults.Format = strings.ToLower(strings.TrimSpace(c.Defaults.Format))

	var err error
	if c.OutputDir, err = ExpandPath(c.OutputDir); err != nil {
		return err
	}
	if c.Logging.File != "" {
		if c.Logging.File, err = ExpandPath(c.Logging.File); err != nil {
			return err
		}
	}
	return nil
}

// ExpandPath resolves a leading ~ and makes the path absolute
func ExpandPath(pathValue string) (string, error) {
	cleaned := strings.TrimSpace(pathValue)
	if cleaned == "" {
		return "", nil
	}
	if cleaned == "~" || strings.HasPrefix(cleaned, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		cleaned = filepath.Join(home, strings.TrimPrefix(cleaned, "~"))
	}
	abs, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return abs, nil
}

// CreateSample writes a commented sample config to path
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML
func (c *Config) Encode() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(data), nil
}

// Options converts the form defaults into converter options
func (c *Config) Options() converter.Options {
	opts := converter.Options{
		Height:  c.Defaults.Height,
		Width:   c.Defaults.Width,
		Quality: c.Defaults.Quality,
		Format:  converter.FormatWebP,
	}
	if format, err := converter.ParseFormat(c.Defaults.Format); err == nil {
		opts.Format = format
	}
	return opts
}

// Limits returns the picker limits
func (c *Config) Limits() picker.Limits {
	return picker.Limits{
		MaxFiles:            c.MaxFiles,
		SimilarityThreshold: c.SimilarityThreshold,
	}
}

// Timeout returns the request timeout; zero means wait indefinitely
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
