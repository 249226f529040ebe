package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/paws-sec/paws/internal/tools"
)

// FallbackRegion is used when neither a flag, the config file, nor the AWS
// profile supplies a region.
const FallbackRegion = "us-west-2"

// Config is the top-level application configuration.
// It is loaded from ~/.config/paws/config.yaml and must never be committed
// with real secrets.
type Config struct {
	AWS    AWSConfig    `yaml:"aws"    json:"aws"`
	Tools  ToolsConfig  `yaml:"tools"  json:"tools"`
	Output OutputConfig `yaml:"output" json:"output"`
}

// AWSConfig holds AWS-specific defaults used when flags are not provided.
type AWSConfig struct {
	// DefaultRegion is used when no region flag or profile region is set.
	DefaultRegion string `yaml:"default_region" json:"default_region"`

	// DefaultProfile is used when no --profile flag is provided.
	DefaultProfile string `yaml:"default_profile" json:"default_profile"`
}

// ToolsConfig controls how external scanners are located and run.
type ToolsConfig struct {
	// Dirs are searched, in order, after PATH.
	Dirs []string `yaml:"dirs" json:"dirs"`

	// Python is the interpreter used for .py entry points.
	Python string `yaml:"python" json:"python"`

	// Timeout bounds a single tool invocation.
	Timeout Duration `yaml:"timeout" json:"timeout"`

	PACUModules        []string `yaml:"pacu_modules"        json:"pacu_modules"`
	CloudMapperAccount string   `yaml:"cloudmapper_account" json:"cloudmapper_account"`
}

// OutputConfig holds report output defaults.
type OutputConfig struct {
	// Dir is the root directory for tool artefacts.
	Dir string `yaml:"dir" json:"dir"`
}

// Duration is a time.Duration that reads Go duration strings ("45m") in YAML.
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration back as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Tools: ToolsConfig{
			Dirs:    []string{"tools", filepath.Join("..", "tools")},
			Python:  "python3",
			Timeout: Duration(30 * time.Minute),
			PACUModules: append([]string(nil), tools.DefaultPACUModules...),
		},
		Output: OutputConfig{Dir: "out"},
	}
}

// Loader is the interface for reading Config from disk.
type Loader interface {
	// Load reads and parses the configuration file.
	Load() (*Config, error)

	// ConfigPath returns the absolute path to the configuration file.
	ConfigPath() string
}

// FileLoader reads Config from a YAML file. A missing file yields Default().
type FileLoader struct {
	Path string
}

// NewFileLoader returns a loader for path, or for the default location under
// the user's config directory when path is empty.
func NewFileLoader(path string) *FileLoader {
	if path == "" {
		path = DefaultPath()
	}
	return &FileLoader{Path: path}
}

// DefaultPath returns ~/.config/paws/config.yaml, or "" when the home
// directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "paws", "config.yaml")
}

// ConfigPath implements Loader.
func (l *FileLoader) ConfigPath() string { return l.Path }

// Load implements Loader. Values absent from the file keep their defaults.
func (l *FileLoader) Load() (*Config, error) {
	cfg := Default()
	if l.Path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(l.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", l.Path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", l.Path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", l.Path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Tools.Timeout < 0 {
		return fmt.Errorf("tools.timeout must not be negative")
	}
	if c.Tools.Timeout == 0 {
		c.Tools.Timeout = Duration(30 * time.Minute)
	}
	if c.Tools.Python == "" {
		c.Tools.Python = "python3"
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "out"
	}
	return nil
}

// ResolveRegion picks the region from, in order: the flag value, the config
// default, the profile's own region, and FallbackRegion.
func (c *Config) ResolveRegion(flagValue, profileRegion string) string {
	switch {
	case flagValue != "":
		return flagValue
	case c != nil && c.AWS.DefaultRegion != "":
		return c.AWS.DefaultRegion
	case profileRegion != "":
		return profileRegion
	default:
		return FallbackRegion
	}
}

// ResolveProfile returns the flag value or the configured default profile.
func (c *Config) ResolveProfile(flagValue string) string {
	if flagValue != "" || c == nil {
		return flagValue
	}
	return c.AWS.DefaultProfile
}
