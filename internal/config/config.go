package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/magiconair/properties"
	"gopkg.in/yaml.v3"

	"github.com/mahyarmirrashed/afd/internal/excluder"
	"github.com/mahyarmirrashed/afd/internal/utils"
	"github.com/mahyarmirrashed/afd/pkg/retention"
)

// DefaultConfigFilename is the file read when no --config flag is given.
const DefaultConfigFilename = "config.properties"

// Configuration keys.
const (
	KeyRootPath              = "ROOT_PATH"
	KeyTempPath              = "TEMP_PATH"
	KeyDeletionFrequencyDays = "DELETION_FREQUENCY_DAYS"
	KeyFolderNames           = "FOLDER_NAMES"
	KeyLogLevel              = "LOG_LEVEL"
	KeyExclude               = "EXCLUDE"
	KeyDryRun                = "DRY_RUN"
	KeyDaemonize             = "DAEMONIZE"
	KeyNotifications         = "NOTIFICATIONS"
)

// Config holds the daemon configuration. It is built once at startup and
// treated as read-only afterwards.
type Config struct {
	RootPath              string   // Base directory containing the watched folders
	TempPath              string   // Holding area for aged files
	DeletionFrequencyDays int      // Age threshold and sweep interval, in days
	FolderNames           []string // Watched folders under RootPath, in sweep order
	LogLevel              string   // Logging level: debug, info, warn, error
	Exclude               []string // Glob patterns to leave in place
	DryRun                bool     // If true, don't move or delete files
	Daemonize             bool     // If true, run as daemon; if false, run in foreground
	Notifications         bool     // If true, send desktop notifications
}

// ConfigError reports an unreadable, incomplete or malformed configuration.
type ConfigError struct {
	Source string // File or flag set the value came from
	Key    string // Offending key, empty when the whole source failed
	Err    error
}

func (e *ConfigError) Error() string {
	switch {
	case e.Source != "" && e.Key != "":
		return fmt.Sprintf("config %s: %s: %v", e.Source, e.Key, e.Err)
	case e.Key != "":
		return fmt.Sprintf("config: %s: %v", e.Key, e.Err)
	case e.Source != "":
		return fmt.Sprintf("config %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("config: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

var errMissing = errors.New("missing required value")

// LoadConfig reads a configuration file. The format is picked from the
// extension: .yaml/.yml, .toml, anything else is read as Java properties.
// Missing keys are not reported here; call Validate once overrides are applied.
func LoadConfig(path string) (*Config, error) {
	values := map[string]any{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &ConfigError{Source: path, Err: err}
		}
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, &ConfigError{Source: path, Err: fmt.Errorf("failed to parse YAML: %w", err)}
		}
	case ".toml":
		if _, err := toml.DecodeFile(path, &values); err != nil {
			return nil, &ConfigError{Source: path, Err: fmt.Errorf("failed to parse TOML: %w", err)}
		}
	default:
		p, err := properties.LoadFile(path, properties.UTF8)
		if err != nil {
			return nil, &ConfigError{Source: path, Err: err}
		}
		for k, v := range p.Map() {
			values[k] = v
		}
	}

	return FromValues(path, values)
}

// FromValues builds a Config from decoded key/value pairs. Keys are
// matched case-insensitively and '-' is treated as '_'.
func FromValues(source string, values map[string]any) (*Config, error) {
	cfg := &Config{}

	for rawKey, v := range values {
		key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(rawKey), "-", "_"))

		switch key {
		case KeyRootPath:
			cfg.RootPath = utils.ExpandTilde(strings.TrimSpace(scalar(v)))
		case KeyTempPath:
			cfg.TempPath = utils.ExpandTilde(strings.TrimSpace(scalar(v)))
		case KeyDeletionFrequencyDays:
			days, err := ParseDays(scalar(v))
			if err != nil {
				return nil, &ConfigError{Source: source, Key: key, Err: err}
			}
			cfg.DeletionFrequencyDays = days
		case KeyFolderNames:
			cfg.FolderNames = list(v)
		case KeyLogLevel:
			cfg.LogLevel = strings.ToLower(strings.TrimSpace(scalar(v)))
		case KeyExclude:
			cfg.Exclude = list(v)
		case KeyDryRun, KeyDaemonize, KeyNotifications:
			b, err := boolean(v)
			if err != nil {
				return nil, &ConfigError{Source: source, Key: key, Err: err}
			}
			switch key {
			case KeyDryRun:
				cfg.DryRun = b
			case KeyDaemonize:
				cfg.Daemonize = b
			default:
				cfg.Notifications = b
			}
		}
	}

	return cfg, nil
}

// ParseDays parses a deletion frequency. The value must be an integer; its
// sign is checked by Validate.
func ParseDays(raw string) (int, error) {
	days, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", raw)
	}
	return days, nil
}

// SplitList splits a comma-separated value, trimming entries and dropping
// empty ones.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks that every required value is present and well-formed.
func (c *Config) Validate() error {
	if c.RootPath == "" {
		return &ConfigError{Key: KeyRootPath, Err: errMissing}
	}
	if c.TempPath == "" {
		return &ConfigError{Key: KeyTempPath, Err: errMissing}
	}
	if c.DeletionFrequencyDays <= 0 {
		return &ConfigError{Key: KeyDeletionFrequencyDays, Err: fmt.Errorf("must be a positive integer, got %d", c.DeletionFrequencyDays)}
	}
	if c.DeletionFrequencyDays > retention.MaxDays {
		return &ConfigError{Key: KeyDeletionFrequencyDays, Err: fmt.Errorf("must be at most %d, got %d", retention.MaxDays, c.DeletionFrequencyDays)}
	}
	if len(c.FolderNames) == 0 {
		return &ConfigError{Key: KeyFolderNames, Err: errMissing}
	}

	for _, name := range c.FolderNames {
		clean := filepath.Clean(name)
		if filepath.IsAbs(clean) || clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			return &ConfigError{Key: KeyFolderNames, Err: fmt.Errorf("%q does not resolve below %s", name, KeyRootPath)}
		}
	}

	dirs := []struct{ key, path string }{
		{KeyRootPath, c.RootPath},
		{KeyTempPath, c.TempPath},
	}
	for _, d := range dirs {
		info, err := os.Stat(d.path)
		if err != nil {
			return &ConfigError{Key: d.key, Err: err}
		}
		if !info.IsDir() {
			return &ConfigError{Key: d.key, Err: fmt.Errorf("%s is not a directory", d.path)}
		}
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return &ConfigError{Key: KeyLogLevel, Err: fmt.Errorf("invalid log level: %s", c.LogLevel)}
	}

	if _, err := excluder.New(c.Exclude, c.RootPath); err != nil {
		return &ConfigError{Key: KeyExclude, Err: err}
	}

	return nil
}

// Interval is the wait between two sweeps.
func (c *Config) Interval() time.Duration {
	return retention.Interval(c.DeletionFrequencyDays)
}

// FolderPaths resolves the watched folders below RootPath, in sweep order.
func (c *Config) FolderPaths() []string {
	paths := make([]string, 0, len(c.FolderNames))
	for _, name := range c.FolderNames {
		paths = append(paths, filepath.Join(c.RootPath, name))
	}
	return paths
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func list(v any) []string {
	switch t := v.(type) {
	case []string:
		var out []string
		for _, s := range t {
			out = append(out, SplitList(s)...)
		}
		return out
	case []any:
		var out []string
		for _, s := range t {
			out = append(out, SplitList(scalar(s))...)
		}
		return out
	default:
		return SplitList(scalar(v))
	}
}

func boolean(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case nil:
		return false, nil
	default:
		b, err := strconv.ParseBool(strings.TrimSpace(scalar(t)))
		if err != nil {
			return false, fmt.Errorf("not a boolean: %q", scalar(t))
		}
		return b, nil
	}
}
