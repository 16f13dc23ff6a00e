package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "refsplit"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "REFSPLIT_"
)

// Path returns the path to the user config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/refsplit/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load reads a YAML file over the defaults. A missing file at the default
// location is not an error; a missing explicit path is.
func Load(path string) (Style, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = Path()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.DebugDir != "" {
		cfg.DebugDir = ExpandPath(cfg.DebugDir)
	}
	return cfg, nil
}

// Marshal renders the configuration as YAML.
func (s Style) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// ApplyEnv overlays REFSPLIT_* variables read through getenv.
func (s Style) ApplyEnv(getenv func(string) string) (Style, error) {
	str := func(name string, dst *string) {
		if v := getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
	var firstErr error
	num := func(name string, dst *int) {
		v := getenv(EnvPrefix + name)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: %s%s=%q is not an integer", ErrInvalid, EnvPrefix, name, v)
			}
			return
		}
		*dst = n
	}
	flag := func(name string, dst *bool) {
		v := getenv(EnvPrefix + name)
		if v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: %s%s=%q is not a boolean", ErrInvalid, EnvPrefix, name, v)
			}
			return
		}
		*dst = b
	}

	if v := getenv(EnvPrefix + "REF_TYPE"); v != "" {
		var err error
		if s, err = s.FromRefType(v); err != nil {
			return s, err
		}
	}
	if v := getenv(EnvPrefix + "BACKEND"); v != "" {
		s.ExtractionBackendHint = Backend(strings.TrimSpace(v))
	}
	num("MAX_ITER", &s.MaxJoinIterations)
	num("MAX_EDITOR_ITER", &s.MaxEditorIterations)
	num("MAX_HYPHEN_ITER", &s.MaxHyphenIterations)
	num("MAX_APPEND", &s.MaxAppend)
	num("CONTEXT_CHARS", &s.ContextChars)
	num("PAGE_MIN", &s.PageNumberRange.Min)
	num("PAGE_MAX", &s.PageNumberRange.Max)
	flag("UNTIL_EOF", &s.RunToEndOfFile)
	flag("STRIP_NUMBERS", &s.StripNumberPrefix)
	flag("REQUIRE_HEADING", &s.RequireHeading)
	str("DEBUG_DIR", &s.DebugDir)
	str("LOG_LEVEL", &s.LogLevel)
	str("DASH_PLACEHOLDER", &s.DashPlaceholder)

	if s.DebugDir != "" {
		s.DebugDir = ExpandPath(s.DebugDir)
	}
	return s, firstErr
}
