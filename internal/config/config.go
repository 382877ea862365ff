// Package config loads, defaults and validates gqlopera.config.json.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hanpama/gqlopera/internal/operation"
	"github.com/hanpama/gqlopera/internal/selection"
)

// FileName is the configuration file looked up by default.
const FileName = "gqlopera.config.json"

var (
	// ErrUnsupportedFormat is returned for configuration files that are not JSON.
	ErrUnsupportedFormat = errors.New("only JSON configuration files are supported, use the .json extension")
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("configuration validation failed")
)

// Config is the complete set of generation settings. Zero values are filled
// from Default before validation.
type Config struct {
	Endpoint         string            `json:"endpoint,omitempty" validate:"required_without=Schema,omitempty,url"`
	Schema           string            `json:"schema,omitempty"`
	Output           string            `json:"output" validate:"required"`
	Headers          map[string]string `json:"headers"`
	MaxDepth         int               `json:"maxDepth" validate:"min=1,max=10"`
	MaxFields        int               `json:"maxFields" validate:"min=5,max=100"`
	CircularRefs     string            `json:"circularRefs" validate:"oneof=skip silent allow"`
	CircularRefDepth int               `json:"circularRefDepth" validate:"min=0"`
	CircularRefTypes map[string]int    `json:"circularRefTypes,omitempty" validate:"dive,min=0"`
	ExcludeTypes     []string          `json:"excludeTypes,omitempty"`
	IncludeFields    []string          `json:"includeFields,omitempty"`
	ExcludeFields    []string          `json:"excludeFields,omitempty"`
	FieldDepthMap    map[string]int    `json:"fieldDepthMap,omitempty" validate:"dive,min=1,max=10"`
	ShallowMode      bool              `json:"shallowMode,omitempty"`
	Watch            bool              `json:"watch,omitempty"`
	WatchInterval    Duration          `json:"watchInterval,omitempty" validate:"min=1s"`
	Timeout          Duration          `json:"timeout,omitempty" validate:"min=1s"`
	Verify           bool              `json:"verify,omitempty"`
	EmitSDL          bool              `json:"emitSDL,omitempty"`
}

// Default returns the configuration used when neither a file nor flags set
// a value.
func Default() Config {
	return Config{
		Output:           "graphql",
		MaxDepth:         5,
		MaxFields:        50,
		CircularRefs:     string(selection.CircularSkip),
		CircularRefDepth: 1,
		WatchInterval:    Duration(5 * time.Second),
		Timeout:          Duration(30 * time.Second),
	}
}

// Load reads path on top of Default. A missing file is reported with an
// error wrapping fs.ErrNotExist together with the defaults, so callers can
// warn and continue.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	full, err := filepath.Abs(path)
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("config file not found: %s: %w", full, fs.ErrNotExist)
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if !strings.EqualFold(filepath.Ext(full), ".json") {
		return cfg, ErrUnsupportedFormat
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse JSON config file: %w", err)
	}
	return cfg, nil
}

// Finalize applies derived settings and validates c.
func (c *Config) Finalize() error {
	if c.ShallowMode {
		c.MaxDepth = 1
	}
	return Validate(c)
}

// Generator returns the operation generator options described by c.
func (c *Config) Generator() operation.Options {
	return operation.Options{
		Selection: selection.Options{
			MaxDepth:         c.MaxDepth,
			MaxFields:        c.MaxFields,
			CircularRefs:     selection.CircularMode(c.CircularRefs),
			CircularRefDepth: c.CircularRefDepth,
			CircularRefTypes: c.CircularRefTypes,
			ExcludeTypes:     c.ExcludeTypes,
		},
		IncludeFields: c.IncludeFields,
		ExcludeFields: c.ExcludeFields,
		FieldDepth:    c.FieldDepthMap,
	}
}

// ParseHeaders decodes a JSON object of header names to values, as accepted
// by the --headers flag.
func ParseHeaders(raw string) (map[string]string, error) {
	var h map[string]string
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		return nil, fmt.Errorf("invalid JSON format for headers: %w", err)
	}
	return h, nil
}

// Init writes a starter configuration file into dir. It reports false when a
// file already exists and leaves it untouched.
func Init(dir string) (path string, created bool, err error) {
	path = filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	}

	cfg := Default()
	cfg.Endpoint = "http://localhost:4000/graphql"
	cfg.Headers = map[string]string{}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return path, false, err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return path, false, fmt.Errorf("write config: %w", err)
	}
	return path, true, nil
}
