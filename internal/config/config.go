// Package config loads translator settings from YAML files and from the
// loose maps handed over by the MCP and HTTP adapters.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/tela/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// File is the structure of tela.yaml.
type File struct {
	// Preset is applied to the defaults before the translation section.
	Preset      string        `yaml:"preset" json:"preset"`
	Translation domain.Config `yaml:"translation" json:"translation"`
	LogLevel    string        `yaml:"log_level" json:"log_level"`
	Server      Server        `yaml:"server" json:"server"`
	Cache       Cache         `yaml:"cache" json:"cache"`
}

// Server configures `tela serve`.
type Server struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Cache selects where rendered automata are kept. An empty RedisAddr
// keeps them in memory.
type Cache struct {
	RedisAddr     string        `yaml:"redis_addr" json:"redis_addr"`
	RedisPassword string        `yaml:"redis_password" json:"redis_password"`
	RedisDB       int           `yaml:"redis_db" json:"redis_db"`
	TTL           time.Duration `yaml:"ttl" json:"ttl"`
}

// Default returns the settings used without a file.
func Default() File {
	return File{
		Preset:      "none",
		Translation: domain.DefaultConfig(),
		LogLevel:    "info",
		Server:      Server{Addr: ":8080"},
	}
}

// Load reads a YAML (or JSON, by extension) file. Fields missing from the
// file keep their default, and a missing file yields the defaults.
func Load(path string) (File, error) {
	f := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return f, fmt.Errorf("failed to read config: %w", err)
	}

	unmarshal := func(out *File) error {
		if strings.ToLower(filepath.Ext(path)) == ".json" {
			dec := json.NewDecoder(bytes.NewReader(data))
			dec.DisallowUnknownFields()
			return dec.Decode(out)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	}

	// the preset must be known before the explicit fields override it
	if err := unmarshal(&f); err != nil {
		return f, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	preset := f.Preset
	f = Default()
	f.Preset = preset
	if err := f.Translation.ApplyPreset(preset); err != nil {
		return f, err
	}
	if err := unmarshal(&f); err != nil {
		return f, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if err := f.Translation.Validate(); err != nil {
		return f, err
	}
	return f, nil
}

// Decode overlays the entries of m on base. Keys use the snake_case names
// of domain.Config; numbers may arrive as float64 or strings, as they do
// from JSON-RPC arguments. A "preset" key is applied first.
func Decode(m map[string]any, base domain.Config) (domain.Config, error) {
	cfg := base
	if p, ok := m["preset"]; ok {
		name, _ := p.(string)
		if err := cfg.ApplyPreset(name); err != nil {
			return base, err
		}
	}

	var unused mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		Metadata:         &unused,
	})
	if err != nil {
		return base, err
	}
	if err := dec.Decode(m); err != nil {
		return base, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	for _, k := range unused.Unused {
		if k != "preset" {
			return base, fmt.Errorf("%w: unknown option %q", domain.ErrInvalidConfig, k)
		}
	}
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}
