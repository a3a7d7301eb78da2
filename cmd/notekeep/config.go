package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML configuration loaded with --config.
// Command-line flags take precedence over values read from the file.
type fileConfig struct {
	Dir         string `yaml:"dir" default:"./store"`
	Adapter     string `yaml:"adapter" default:"fs"`
	Codec       string `yaml:"codec" default:"json"`
	StrictCodec bool   `yaml:"strict-codec"`
	DirectWrite bool   `yaml:"direct-write"`
	EventBuffer int    `yaml:"event-buffer" default:"100"`
}

// loadConfig reads a config file, filling unset fields with their defaults.
func loadConfig(path string) (*fileConfig, error) {
	realpath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	c := new(fileConfig)
	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("set default config: %w", err)
	}

	data, err := os.ReadFile(realpath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", realpath, err)
	}

	// Fields present in the file but left empty fall back to defaults too.
	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("set default config: %w", err)
	}
	return c, nil
}
