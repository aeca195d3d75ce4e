package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config specifies the file format of config files.
type Config struct {
	ServerAddr  string `yaml:"addr"`
	MetricsAddr string `yaml:"metrics-addr"` // Optional metrics/debug listener.
	DataDir     string `yaml:"data-dir"`     // Directory for the pebble database.
}

func ReadConfig(filename string) (*Config, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var parsed Config
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}

	if parsed.ServerAddr == "" {
		return nil, fmt.Errorf("field not provided: addr")
	} else if parsed.DataDir == "" {
		return nil, fmt.Errorf("field not provided: data-dir")
	}

	return &parsed, nil
}
