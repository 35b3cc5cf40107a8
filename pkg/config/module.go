package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DEFAULT []byte

func apply(config *Config, data []byte) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	err := decoder.Decode(config)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func readFile(config *Config, path string) error {
	// Check if this is a valid file
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("does not exist")
	}

	switch filepath.Ext(path) {
	// JSON is a subset of YAML
	case ".json", ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return apply(config, data)
	}

	return fmt.Errorf(
		"not in a valid format",
	)
}

func (c *Config) validate() error {
	if c.Root == "" {
		return fmt.Errorf("root must be set")
	}

	if c.DefaultMod == "" {
		return fmt.Errorf("defaultMod must be set")
	}

	return nil
}

// Process starts from the default configuration and applies the provided
// configuration files in order, so later files override earlier ones.
func Process(configPaths []string) (*Config, error) {
	config := Config{}
	err := apply(&config, DEFAULT)
	if err != nil {
		return nil, fmt.Errorf(
			"invalid default config file: %v",
			err,
		)
	}

	for _, path := range configPaths {
		err := readFile(&config, path)
		if err != nil {
			return nil, fmt.Errorf(
				"could not process config file %s: %v",
				path,
				err,
			)
		}

		err = config.validate()
		if err != nil {
			return nil, fmt.Errorf(
				"config file %s is not valid: %v",
				path,
				err,
			)
		}
	}

	return &config, nil
}
