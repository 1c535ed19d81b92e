package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the survey file name looked up in the current and home directories.
const DefaultConfigFile = ".relevador.yaml"

// XDGConfigFile is the survey file name looked up in the XDG config directory.
const XDGConfigFile = "config.yaml"

// LoadFile loads a survey file.
// If the file does not exist, it returns ErrConfigNotFound.
// Unknown keys are rejected so that a misspelled setting is not silently ignored.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}
	return ParseFile(data)
}

// ParseFile decodes survey file contents.
func ParseFile(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, newError("", fmt.Errorf("failed to parse survey file: %w", err))
	}
	return &f, nil
}

// FindConfigFile searches for the survey file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .relevador.yaml in the current directory
// 3. Look for config.yaml in the XDG config directory
// 4. Look for .relevador.yaml in the user's home directory
//
// Returns the path to the survey file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), XDGConfigFile))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}
