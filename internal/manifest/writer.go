package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// PathIn returns the manifest location inside dir.
func PathIn(dir string) string {
	return filepath.Join(dir, FileName)
}

// Write writes a manifest to a YAML file
func Write(m *Manifest, path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Read reads a manifest from a YAML file
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if m.Version != Version {
		return nil, fmt.Errorf("manifest %s: unsupported version %q", path, m.Version)
	}
	return &m, nil
}

// ReadOptional is Read, but a missing file yields (nil, nil).
func ReadOptional(path string) (*Manifest, error) {
	m, err := Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return m, err
}
