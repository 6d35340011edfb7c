// Package giftfile reads bulk gift imports from YAML or JSON files.
package giftfile

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and parsing of a gift import file
type Loader struct {
	filePath string
}

// NewLoader creates a new gift file loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the import file
func (l *Loader) Load() (File, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return File{}, fmt.Errorf("failed to read gift file: %w", err)
	}
	return Parse(data)
}

// Parse decodes an import document. JSON is parsed as YAML.
func Parse(data []byte) (File, error) {
	var f File
	if len(bytes.TrimSpace(data)) == 0 {
		return f, fmt.Errorf("gift file is empty")
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("failed to parse gift file: %w", err)
	}
	return f, nil
}
