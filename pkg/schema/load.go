package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a schema document from a file. The format is
// picked from the extension: .yaml/.yml use YAML, everything else JSON.
// Any failure here is fatal to starting a session.
func Load(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return Read(f, FormatYAML)
	default:
		return Read(f, FormatJSON)
	}
}

// Format selects the wire encoding of a schema document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// Read parses a schema document from r and runs structural validation.
func Read(r io.Reader, format Format) (*Schema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	var s Schema
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse schema yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse schema json: %w", err)
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
