// SPDX-License-Identifier: Apache-2.0

// Package source decodes analytics documents from JSON or YAML text into the
// plain JSON value shapes the classifier expects.
package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// DetectFormat resolves a format hint, falling back to content sniffing.
// Documents opening with '{' or '[' are JSON; everything else is YAML.
func DetectFormat(hint string, content []byte) string {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "json":
		return FormatJSON
	case "yaml", "yml":
		return FormatYAML
	}
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

// FormatFromPath returns the format hint implied by a file extension.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	return ""
}

// Decode parses content into a raw document. Blank content decodes to nil.
func Decode(content []byte, hint string) (any, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, nil
	}

	switch DetectFormat(hint, content) {
	case FormatJSON:
		var doc any
		if err := json.Unmarshal(content, &doc); err != nil {
			return nil, fmt.Errorf("Invalid JSON: %w", err)
		}
		return doc, nil
	default:
		var doc any
		if err := yaml.Unmarshal(content, &doc); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		return Normalize(doc), nil
	}
}

// Read loads a document from path, or from r when path is "-".
func Read(path string, r io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// Normalize converts YAML-decoded values to JSON shapes: string-keyed maps,
// []any slices and float64 numbers.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	case int:
		return float64(t)
	case int8:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint8:
		return float64(t)
	case uint16:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	}
	return v
}
