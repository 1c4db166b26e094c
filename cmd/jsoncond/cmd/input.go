package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/solatis/jsoncond/internal/types"
	"gopkg.in/yaml.v3"
)

// readInput reads path, or in when path is "-", up to MaxPayloadSize bytes.
func readInput(in io.Reader, path string) ([]byte, error) {
	var r io.Reader
	if path == "-" {
		r = in
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, types.MaxPayloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) > types.MaxPayloadSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", path, types.MaxPayloadSize)
	}
	return data, nil
}

// isYAML reports whether path names a YAML document.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// yamlToJSON re-encodes a YAML document as JSON.
func yamlToJSON(path string, data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	return json.Marshal(types.Normalize(doc))
}

// loadCondition reads and decodes a condition document. Files ending in
// .yaml or .yml are decoded as YAML, anything else as JSON. The JSON form is
// returned alongside for storage.
func loadCondition(in io.Reader, path string) (types.Condition, []byte, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("--condition is required")
	}
	raw, err := readInput(in, path)
	if err != nil {
		return nil, nil, err
	}
	if !isYAML(path) {
		cond, err := types.Parse(raw)
		if err != nil {
			return nil, nil, err
		}
		return cond, raw, nil
	}

	cond, err := types.ParseYAML(raw)
	if err != nil {
		return nil, nil, err
	}
	body, err := yamlToJSON(path, raw)
	if err != nil {
		return nil, nil, err
	}
	return cond, body, nil
}

// loadData reads the document a condition is checked against. An empty
// path yields nil.
func loadData(in io.Reader, path string) (any, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := readInput(in, path)
	if err != nil {
		return nil, err
	}
	if isYAML(path) {
		if raw, err = yamlToJSON(path, raw); err != nil {
			return nil, err
		}
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("invalid data JSON in %s: %w", path, err)
	}
	return data, nil
}
