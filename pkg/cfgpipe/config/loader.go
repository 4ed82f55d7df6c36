package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/keypath"
)

// Format is a document encoding.
type Format string

const (
	// FormatYAML is YAML 1.2 via gopkg.in/yaml.v3.
	FormatYAML Format = "yaml"

	// FormatJSON is JSON.
	FormatJSON Format = "json"
)

// DefaultIndent is the indentation width used by Encode.
const DefaultIndent = 2

// FormatFromPath picks the format from the file extension.
// Supported extensions: .yaml, .yml, .json (case-insensitive).
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", cerrors.Errorf(cerrors.KindValue, "unsupported config file extension: %q", ext)
	}
}

// Load reads and decodes the document at path into a plain nested mapping.
func Load(path string) (map[string]any, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read config file: %w", cerrors.ErrIO, err)
	}
	return Decode(data, format)
}

// Decode parses data into a plain nested mapping. An empty document yields
// an empty mapping. JSON integers decode as int, not float64.
func Decode(data []byte, format Format) (map[string]any, error) {
	var raw any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, cerrors.Errorf(cerrors.KindValue, "parse yaml: %v", err)
		}
	case FormatJSON:
		if len(bytes.TrimSpace(data)) == 0 {
			return make(map[string]any), nil
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, cerrors.Errorf(cerrors.KindValue, "parse json: %v", err)
		}
		raw = jsonNumbers(raw)
	default:
		return nil, cerrors.Errorf(cerrors.KindValue, "unsupported format %q", format)
	}
	return keypath.NormalizeMap(raw)
}

// jsonNumbers replaces json.Number values with int or float64.
func jsonNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i)
		}
		f, _ := val.Float64()
		return f
	case map[string]any:
		for k, child := range val {
			val[k] = jsonNumbers(child)
		}
		return val
	case []any:
		for i, child := range val {
			val[i] = jsonNumbers(child)
		}
		return val
	default:
		return v
	}
}

// FromFile loads configuration from a file, auto-detecting format by extension.
func FromFile(path string) (Config, error) {
	m, err := Load(path)
	if err != nil {
		return Config{}, err
	}
	return New(m), nil
}

// FromYAML parses YAML data into a Config.
func FromYAML(data []byte) (Config, error) {
	m, err := Decode(data, FormatYAML)
	if err != nil {
		return Config{}, err
	}
	return New(m), nil
}

// FromJSON parses JSON data into a Config.
func FromJSON(data []byte) (Config, error) {
	m, err := Decode(data, FormatJSON)
	if err != nil {
		return Config{}, err
	}
	return New(m), nil
}

// EncodeOptions configures Encode.
type EncodeOptions struct {
	// Indent is the number of spaces per nesting level. Zero means DefaultIndent.
	Indent int
}

// Encode serializes cfg in the given format, preserving nesting.
func Encode(w io.Writer, cfg map[string]any, format Format, opts EncodeOptions) error {
	indent := opts.Indent
	if indent <= 0 {
		indent = DefaultIndent
	}
	if cfg == nil {
		cfg = map[string]any{}
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(indent)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("%w: encode yaml: %w", cerrors.ErrIO, err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("%w: encode yaml: %w", cerrors.ErrIO, err)
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", strings.Repeat(" ", indent))
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("%w: encode json: %w", cerrors.ErrIO, err)
		}
		return nil
	default:
		return cerrors.Errorf(cerrors.KindValue, "unsupported format %q", format)
	}
}

// Marshal is Encode into a byte slice.
func Marshal(cfg map[string]any, format Format, opts EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, cfg, format, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes cfg to path, choosing the format from the extension.
// The parent directory must exist.
func Write(path string, cfg map[string]any, opts EncodeOptions) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Marshal(cfg, format, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %w", cerrors.ErrIO, path, err)
	}
	return nil
}
