// Package fixture loads seed fixtures and writes them to the cache store.
//
// A fixture names a subject, the claims to put in its session token, a list of
// opaque records to store, and the static image paths a storefront is expected
// to serve. Record values are written as JSON; their shape is up to the backend
// under test.
package fixture

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SubjectPlaceholder is replaced by the fixture subject in record keys.
const SubjectPlaceholder = "{subject}"

// Fixture is the parsed content of a seed file.
type Fixture struct {
	Subject    string         `yaml:"subject"`
	Claims     map[string]any `yaml:"claims"`
	TTLSeconds int64          `yaml:"ttl_seconds"`
	Records    []Record       `yaml:"records"`
	Images     []string       `yaml:"images"`
}

// Record is one key to write.
type Record struct {
	Key        string   `yaml:"key"`
	TTLSeconds int64    `yaml:"ttl_seconds"`
	HashFields []string `yaml:"hash_fields"`
	Value      any      `yaml:"value"`
}

// Load reads and parses a fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes and validates fixture YAML.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	for i := range f.Records {
		f.Records[i].Value = jsonReady(f.Records[i].Value)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixture) validate() error {
	if f.TTLSeconds < 0 {
		return errors.New("ttl_seconds must not be negative")
	}
	for i, rec := range f.Records {
		if strings.TrimSpace(rec.Key) == "" {
			return fmt.Errorf("record %d: key is required", i)
		}
		if strings.Contains(rec.Key, SubjectPlaceholder) && f.Subject == "" {
			return fmt.Errorf("record %q: key uses %s but fixture has no subject", rec.Key, SubjectPlaceholder)
		}
		if rec.TTLSeconds < 0 {
			return fmt.Errorf("record %q: ttl_seconds must not be negative", rec.Key)
		}
		if len(rec.HashFields) > 0 {
			if _, ok := rec.Value.(map[string]any); !ok {
				return fmt.Errorf("record %q: hash_fields needs a mapping value", rec.Key)
			}
		}
	}
	return nil
}

// ResolveKey substitutes the subject into the record key.
func (r Record) ResolveKey(subject string) string {
	return strings.ReplaceAll(r.Key, SubjectPlaceholder, subject)
}

// jsonReady rewrites YAML mappings with non-string keys so encoding/json accepts them.
func jsonReady(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = jsonReady(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = jsonReady(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = jsonReady(item)
		}
		return out
	default:
		return v
	}
}
