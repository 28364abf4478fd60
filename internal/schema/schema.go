// Package schema validates extracted metadata mappings against a JSON
// schema.
package schema

import (
	"crypto/sha256"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Validator wraps a compiled JSON schema.
type Validator struct {
	schema *gojsonschema.Schema
}

var (
	cacheMu sync.Mutex
	cache   = map[[sha256.Size]byte]*Validator{}
)

// Compile returns a validator for the given schema document, reusing a
// process-wide compiled instance per distinct schema. Schemas are static
// configuration, so cached entries live for the process lifetime.
func Compile(schemaJSON []byte) (*Validator, error) {
	key := sha256.Sum256(schemaJSON)

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if v, ok := cache[key]; ok {
		return v, nil
	}

	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	v := &Validator{schema: s}
	cache[key] = v
	return v, nil
}

// Validate checks a metadata mapping against the schema and returns one
// message per violation. An empty slice means the mapping is valid.
func (v *Validator) Validate(payload map[string]any) ([]string, error) {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(payload))
	if err != nil {
		return nil, fmt.Errorf("validate metadata: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return msgs, nil
}
