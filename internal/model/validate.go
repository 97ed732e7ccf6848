package model

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// ErrInvalidOutput is returned for model output that is not JSON, misses a
// required field or has a field of the wrong type.
var ErrInvalidOutput = errors.New("model: invalid task output")

var (
	schemaMu    sync.Mutex
	schemaCache = map[string]*gojsonschema.Schema{}
)

func loadSchema(name string) (*gojsonschema.Schema, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()
	if s, ok := schemaCache[name]; ok {
		return s, nil
	}
	b, err := schemaFS.ReadFile("schemas/" + name + ".schema.json")
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(b))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	schemaCache[name] = s
	return s, nil
}

// ValidateMap validates a decoded JSON object against the named embedded
// schema.
func ValidateMap(schema string, m map[string]interface{}) error {
	s, err := loadSchema(schema)
	if err != nil {
		return err
	}
	res, err := s.Validate(gojsonschema.NewGoLoader(m))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: schema validation failed: %s", ErrInvalidOutput, strings.Join(msgs, "; "))
}

// decodeObject parses raw model text as a JSON object.
func decodeObject(raw []byte) (map[string]interface{}, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: not a JSON object", ErrInvalidOutput)
	}
	return m, nil
}

// setDefault fills key when it is absent or null. Present values of the
// wrong type are left for the schema to reject.
func setDefault(m map[string]interface{}, key string, value interface{}) {
	if v, ok := m[key]; !ok || v == nil {
		m[key] = value
	}
}

func objects(m map[string]interface{}, key string) []map[string]interface{} {
	arr, _ := m[key].([]interface{})
	out := make([]map[string]interface{}, 0, len(arr))
	for _, it := range arr {
		if obj, ok := it.(map[string]interface{}); ok {
			out = append(out, obj)
		}
	}
	return out
}

// remarshal converts the validated, normalized map into its typed form.
func remarshal(m map[string]interface{}, out interface{}) error {
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	return nil
}
