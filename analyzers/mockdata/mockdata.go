package mockdata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/deepsourcelabs/xaml-sleuth/analyzers"
)

// Table maps a dotted property path to its mock value.
type Table map[string]interface{}

// Lookup returns the value stored at path and whether the path exists. A path
// mapped to nil is found.
func (t Table) Lookup(path string) (interface{}, bool) {
	value, ok := t[path]
	return value, ok
}

// Load reads a mock-data document and flattens it. An empty path returns an
// empty table. Files ending in .yaml or .yml are converted to JSON first.
func Load(path string) (Table, error) {
	if path == "" {
		return Table{}, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: mock data file %s: %w", analyzers.ErrNotFound, path, err)
		}
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		content, err = yaml.YAMLToJSON(content)
		if err != nil {
			return nil, fmt.Errorf("%w: mock data %s: %v", analyzers.ErrMalformedInput, path, err)
		}
	}

	return Parse(content)
}

// Parse decodes a JSON document and flattens it. The top level must be an object.
func Parse(content []byte) (Table, error) {
	var document interface{}
	if err := json.Unmarshal(content, &document); err != nil {
		return nil, fmt.Errorf("%w: mock data is not valid JSON: %v", analyzers.ErrMalformedInput, err)
	}

	object, ok := document.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: mock data must be a JSON object at the top level, got %s", analyzers.ErrMalformedInput, kind(document))
	}

	return Flatten(object), nil
}

// Flatten builds a table keyed by dotted paths. Every nested object is stored
// at its own key as well as its leaves, and every list gets an extra
// "<key>.Count" entry. When a literal dotted key collides with a derived one,
// the key written at the shallower level wins; keys on the same level are
// visited in sorted order.
func Flatten(object map[string]interface{}) Table {
	table := Table{}
	flatten(table, "", object)
	return table
}

func flatten(table Table, prefix string, object map[string]interface{}) {
	keys := make([]string, 0, len(object))
	for key := range object {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	// derived entries first, so the literal keys of this level overwrite them
	for _, key := range keys {
		switch v := object[key].(type) {
		case map[string]interface{}:
			flatten(table, join(prefix, key), v)
		case []interface{}:
			table[join(prefix, key)+".Count"] = len(v)
		}
	}

	for _, key := range keys {
		table[join(prefix, key)] = object[key]
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func kind(value interface{}) string {
	switch value.(type) {
	case nil:
		return "null"
	case []interface{}:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", value)
	}
}
