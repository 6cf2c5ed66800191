package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap stores an arbitrary JSON object inside a JSONB column. Order
// metadata is persisted through this type; the shape inside is convention,
// not schema, so readers must tolerate missing and legacy keys.
type JSONMap map[string]any

// Value serializes the map to JSON.
func (j *JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan decodes JSONB into the map.
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded JSONMap
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*j = decoded
	return nil
}

// SubMap returns the nested object at key, or nil when absent or not an object.
func (j JSONMap) SubMap(key string) JSONMap {
	if j == nil {
		return nil
	}
	switch v := j[key].(type) {
	case map[string]any:
		return JSONMap(v)
	case JSONMap:
		return v
	default:
		return nil
	}
}

// Clone returns a shallow-per-level deep copy so merges never alias the source.
func (j JSONMap) Clone() JSONMap {
	if j == nil {
		return nil
	}
	out := make(JSONMap, len(j))
	for k, v := range j {
		if nested, ok := v.(map[string]any); ok {
			out[k] = map[string]any(JSONMap(nested).Clone())
			continue
		}
		out[k] = v
	}
	return out
}

func asJSON(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("jsonmap: unsupported scan type %T", value)
	}
}
