package extract

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Object = map[string]interface{}

func Decode(data []byte) (Object, error) {
	var root Object
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	if root == nil {
		return nil, fmt.Errorf("payload is not a JSON object")
	}
	return root, nil
}

// Get walks nested objects. ok is false when any step is missing or is not an object.
func Get(obj Object, path ...string) (interface{}, bool) {
	var cur interface{} = obj
	for _, key := range path {
		m, ok := cur.(Object)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func GetObject(obj Object, path ...string) (Object, bool) {
	v, ok := Get(obj, path...)
	if !ok {
		return nil, false
	}
	m, ok := v.(Object)
	return m, ok
}

func GetArray(obj Object, path ...string) ([]interface{}, bool) {
	v, ok := Get(obj, path...)
	if !ok {
		return nil, false
	}
	a, ok := v.([]interface{})
	return a, ok
}

func GetString(obj Object, path ...string) (string, bool) {
	v, ok := Get(obj, path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Value returns the value at path or nil.
func Value(obj Object, path ...string) interface{} {
	v, _ := Get(obj, path...)
	return v
}

func objects(items []interface{}) []Object {
	out := make([]Object, 0, len(items))
	for _, it := range items {
		if m, ok := it.(Object); ok {
			out = append(out, m)
		}
	}
	return out
}
