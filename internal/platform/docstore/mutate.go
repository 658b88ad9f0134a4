package docstore

import (
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func encode(data map[string]any) ([]byte, error) {
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return raw, nil
}

func decode(raw []byte) (map[string]any, error) {
	data := map[string]any{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return data, nil
}

// normalize passes data through the codec so that values compare the same
// way whether they came from a caller or from storage.
func normalize(data map[string]any) (map[string]any, error) {
	raw, err := encode(data)
	if err != nil {
		return nil, err
	}
	return decode(raw)
}

func normalizeValues(values []any) ([]any, error) {
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encode values: %w", err)
	}
	var out []any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode values: %w", err)
	}
	return out, nil
}

func valuesEqual(a, b any) bool {
	ra, errA := json.Marshal(a)
	rb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ra, rb)
}

func matches(data map[string]any, field string, value any) bool {
	v, ok := data[field]
	if !ok {
		return false
	}
	return valuesEqual(v, value)
}

func mergeData(existing, update map[string]any) map[string]any {
	out := make(map[string]any, len(existing)+len(update))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range update {
		out[k] = v
	}
	return out
}

// arrayUnion appends the values not already present. A missing or
// non-array field is replaced by a fresh array.
func arrayUnion(data map[string]any, field string, values []any) map[string]any {
	current, _ := data[field].([]any)
	next := make([]any, 0, len(current)+len(values))
	next = append(next, current...)
	for _, v := range values {
		if !containsValue(next, v) {
			next = append(next, v)
		}
	}
	data[field] = next
	return data
}

// arrayRemove drops every element equal to one of values.
func arrayRemove(data map[string]any, field string, values []any) map[string]any {
	current, _ := data[field].([]any)
	next := make([]any, 0, len(current))
	for _, v := range current {
		if !containsValue(values, v) {
			next = append(next, v)
		}
	}
	data[field] = next
	return data
}

func containsValue(list []any, v any) bool {
	for _, item := range list {
		if valuesEqual(item, v) {
			return true
		}
	}
	return false
}

type mutation func(data map[string]any) map[string]any

func unionMutation(field string, values []any) (mutation, error) {
	norm, err := normalizeValues(values)
	if err != nil {
		return nil, err
	}
	return func(data map[string]any) map[string]any {
		return arrayUnion(data, field, norm)
	}, nil
}

func removeMutation(field string, values []any) (mutation, error) {
	norm, err := normalizeValues(values)
	if err != nil {
		return nil, err
	}
	return func(data map[string]any) map[string]any {
		return arrayRemove(data, field, norm)
	}, nil
}
