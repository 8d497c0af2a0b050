package bencode

import "fmt"

func get_as[T any](d Dict, key string, as func(Value) (T, bool), want Kind) (T, error) {
	var nilT T
	val, exists := d[key]
	if !exists || val.IsNone() {
		return nilT, fmt.Errorf("key %q: %w", key, ErrFieldMissing)
	}
	res, ok := as(val)
	if !ok {
		return nilT, fmt.Errorf("key %q is a %v, not a %v: %w", key, val.kind, want, ErrWrongType)
	}
	return res, nil
}

func (d Dict) Has(key string) bool {
	val, exists := d[key]
	return exists && !val.IsNone()
}

func (d Dict) Bytes(key string) ([]byte, error) {
	return get_as(d, key, Value.AsBytes, KindBytes)
}

// Text returns a byte string field as a Go string, with no validation of its encoding.
func (d Dict) Text(key string) (string, error) {
	return get_as(d, key, Value.AsString, KindBytes)
}

func (d Dict) Int(key string) (int64, error) {
	return get_as(d, key, Value.AsInt, KindInteger)
}

func (d Dict) List(key string) ([]Value, error) {
	return get_as(d, key, Value.AsList, KindList)
}

func (d Dict) Dict(key string) (Dict, error) {
	return get_as(d, key, Value.AsDict, KindDict)
}

// Strings converts a list of byte strings, e.g. a file path, to Go strings.
func Strings(values []Value) ([]string, error) {
	results := make([]string, 0, len(values))
	for i, v := range values {
		s, ok := v.AsString()
		if !ok {
			return nil, fmt.Errorf("list entry %d is a %v, not a byte string: %w", i, v.kind, ErrWrongType)
		}
		results = append(results, s)
	}
	return results, nil
}
