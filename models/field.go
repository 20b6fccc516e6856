package models

import (
	"bytes"
	"encoding/json"
)

// Field holds a scraped value that may be absent. The zero value is absent.
type Field[T any] struct {
	Value T
	OK    bool
}

// Some returns a present Field holding v.
func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, OK: true}
}

// None returns an absent Field.
func None[T any]() Field[T] {
	return Field[T]{}
}

// Get returns the value and whether it is present.
func (f Field[T]) Get() (T, bool) {
	return f.Value, f.OK
}

// Or returns the value if present, otherwise fallback.
func (f Field[T]) Or(fallback T) T {
	if f.OK {
		return f.Value
	}
	return fallback
}

// MarshalJSON encodes an absent field as null.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.OK {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// UnmarshalJSON treats null as absent and anything else as present.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = None[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Some(v)
	return nil
}
