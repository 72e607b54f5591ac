// Package patch holds helpers for partial updates.
//
// Command values use plain pointers for optional fields: nil means "leave the
// stored value alone", whether the key was missing from the request or sent
// as JSON null. The few fields that callers must be able to clear explicitly
// use Nullable, which records whether the key was present at all.
package patch

import (
	"bytes"
	"encoding/json"
)

// Nullable is a tri-state field: absent, explicitly null, or set to a value.
type Nullable[T any] struct {
	Present bool
	Null    bool
	Value   T
}

// Some returns a Nullable holding v.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Present: true, Value: v}
}

// Null returns a Nullable that clears the field.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Present: true, Null: true}
}

// UnmarshalJSON is only invoked for keys present in the payload, so reaching
// it marks the field as present.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Null = true
		var zero T
		n.Value = zero
		return nil
	}
	n.Null = false
	return json.Unmarshal(data, &n.Value)
}

// MarshalJSON encodes absent and null fields as null.
func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Present || n.Null {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Apply writes the change described by n to dst. A present null stores nil.
func (n Nullable[T]) Apply(dst **T) {
	if !n.Present {
		return
	}
	if n.Null {
		*dst = nil
		return
	}
	v := n.Value
	*dst = &v
}

// Assign stores *src into *dst when src is non-nil.
func Assign[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// AssignPtr stores src into *dst when src is non-nil, for nullable columns
// held as pointers.
func AssignPtr[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}
