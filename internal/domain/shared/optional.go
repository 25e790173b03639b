package shared

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes a field that was never supplied from one that was
// explicitly set to null. Set reports presence; Null reports an explicit null.
//
// The zero value is "absent". When decoded from JSON, a missing key leaves the
// value absent, `null` yields Set && Null, and any other value yields Set with Value.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns a present, non-null Optional
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null returns a present Optional holding an explicit null
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// Ptr returns nil for absent or null values and a pointer to Value otherwise
func (o Optional[T]) Ptr() *T {
	if !o.Set || o.Null {
		return nil
	}
	v := o.Value
	return &v
}

// Apply resolves the Optional against the current value of a nullable field
func (o Optional[T]) Apply(current *T) *T {
	if !o.Set {
		return current
	}
	return o.Ptr()
}

// UnmarshalJSON implements json.Unmarshaler
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON implements json.Marshaler
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
