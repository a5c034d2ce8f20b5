// Package optional models the presence of JSON payload fields. Partial
// updates change only the fields the client actually sent, so the decoder
// has to distinguish an absent key from an explicit null and from a value.
package optional

import (
	"bytes"
	"encoding/json"
)

// Field wraps a single JSON payload field. Set reports whether the key
// appeared at all, Null whether it carried an explicit null, and Err holds
// the decode error when the key was present with the wrong type. Decode
// errors are kept instead of returned so sibling fields still decode and
// the validator can report every problem in one pass.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
	Err   error
}

var nullLiteral = []byte("null")

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(data, nullLiteral) {
		f.Null = true
		return nil
	}
	f.Err = json.Unmarshal(data, &f.Value)
	return nil
}

// Present reports whether the field carries a usable value.
func (f Field[T]) Present() bool {
	return f.Set && !f.Null && f.Err == nil
}
