package model

import (
	"bytes"
	"encoding/json"
)

// OptionalInt tells a missing JSON key (Set false) apart from an explicit
// null (Set true, Value nil).
type OptionalInt struct {
	Value *int
	Set   bool
}

func NewOptionalInt(v int) OptionalInt {
	return OptionalInt{Value: &v, Set: true}
}

// UnmarshalJSON is only called when the key is present, including for null.
func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}
