package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Float is a float64 that encodes NaN and infinities as JSON null.
// Statistics over too few values and underived speeds are NaN.
type Float float64

// NaN returns a Float holding NaN
func NaN() Float {
	return Float(math.NaN())
}

// Valid reports whether f is a finite number
func (f Float) Valid() bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// MarshalJSON implements json.Marshaler
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(float64(f), 'f', -1, 64)), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (f *Float) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = NaN()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}
