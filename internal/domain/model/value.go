package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Value is an optional float. A zero Value is missing; metrics that cannot be
// computed for a day are reported as missing rather than zero or NaN.
type Value struct {
	Float float64
	Valid bool
}

// Some wraps f. NaN is never data, so Some(NaN) is missing.
func Some(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{Float: f, Valid: true}
}

// Missing returns an explicit missing value.
func Missing() Value { return Value{} }

// Get returns the float and whether it is present.
func (v Value) Get() (float64, bool) { return v.Float, v.Valid }

// Or returns the float or def when missing.
func (v Value) Or(def float64) float64 {
	if !v.Valid {
		return def
	}
	return v.Float
}

func (v Value) String() string {
	if !v.Valid {
		return "-"
	}
	switch {
	case math.IsInf(v.Float, 1):
		return "+Inf"
	case math.IsInf(v.Float, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(v.Float, 'f', -1, 64)
}

// MarshalJSON renders missing values as null and infinities as "+Inf"/"-Inf".
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	if math.IsInf(v.Float, 0) {
		return json.Marshal(v.String())
	}
	return json.Marshal(v.Float)
}

// UnmarshalJSON accepts null, a number, or an infinity string.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case "+Inf", "Inf":
			*v = Value{Float: math.Inf(1), Valid: true}
		case "-Inf":
			*v = Value{Float: math.Inf(-1), Valid: true}
		default:
			return fmt.Errorf("invalid value %q", s)
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}
