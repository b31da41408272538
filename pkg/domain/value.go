package domain

import "strconv"

// Value is an optional reading or computed output.
// The zero value is absent.
type Value struct {
	Float float64
	Valid bool
}

// None is the absent value.
var None = Value{}

// Some wraps a present value.
func Some(f float64) Value {
	return Value{Float: f, Valid: true}
}

// Get returns the wrapped float and whether it is present.
func (v Value) Get() (float64, bool) {
	return v.Float, v.Valid
}

func (v Value) String() string {
	if !v.Valid {
		return "none"
	}
	return strconv.FormatFloat(v.Float, 'f', -1, 64)
}
