package models

import (
	"math"
	"strconv"
)

// Reading is a numeric value that may be unavailable, e.g. an indicator
// that has not warmed up yet.
type Reading struct {
	Value float64
	Valid bool
}

// Unavailable is the zero Reading.
var Unavailable = Reading{}

// Some wraps v as an available Reading. NaN and infinities are treated as
// unavailable.
func Some(v float64) Reading {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Unavailable
	}
	return Reading{Value: v, Valid: true}
}

// Get returns the value and whether it is available.
func (r Reading) Get() (float64, bool) {
	return r.Value, r.Valid
}

func (r Reading) String() string {
	if !r.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(r.Value, 'f', 2, 64)
}

// MarshalJSON encodes an unavailable reading as null.
func (r Reading) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, r.Value, 'g', -1, 64), nil
}

// UnmarshalJSON accepts a number or null.
func (r *Reading) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Unavailable
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*r = Some(v)
	return nil
}
