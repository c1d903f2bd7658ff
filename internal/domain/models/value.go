package models

import (
	"math"
	"strconv"
)

// Value is a nullable numeric cell.
type Value struct {
	Float float64
	Valid bool
}

// Null is the missing cell.
var Null = Value{}

func Some(f float64) Value {
	return Value{Float: f, Valid: true}
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid || math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v.Float, 'g', -1, 64), nil
}

func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Null
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// Ptr returns nil for a null cell. Useful for database drivers.
func (v Value) Ptr() *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float
	return &f
}
