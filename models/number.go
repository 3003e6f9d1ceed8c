package models

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrNotANumber is returned when a Number is decoded from anything other than
// a finite JSON number or a numeric string.
var ErrNotANumber = errors.New("value is not a finite number")

// Number is a float that also accepts numeric strings on decode. Devices
// running older collectors send "12.5" instead of 12.5.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	var f float64
	switch value := v.(type) {
	case float64:
		f = value
	case string:
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return ErrNotANumber
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return ErrNotANumber
		}
		f = parsed
	default:
		return ErrNotANumber
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ErrNotANumber
	}

	*n = Number(f)
	return nil
}

// Float64Ptr returns nil for a nil receiver.
func (n *Number) Float64Ptr() *float64 {
	if n == nil {
		return nil
	}
	f := float64(*n)
	return &f
}

// NumberFromFloat64Ptr is the inverse of Float64Ptr.
func NumberFromFloat64Ptr(f *float64) *Number {
	if f == nil {
		return nil
	}
	n := Number(*f)
	return &n
}
