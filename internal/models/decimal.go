package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Decimal is a numeric value that the API may send as a JSON string ("5.555800"), a number, or null.
//
// Decoding never fails: values that do not parse to a finite number leave Valid false.
type Decimal struct {
	Value float64
	Valid bool
	Raw   string
}

// NewDecimal returns a valid [Decimal] for v.
func NewDecimal(v float64) Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Decimal{}
	}
	return Decimal{Value: v, Valid: true, Raw: strconv.FormatFloat(v, 'f', -1, 64)}
}

// ParseDecimal parses s leniently.
func ParseDecimal(s string) Decimal {
	s = strings.TrimSpace(s)
	d := Decimal{Raw: s}
	if s == "" {
		return d
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return d
	}
	d.Value = v
	d.Valid = true
	return d
}

func (d *Decimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = Decimal{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*d = Decimal{}
			return nil
		}
		*d = ParseDecimal(s)
		return nil
	}

	*d = ParseDecimal(string(data))
	return nil
}

// MarshalJSON writes the decimal back as a string, matching the API's representation.
func (d Decimal) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	if d.Raw != "" {
		return json.Marshal(d.Raw)
	}
	return json.Marshal(strconv.FormatFloat(d.Value, 'f', -1, 64))
}

// Positive reports whether the value is valid and greater than zero.
func (d Decimal) Positive() bool {
	return d.Valid && d.Value > 0
}

// String formats the value the way the API does, or "" when invalid.
func (d Decimal) String() string {
	if !d.Valid {
		return ""
	}
	if d.Raw != "" {
		return d.Raw
	}
	return strconv.FormatFloat(d.Value, 'f', -1, 64)
}

// Short formats the value without trailing zeros ("4.50" -> "4.5").
func (d Decimal) Short() string {
	if !d.Valid {
		return ""
	}
	return strconv.FormatFloat(d.Value, 'f', -1, 64)
}
