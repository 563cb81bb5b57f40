package feature

import (
	"math"
	"strconv"
)

// Value is a single attribute value of an entity. Categories are texts from a small, fixed set of possible values
// (e.g. a station line or a land use class) and therefore grouped rather than searched.
type Value struct {
	kind   ValueKind
	number float64
	text   string
}

func Number(n float64) Value {
	return Value{kind: KindNumber, number: n}
}

func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

func Category(s string) Value {
	return Value{kind: KindCategory, text: s}
}

func (v Value) Kind() ValueKind {
	return v.kind
}

func (v Value) IsNumber() bool {
	return v.kind == KindNumber
}

// Number returns the numeric value and false in case this is a text or category value.
func (v Value) Number() (float64, bool) {
	return v.number, v.kind == KindNumber
}

// String returns the text of text and category values and the shortest exact representation of numbers.
func (v Value) String() string {
	if v.kind == KindNumber {
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	}
	return v.text
}

// ParseValue turns raw attribute texts (e.g. OSM tags or GeoJSON properties) into values. Everything that parses as a
// finite number becomes a number, everything else a text.
func ParseValue(raw string) Value {
	n, err := strconv.ParseFloat(raw, 64)
	if err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
		return Number(n)
	}
	return Text(raw)
}
