package common

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// naturalString is a string together with its parsed numerical prefix, so that e.g. "9 m" sorts before "10 m".
type naturalString struct {
	value                string
	isNumber             bool    // True when item is a number without string text
	containsNumberPrefix bool    // Is true is the item is a number or has a number prefix (like in "12 ft")
	number               float64 // The numerical value of the prefix or number. Only contains a useful value when containsNumberPrefix is true.
}

func (this naturalString) compare(other naturalString) int {
	if this.containsNumberPrefix && other.containsNumberPrefix {
		if this.number != other.number {
			if this.number < other.number {
				return -1
			}
			return 1
		}

		// Plain numbers come before numbers with text suffix
		if this.isNumber != other.isNumber {
			if this.isNumber {
				return -1
			}
			return 1
		}
	} else if this.containsNumberPrefix != other.containsNumberPrefix {
		// Values with numbers come before pure text values
		if this.containsNumberPrefix {
			return -1
		}
		return 1
	}

	return strings.Compare(this.value, other.value)
}

func toNaturalString(s string) naturalString {
	naturalStringObj := naturalString{
		value: s,
	}

	numberPrefix := extractNumberPrefix(s)
	naturalStringObj.containsNumberPrefix = numberPrefix != ""
	naturalStringObj.isNumber = len(numberPrefix) == len(s)

	if naturalStringObj.containsNumberPrefix {
		naturalStringObj.number, _ = strconv.ParseFloat(numberPrefix, 64)
	}
	return naturalStringObj
}

// SortNatural returns a new sorted slice of the trimmed given values. Values with a numerical prefix are sorted by
// their number and come before pure text values. The input slice is not modified.
func SortNatural(values []string) []string {
	naturalStrings := make([]naturalString, len(values))
	for i, s := range values {
		naturalStrings[i] = toNaturalString(strings.TrimSpace(s))
	}

	sort.SliceStable(naturalStrings, func(i, j int) bool {
		return naturalStrings[i].compare(naturalStrings[j]) < 0
	})

	sortedStrings := make([]string, len(naturalStrings))
	for i, s := range naturalStrings {
		sortedStrings[i] = s.value
	}

	return sortedStrings
}

// CompareNatural returns -1, 0 or 1 depending on whether s1 appears before, at the same position or after s2 in a
// naturally sorted list.
func CompareNatural(s1, s2 string) int {
	return toNaturalString(s1).compare(toNaturalString(s2))
}

// extractNumberPrefix returns the leading number of the string (e.g. "-1.5" for "-1.5 m") or "" if there is none.
func extractNumberPrefix(s string) string {
	var prefix []rune

	for i, r := range []rune(s) {
		if (r == '-' && i == 0) || r == '.' || unicode.IsDigit(r) {
			prefix = append(prefix, r)
		} else {
			break
		}
	}

	prefixString := string(prefix)
	if isNumber(prefixString) {
		return prefixString
	}

	return ""
}

func isNumber(s string) bool {
	containsDecimalPoint := false
	containsDigit := false

	if len(s) == 0 {
		return false
	}

	for i, c := range s {
		if c == '-' && i != 0 {
			// A dash is only allowed at the beginning
			return false
		} else if c == '.' {
			if containsDecimalPoint {
				// Decimal point already found -> invalid since two decimal points do not make sense
				return false
			}
			containsDecimalPoint = true
		} else if unicode.IsDigit(c) {
			containsDigit = true
		} else if c != '-' {
			return false
		}
	}

	return containsDigit
}
