package common

import (
	"geoq/util"
	"testing"
)

func TestSortNatural_onlyNumbers(t *testing.T) {
	// Arrange
	input := []string{"3", "2", "2.5", "1", "-1", "0"}

	// Act
	output := SortNatural(input)

	// Assert
	util.AssertEqual(t, []string{"-1", "0", "1", "2", "2.5", "3"}, output)
	util.AssertEqual(t, []string{"3", "2", "2.5", "1", "-1", "0"}, input)
}

func TestSortNatural_onlyNumbersWithStringSufix(t *testing.T) {
	// Arrange
	input := []string{"1a", "1b", "2c", "1", "2"}

	// Act
	output := SortNatural(input)

	// Assert
	util.AssertEqual(t, []string{"1", "1a", "1b", "2", "2c"}, output)
}

func TestSortNatural_numbersAndStrings(t *testing.T) {
	// Arrange
	input := []string{"1a", "a", "b", "1", "2"}

	// Act
	output := SortNatural(input)

	// Assert
	util.AssertEqual(t, []string{"1", "1a", "2", "a", "b"}, output)
}

func TestSortNatural_onlyStrings(t *testing.T) {
	// Arrange
	input := []string{"a", "foo", "bar", "b"}

	// Act
	output := SortNatural(input)

	// Assert
	util.AssertEqual(t, []string{"a", "b", "bar", "foo"}, output)
}

func TestCompareNatural(t *testing.T) {
	util.AssertEqual(t, -1, CompareNatural("9 m", "10 m"))
	util.AssertEqual(t, 1, CompareNatural("text", "10"))
	util.AssertEqual(t, 0, CompareNatural("1.5", "1.5"))
	util.AssertEqual(t, -1, CompareNatural("-1", "-0.5"))
}
