package parser

import (
	"errors"
	"fmt"
	"geoq/common"
)

// ParsingError describes where and why a query string could not be parsed. The position is the index of the rune in
// the query string at which the problem occurred.
type ParsingError struct {
	Message       string    `json:"message"`
	Position      int       `json:"position"`
	CurrentLexeme string    `json:"current-lexeme,omitempty"`
	CurrentKind   TokenKind `json:"current-kind,omitempty"`
	Expected      string    `json:"expected"`
	stack         common.Stack
}

// ParsingErrorExpectedButFound models a typical "Expected foo but found bar" kind of error.
func ParsingErrorExpectedButFound(expected string, position int, currentLexeme string, currentKind TokenKind) *ParsingError {
	return &ParsingError{
		Message:       fmt.Sprintf("Parsing error: Expected %s at position %d but found '%s' of kind %s.", expected, position, currentLexeme, currentKind.String()),
		Position:      position,
		CurrentLexeme: currentLexeme,
		CurrentKind:   currentKind,
		Expected:      expected,
		stack:         common.CaptureStack(),
	}
}

// ParsingErrorExpectedTokenKind models a "Expected '(' but found ..." kind of error for a specific wanted token kind.
func ParsingErrorExpectedTokenKind(position int, currentLexeme string, currentKind TokenKind, expectedKind TokenKind) *ParsingError {
	expected := fmt.Sprintf("'%s' (%s)", expectedKind.Lexeme(), expectedKind.String())
	return &ParsingError{
		Message:       fmt.Sprintf("Parsing error: Expected %s at position %d but found '%s' of kind %s.", expected, position, currentLexeme, currentKind.String()),
		Position:      position,
		CurrentLexeme: currentLexeme,
		CurrentKind:   currentKind,
		Expected:      expected,
		stack:         common.CaptureStack(),
	}
}

// ParsingTokenStreamEndAtPosition is used when the query ended but something else was expected.
func ParsingTokenStreamEndAtPosition(position int, expected string) *ParsingError {
	return &ParsingError{
		Message:  fmt.Sprintf("Parsing error: Token stream ended at position %d, expected %s.", position, expected),
		Position: position,
		Expected: expected,
		stack:    common.CaptureStack(),
	}
}

func (e *ParsingError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		fmt.Fprintf(s, "%s\n%s", e.Error(), common.PrintableStackTrace(e.stack))
	case 's':
		fmt.Fprintf(s, "%s", e.Error())
	}
}

func (e *ParsingError) Error() string {
	return e.Message
}

func IsParsingError(err error) bool {
	var parsingError *ParsingError
	return errors.As(err, &parsingError)
}
