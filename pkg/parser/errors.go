package parser

import "fmt"

// LexError reports an unterminated string, an invalid character or a
// malformed signed number.
type LexError struct {
	Msg string
	Pos Position
}

func (e *LexError) Error() string {
	return fmt.Sprintf("Lexical error at %s: %s", e.Pos, e.Msg)
}

// ParseError reports a line whose tokens do not match its statement's shape.
type ParseError struct {
	Msg string
	Pos Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Parse error at %s: %s", e.Pos, e.Msg)
}
