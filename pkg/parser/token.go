package parser

import (
	"fmt"

	"smile/pkg/value"
)

// TokenType identifies the kind of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of line

	// Statement keywords
	LET    // "LET"
	PRINT  // "PRINT"
	END    // "END"
	INNUM  // "INNUM"
	INSTR  // "INSTR"
	ADD    // "ADD"
	SUB    // "SUB"
	MULT   // "MULT"
	DIV    // "DIV"
	GOTO   // "GOTO"
	GOSUB  // "GOSUB"
	RETURN // "RETURN"
	IF     // "IF"

	// Comparators
	EQUALS        // =
	NOT_EQUALS    // <>
	LESS          // <
	LESS_EQUAL    // <=
	GREATER       // >
	GREATER_EQUAL // >=

	// Punctuation
	COLON  // :
	PERIOD // .

	// Data literals
	INTEGER // 10, -3
	FLOAT   // 3.14
	STRING  // "..."

	IDENTIFIER // variable or label name
)

var tokenNames = [...]string{
	EOF:           "EOF",
	LET:           "LET",
	PRINT:         "PRINT",
	END:           "END",
	INNUM:         "INNUM",
	INSTR:         "INSTR",
	ADD:           "ADD",
	SUB:           "SUB",
	MULT:          "MULT",
	DIV:           "DIV",
	GOTO:          "GOTO",
	GOSUB:         "GOSUB",
	RETURN:        "RETURN",
	IF:            "IF",
	EQUALS:        "EQUALS",
	NOT_EQUALS:    "NOT_EQUALS",
	LESS:          "LESS",
	LESS_EQUAL:    "LESS_EQUAL",
	GREATER:       "GREATER",
	GREATER_EQUAL: "GREATER_EQUAL",
	COLON:         "COLON",
	PERIOD:        "PERIOD",
	INTEGER:       "INTEGER",
	FLOAT:         "FLOAT",
	STRING:        "STRING",
	IDENTIFIER:    "IDENTIFIER",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// IsStatement reports whether tt is a keyword that starts a statement.
// IF only ever appears inside a GOTO/GOSUB.
func (tt TokenType) IsStatement() bool { return tt >= LET && tt <= RETURN }

func (tt TokenType) IsComparator() bool { return tt >= EQUALS && tt <= GREATER_EQUAL }

// IsLiteral reports whether tt carries a typed value.
func (tt TokenType) IsLiteral() bool { return tt == INTEGER || tt == FLOAT || tt == STRING }

var comparisons = map[TokenType]value.Comparison{
	EQUALS:        value.Equal,
	NOT_EQUALS:    value.NotEqual,
	LESS:          value.Less,
	LESS_EQUAL:    value.LessEqual,
	GREATER:       value.Greater,
	GREATER_EQUAL: value.GreaterEqual,
}

// Comparison maps a comparator token onto the value package's operator.
func (tt TokenType) Comparison() (value.Comparison, bool) {
	c, ok := comparisons[tt]
	return c, ok
}

// Position is a 1-based line/column location in the source.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("Line %d Column %d", p.Line, p.Column)
}

// Token is a single lexical unit produced by the Lexer. Value is set for
// INTEGER, FLOAT and STRING tokens (strings without their quotes).
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Pos    Position
	Value  value.Value
}

func (t Token) String() string {
	return fmt.Sprintf("%-13s %-10q  %s", t.Type, t.Lexeme, t.Pos)
}
