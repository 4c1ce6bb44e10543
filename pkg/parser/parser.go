package parser

import "fmt"

// Instruction is one validated source line. Tokens holds the statement
// only, keyword first; a declared label is kept apart in Label.
type Instruction struct {
	Line   int
	Label  string
	Tokens []Token
}

// Kind is the statement keyword of the instruction.
func (in Instruction) Kind() TokenType {
	if len(in.Tokens) == 0 {
		return EOF
	}
	return in.Tokens[0].Type
}

// Program is the ordered, indexable list of instructions of one run.
type Program []Instruction

// validator checks one tokenized line against the statement grammar:
//
//	line      = [IDENTIFIER ":"] statement
//	statement = ("LET" | "ADD" | "SUB" | "MULT" | "DIV") IDENTIFIER value
//	          | "PRINT" [value]
//	          | ("INNUM" | "INSTR") IDENTIFIER
//	          | ("GOTO" | "GOSUB") target ["IF" value comparator value]
//	          | "END" | "RETURN"
//	value     = INTEGER | FLOAT | STRING | IDENTIFIER
//	target    = INTEGER | STRING | IDENTIFIER
type validator struct {
	tokens []Token
	pos    int
	eol    Position
}

func (v *validator) peek() Token {
	if v.pos >= len(v.tokens) {
		return Token{Type: EOF, Pos: v.eol}
	}
	return v.tokens[v.pos]
}

func (v *validator) advance() Token {
	tok := v.peek()
	if v.pos < len(v.tokens) {
		v.pos++
	}
	return tok
}

func (v *validator) errorf(tok Token, format string, args ...any) error {
	return &ParseError{Msg: fmt.Sprintf(format, args...), Pos: tok.Pos}
}

func describe(tok Token) string {
	if tok.Type == EOF {
		return "end of line"
	}
	return fmt.Sprintf("%s (%q)", tok.Type, tok.Lexeme)
}

// expect consumes the current token if its type is one of types.
func (v *validator) expect(what string, types ...TokenType) (Token, error) {
	tok := v.advance()
	for _, tt := range types {
		if tok.Type == tt {
			return tok, nil
		}
	}
	return tok, v.errorf(tok, "%s expected, got %s", what, describe(tok))
}

func (v *validator) expectValue() error {
	_, err := v.expect("value", INTEGER, FLOAT, STRING, IDENTIFIER)
	return err
}

func (v *validator) expectEnd() error {
	if tok := v.peek(); tok.Type != EOF {
		return v.errorf(tok, "unexpected %s", describe(tok))
	}
	return nil
}

// statement validates everything after the optional label.
func (v *validator) statement() error {
	kw := v.advance()
	if kw.Type == EOF {
		return v.errorf(kw, "statement body required")
	}
	if !kw.Type.IsStatement() {
		return v.errorf(kw, "invalid statement %s", describe(kw))
	}

	switch kw.Type {
	case LET, ADD, SUB, MULT, DIV:
		if _, err := v.expect("variable name", IDENTIFIER); err != nil {
			return err
		}
		if err := v.expectValue(); err != nil {
			return err
		}
	case PRINT:
		if v.peek().Type != EOF {
			if err := v.expectValue(); err != nil {
				return err
			}
		}
	case INNUM, INSTR:
		if _, err := v.expect("variable name", IDENTIFIER); err != nil {
			return err
		}
	case GOTO, GOSUB:
		if _, err := v.expect("jump target", INTEGER, STRING, IDENTIFIER); err != nil {
			return err
		}
		if v.peek().Type == IF {
			v.advance()
			if err := v.expectValue(); err != nil {
				return err
			}
			if _, err := v.expect("comparison operator",
				EQUALS, NOT_EQUALS, LESS, LESS_EQUAL, GREATER, GREATER_EQUAL); err != nil {
				return err
			}
			if err := v.expectValue(); err != nil {
				return err
			}
		}
	case END, RETURN:
	}
	return v.expectEnd()
}

// isTerminator reports whether a line consists of a lone '.'.
func isTerminator(tokens []Token) bool {
	return len(tokens) == 1 && tokens[0].Type == PERIOD
}

// ParseLine tokenizes and validates a single line.
func ParseLine(src string, line int) (Instruction, error) {
	tokens, err := Tokenize(src, line)
	if err != nil {
		return Instruction{}, err
	}
	return validate(tokens, src, line)
}

func validate(tokens []Token, src string, line int) (Instruction, error) {
	eol := Position{Line: line, Column: len([]rune(src)) + 1}
	if len(tokens) == 0 {
		return Instruction{}, &ParseError{Msg: "empty program lines are not allowed", Pos: eol}
	}

	v := &validator{tokens: tokens, eol: eol}
	in := Instruction{Line: line}
	if v.peek().Type == IDENTIFIER {
		label := v.advance()
		if v.peek().Type != COLON {
			return Instruction{}, v.errorf(label, "label must be followed by colon")
		}
		v.advance()
		in.Label = label.Lexeme
	}

	start := v.pos
	if err := v.statement(); err != nil {
		return Instruction{}, err
	}
	in.Tokens = tokens[start:]
	return in, nil
}

// Parse validates source lines in order, numbering them from 1. It stops
// without error at a line holding only '.', which is not part of the
// program. The first lexical or parse error aborts the whole parse.
func Parse(lines []string) (Program, error) {
	var prog Program
	for i, src := range lines {
		line := i + 1
		tokens, err := Tokenize(src, line)
		if err != nil {
			return nil, err
		}
		if isTerminator(tokens) {
			break
		}
		in, err := validate(tokens, src, line)
		if err != nil {
			return nil, err
		}
		prog = append(prog, in)
	}
	return prog, nil
}
