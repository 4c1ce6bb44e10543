package parser

import (
	"strconv"
	"unicode"

	"smile/pkg/value"
)

// keywords maps reserved words to their TokenType. Matching is
// case-sensitive; any other word is an IDENTIFIER.
var keywords = map[string]TokenType{
	"LET":    LET,
	"PRINT":  PRINT,
	"END":    END,
	"INNUM":  INNUM,
	"INSTR":  INSTR,
	"ADD":    ADD,
	"SUB":    SUB,
	"MULT":   MULT,
	"DIV":    DIV,
	"GOTO":   GOTO,
	"GOSUB":  GOSUB,
	"RETURN": RETURN,
	"IF":     IF,
}

// Lexer scans a single source line. Tokens are produced on demand by Next;
// after the first error the lexer stays at that error.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // 1-based line number reported in positions
	err  error
}

// NewLexer prepares a scan of one line of text.
func NewLexer(src string, line int) *Lexer {
	return &Lexer{src: []rune(src), line: line}
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// at returns the position of rune index i.
func (l *Lexer) at(i int) Position {
	return Position{Line: l.line, Column: i + 1}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// scanWord collects an identifier or keyword. The first letter must still be
// at l.peek().
func (l *Lexer) scanWord() Token {
	start := l.pos
	for l.pos < len(l.src) && (unicode.IsLetter(l.peek()) || unicode.IsDigit(l.peek())) {
		l.advance()
	}
	word := string(l.src[start:l.pos])
	tt := IDENTIFIER
	if kw, ok := keywords[word]; ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: word, Pos: l.at(start)}
}

// scanString collects a string literal. The Lexeme keeps the quotes, the
// Value holds the text between them.
func (l *Lexer) scanString() (Token, error) {
	start := l.pos
	l.advance() // consume opening "
	for l.pos < len(l.src) && l.peek() != '"' {
		l.advance()
	}
	if l.pos >= len(l.src) {
		return Token{}, &LexError{Msg: "unterminated string literal", Pos: l.at(start)}
	}
	text := string(l.src[start+1 : l.pos])
	l.advance() // consume closing "
	return Token{
		Type:   STRING,
		Lexeme: string(l.src[start:l.pos]),
		Pos:    l.at(start),
		Value:  value.Str(text),
	}, nil
}

// scanNumber collects an optionally negative integer or float literal.
// A '.' only belongs to the number when a digit follows it.
func (l *Lexer) scanNumber() (Token, error) {
	start := l.pos
	if l.peek() == '-' {
		l.advance()
		if !isDigit(l.peek()) {
			return Token{}, &LexError{Msg: "negative sign must be followed by digits", Pos: l.at(start)}
		}
	}
	for isDigit(l.peek()) {
		l.advance()
	}

	if l.peek() == '.' && isDigit(l.peek2()) {
		l.advance() // consume '.'
		for isDigit(l.peek()) {
			l.advance()
		}
		lexeme := string(l.src[start:l.pos])
		f, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			return Token{}, &LexError{Msg: "float literal out of range: " + lexeme, Pos: l.at(start)}
		}
		return Token{Type: FLOAT, Lexeme: lexeme, Pos: l.at(start), Value: value.Float(f)}, nil
	}

	lexeme := string(l.src[start:l.pos])
	n, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		return Token{}, &LexError{Msg: "integer literal out of range: " + lexeme, Pos: l.at(start)}
	}
	return Token{Type: INTEGER, Lexeme: lexeme, Pos: l.at(start), Value: value.Int(n)}, nil
}

// Next returns the next token on the line, or an EOF token once the line
// is exhausted.
func (l *Lexer) Next() (Token, error) {
	if l.err != nil {
		return Token{}, l.err
	}
	tok, err := l.nextToken()
	if err != nil {
		l.err = err
	}
	return tok, err
}

func (l *Lexer) nextToken() (Token, error) {
	l.skipWhitespace()
	if l.pos >= len(l.src) {
		return Token{Type: EOF, Pos: l.at(l.pos)}, nil
	}

	ch := l.peek()
	start := l.pos

	switch {
	case unicode.IsLetter(ch):
		return l.scanWord(), nil
	case ch == '"':
		return l.scanString()
	case ch == '-' || isDigit(ch):
		return l.scanNumber()
	}

	l.advance() // consume the character before the switch
	switch ch {
	case ':':
		return Token{Type: COLON, Lexeme: ":", Pos: l.at(start)}, nil
	case '.':
		return Token{Type: PERIOD, Lexeme: ".", Pos: l.at(start)}, nil
	case '=':
		return Token{Type: EQUALS, Lexeme: "=", Pos: l.at(start)}, nil
	case '<':
		if l.peek() == '>' {
			l.advance()
			return Token{Type: NOT_EQUALS, Lexeme: "<>", Pos: l.at(start)}, nil
		}
		if l.peek() == '=' {
			l.advance()
			return Token{Type: LESS_EQUAL, Lexeme: "<=", Pos: l.at(start)}, nil
		}
		return Token{Type: LESS, Lexeme: "<", Pos: l.at(start)}, nil
	case '>':
		if l.peek() == '=' {
			l.advance()
			return Token{Type: GREATER_EQUAL, Lexeme: ">=", Pos: l.at(start)}, nil
		}
		return Token{Type: GREATER, Lexeme: ">", Pos: l.at(start)}, nil
	}
	return Token{}, &LexError{Msg: "invalid character " + strconv.QuoteRune(ch), Pos: l.at(start)}
}

// Tokenize scans one line and returns its tokens, without the trailing EOF.
// It stops at the first lexical error.
func Tokenize(src string, line int) ([]Token, error) {
	l := NewLexer(src, line)
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return tokens, err
		}
		if tok.Type == EOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}
