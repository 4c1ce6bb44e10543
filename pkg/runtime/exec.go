package runtime

import (
	"errors"
	"fmt"
	"io"

	"smile/pkg/parser"
	"smile/pkg/value"
)

// Assign stores the instruction's literal into its first variable name.
// The tokens are scanned once, left to right; a later literal replaces an
// earlier one. Without both a name and a literal nothing happens.
func Assign(s *ProgramState, in parser.Instruction) {
	var (
		target   string
		val      value.Value
		hasValue bool
	)
	for _, tok := range in.Tokens {
		switch {
		case tok.Type == parser.IDENTIFIER && target == "":
			target = tok.Lexeme
		case tok.Type.IsLiteral():
			val, hasValue = tok.Value, true
		}
	}
	if target == "" || !hasValue {
		return
	}
	s.Store(target, val)
}

// Output writes one line: a variable's value (0 when undefined), a literal's
// text, or an empty line for a bare PRINT.
func Output(s *ProgramState, in parser.Instruction, w io.Writer) error {
	text := ""
	if len(in.Tokens) > 1 {
		text = display(s, in.Tokens[1])
	}
	if _, err := fmt.Fprintln(w, text); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	return nil
}

func display(s *ProgramState, tok parser.Token) string {
	switch {
	case tok.Type == parser.IDENTIFIER:
		if v, ok := s.Lookup(tok.Lexeme); ok {
			return v.String()
		}
		return "0"
	case tok.Type.IsLiteral():
		return tok.Value.String()
	}
	return ""
}

// inputTarget returns the variable an INNUM/INSTR reads into.
func inputTarget(in parser.Instruction) (string, error) {
	if len(in.Tokens) < 2 || in.Tokens[1].Type != parser.IDENTIFIER {
		return "", faultf(ErrInvalidFormat, "%s requires a variable name", in.Kind())
	}
	return in.Tokens[1].Lexeme, nil
}

func readInput(r LineReader, name string) (string, error) {
	line, err := r.ReadLine()
	if errors.Is(err, io.EOF) {
		return "", faultf(ErrInvalidInput, "no input left for variable %s", name)
	}
	if err != nil {
		return "", &Fault{Kind: ErrInvalidInput, Msg: fmt.Sprintf("reading input for variable %s: %v", name, err), Err: err}
	}
	return line, nil
}

// NumericInput reads one line and stores it as a Float when it contains a
// '.', otherwise as an Integer.
func NumericInput(s *ProgramState, in parser.Instruction, r LineReader) error {
	name, err := inputTarget(in)
	if err != nil {
		return err
	}
	line, err := readInput(r, name)
	if err != nil {
		return err
	}
	v, err := value.ParseNumber(line)
	if err != nil {
		return &Fault{Kind: ErrInvalidInput, Msg: fmt.Sprintf("invalid numeric input for variable %s", name), Err: err}
	}
	s.Store(name, v)
	return nil
}

// TextInput stores the next input line unchanged.
func TextInput(s *ProgramState, in parser.Instruction, r LineReader) error {
	name, err := inputTarget(in)
	if err != nil {
		return err
	}
	line, err := readInput(r, name)
	if err != nil {
		return err
	}
	s.Store(name, value.Str(line))
	return nil
}

var arithmetic = map[parser.TokenType]func(a, b value.Value) (value.Value, error){
	parser.ADD:  value.Add,
	parser.SUB:  value.Sub,
	parser.MULT: value.Mul,
	parser.DIV:  value.Div,
}

// Arithmetic applies ADD, SUB, MULT or DIV to an existing variable.
func Arithmetic(s *ProgramState, in parser.Instruction) error {
	op, ok := arithmetic[in.Kind()]
	if !ok || len(in.Tokens) < 3 {
		return faultf(ErrInvalidFormat, "invalid operation format")
	}
	target := in.Tokens[1]
	if target.Type != parser.IDENTIFIER {
		return faultf(ErrInvalidFormat, "%s target must be a variable, got %q", in.Kind(), target.Lexeme)
	}

	var operand value.Value
	switch src := in.Tokens[2]; {
	case src.Type.IsLiteral():
		operand = src.Value
	case src.Type == parser.IDENTIFIER:
		v, ok := s.Lookup(src.Lexeme)
		if !ok {
			return faultf(ErrUndefinedVariable, "variable %s not defined", src.Lexeme)
		}
		operand = v
	default:
		return faultf(ErrInvalidFormat, "invalid %s operand %q", in.Kind(), src.Lexeme)
	}

	current, ok := s.Lookup(target.Lexeme)
	if !ok {
		return faultf(ErrUndefinedVariable, "variable %s not defined", target.Lexeme)
	}
	result, err := op(current, operand)
	if err != nil {
		return &Fault{Kind: ErrInvalidOperation, Msg: err.Error(), Err: err}
	}
	s.Store(target.Lexeme, result)
	return nil
}
