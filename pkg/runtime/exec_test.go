package runtime

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"smile/pkg/parser"
	"smile/pkg/value"
)

func mustParse(t *testing.T, src string) parser.Instruction {
	t.Helper()
	in, err := parser.ParseLine(src, 1)
	if err != nil {
		t.Fatalf("ParseLine(%q) error = %v", src, err)
	}
	return in
}

func tok(tt parser.TokenType, lexeme string, v value.Value) parser.Token {
	return parser.Token{Type: tt, Lexeme: lexeme, Value: v}
}

func TestAssign(t *testing.T) {
	tests := []struct {
		src  string
		want map[string]value.Value
	}{
		{"LET X 10", map[string]value.Value{"X": value.Int(10)}},
		{"LET X 2.5", map[string]value.Value{"X": value.Float(2.5)}},
		{`LET X "Boo"`, map[string]value.Value{"X": value.Str("Boo")}},
		// A variable source carries no literal, so nothing is stored.
		{"LET X Y", map[string]value.Value{}},
	}
	for _, tc := range tests {
		s := NewProgramState(nil)
		Assign(s, mustParse(t, tc.src))
		if got := s.Variables(); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Assign(%q) vars = %v; want %v", tc.src, got, tc.want)
		}
	}
}

func TestAssignScanOrder(t *testing.T) {
	in := parser.Instruction{Tokens: []parser.Token{
		tok(parser.LET, "LET", value.Value{}),
		tok(parser.IDENTIFIER, "A", value.Value{}),
		tok(parser.INTEGER, "1", value.Int(1)),
		tok(parser.IDENTIFIER, "B", value.Value{}),
		tok(parser.STRING, `"two"`, value.Str("two")),
	}}
	s := NewProgramState(nil)
	Assign(s, in)
	want := map[string]value.Value{"A": value.Str("two")}
	if got := s.Variables(); !reflect.DeepEqual(got, want) {
		t.Errorf("vars = %v; want %v", got, want)
	}

	missing := parser.Instruction{Tokens: []parser.Token{tok(parser.LET, "LET", value.Value{})}}
	Assign(s, missing)
	if got := s.Variables(); !reflect.DeepEqual(got, want) {
		t.Errorf("bare LET changed vars to %v", got)
	}
}

func TestOutput(t *testing.T) {
	s := NewProgramState(nil)
	s.Store("X", value.Int(10))
	s.Store("F", value.Float(7))
	s.Store("S", value.Str("Hello"))

	tests := []struct {
		src  string
		want string
	}{
		{"PRINT X", "10\n"},
		{"PRINT F", "7.0\n"},
		{"PRINT S", "Hello\n"},
		{"PRINT UNDEFINED", "0\n"},
		{`PRINT "Boo!"`, "Boo!\n"},
		{"PRINT 3.5", "3.5\n"},
		{"PRINT", "\n"},
	}
	for _, tc := range tests {
		var out bytes.Buffer
		if err := Output(s, mustParse(t, tc.src), &out); err != nil {
			t.Errorf("Output(%q) error = %v", tc.src, err)
			continue
		}
		if out.String() != tc.want {
			t.Errorf("Output(%q) = %q; want %q", tc.src, out.String(), tc.want)
		}
	}
}

func TestNumericInput(t *testing.T) {
	tests := []struct {
		input   string
		want    value.Value
		wantErr error
	}{
		{"42\n", value.Int(42), nil},
		{" 3.25 \n", value.Float(3.25), nil},
		{"-8", value.Int(-8), nil},
		{"abc\n", value.Value{}, ErrInvalidInput},
		{"", value.Value{}, ErrInvalidInput},
	}
	for _, tc := range tests {
		s := NewProgramState(nil)
		err := NumericInput(s, mustParse(t, "INNUM N"), NewLineReader(strings.NewReader(tc.input)))
		if tc.wantErr != nil {
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("NumericInput(%q) error = %v; want %v", tc.input, err, tc.wantErr)
			}
			if _, ok := s.Lookup("N"); ok {
				t.Errorf("NumericInput(%q) stored a value despite failing", tc.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("NumericInput(%q) error = %v", tc.input, err)
			continue
		}
		if got, _ := s.Lookup("N"); got != tc.want {
			t.Errorf("NumericInput(%q) = %#v; want %#v", tc.input, got, tc.want)
		}
	}
}

func TestNumericInputNamesVariable(t *testing.T) {
	s := NewProgramState(nil)
	err := NumericInput(s, mustParse(t, "INNUM COUNT"), NewLineReader(strings.NewReader("ten\n")))
	if err == nil || !strings.Contains(err.Error(), "COUNT") {
		t.Errorf("error = %v; want it to name COUNT", err)
	}
}

func TestTextInput(t *testing.T) {
	s := NewProgramState(nil)
	r := NewLineReader(strings.NewReader("  spaced out  \r\nsecond\n"))
	if err := TextInput(s, mustParse(t, "INSTR A"), r); err != nil {
		t.Fatalf("TextInput error = %v", err)
	}
	if err := TextInput(s, mustParse(t, "INSTR B"), r); err != nil {
		t.Fatalf("TextInput error = %v", err)
	}
	want := map[string]value.Value{
		"A": value.Str("  spaced out  "),
		"B": value.Str("second"),
	}
	if got := s.Variables(); !reflect.DeepEqual(got, want) {
		t.Errorf("vars = %v; want %v", got, want)
	}
	if err := TextInput(s, mustParse(t, "INSTR C"), r); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("TextInput at end of input error = %v; want ErrInvalidInput", err)
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name    string
		setup   map[string]value.Value
		src     string
		want    value.Value
		wantErr []error
	}{
		{"add int", map[string]value.Value{"X": value.Int(10)}, "ADD X 5", value.Int(15), nil},
		{"add float", map[string]value.Value{"X": value.Float(5)}, "ADD X 10.0", value.Float(15), nil},
		{"add string", map[string]value.Value{"X": value.Str("Hello ")}, `ADD X "World!"`, value.Str("Hello World!"), nil},
		{"add variable", map[string]value.Value{"X": value.Int(1), "Y": value.Int(2)}, "ADD X Y", value.Int(3), nil},
		{"sub", map[string]value.Value{"X": value.Int(20)}, "SUB X 10", value.Int(10), nil},
		{"mult repeat", map[string]value.Value{"X": value.Str("Boo")}, "MULT X 3", value.Str("BooBooBoo"), nil},
		{"mult repeat reversed", map[string]value.Value{"X": value.Int(3)}, `MULT X "Boo"`, value.Str("BooBooBoo"), nil},
		{"div floor", map[string]value.Value{"X": value.Int(7)}, "DIV X -2", value.Int(-4), nil},
		{"div true", map[string]value.Value{"X": value.Int(7)}, "DIV X 2.0", value.Float(3.5), nil},

		{"undefined target", nil, "ADD X 1", value.Value{}, []error{ErrUndefinedVariable}},
		{"undefined operand", map[string]value.Value{"X": value.Int(1)}, "ADD X Y", value.Value{}, []error{ErrUndefinedVariable}},
		{"bad addition", map[string]value.Value{"X": value.Int(1)}, `ADD X "a"`, value.Value{}, []error{ErrInvalidOperation, value.ErrInvalidAddition}},
		{"bad subtraction", map[string]value.Value{"X": value.Str("a")}, "SUB X 1", value.Value{}, []error{ErrInvalidOperation, value.ErrInvalidSubtraction}},
		{"negative repeat", map[string]value.Value{"X": value.Str("a")}, "MULT X -1", value.Value{}, []error{ErrInvalidOperation, value.ErrInvalidMultiplication}},
		{"divide by zero", map[string]value.Value{"X": value.Int(1)}, "DIV X 0", value.Value{}, []error{ErrInvalidOperation, value.ErrInvalidDivision}},
	}
	for _, tc := range tests {
		s := NewProgramState(nil)
		for k, v := range tc.setup {
			s.Store(k, v)
		}
		err := Arithmetic(s, mustParse(t, tc.src))
		if tc.wantErr != nil {
			for _, want := range tc.wantErr {
				if !errors.Is(err, want) {
					t.Errorf("%s: error = %v; want %v", tc.name, err, want)
				}
			}
			if before, ok := tc.setup["X"]; ok {
				if after, _ := s.Lookup("X"); after != before {
					t.Errorf("%s: X changed to %#v on failure", tc.name, after)
				}
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: error = %v", tc.name, err)
			continue
		}
		if got, _ := s.Lookup("X"); got != tc.want {
			t.Errorf("%s: X = %#v; want %#v", tc.name, got, tc.want)
		}
	}
}

func TestArithmeticFormat(t *testing.T) {
	s := NewProgramState(nil)
	s.Store("X", value.Int(10))
	short := parser.Instruction{Tokens: []parser.Token{
		tok(parser.ADD, "ADD", value.Value{}),
		tok(parser.IDENTIFIER, "X", value.Value{}),
	}}
	if err := Arithmetic(s, short); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("two-token ADD error = %v; want ErrInvalidFormat", err)
	}
	wrongTarget := parser.Instruction{Tokens: []parser.Token{
		tok(parser.ADD, "ADD", value.Value{}),
		tok(parser.INTEGER, "1", value.Int(1)),
		tok(parser.INTEGER, "5", value.Int(5)),
	}}
	if err := Arithmetic(s, wrongTarget); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("literal target error = %v; want ErrInvalidFormat", err)
	}
}
