package loader

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"smile/pkg/parser"
	"smile/pkg/runtime"
)

// Terminator is the line that ends the program text.
const Terminator = "."

// Source is the program text collected from an input channel.
type Source struct {
	Lines  []string
	Labels runtime.LabelRegistry
}

// Collect reads trimmed lines from r until a line equal to Terminator or
// the end of input. Lines declaring a label ("NAME: ...") register NAME
// against the 1-based line number. The label stays on the line so the
// parser reports positions against the text as written.
//
// r is left positioned after the terminator; the same reader serves as the
// program's input channel.
func Collect(r runtime.LineReader) (*Source, error) {
	src := &Source{Labels: runtime.LabelRegistry{}}
	for {
		raw, err := r.ReadLine()
		if errors.Is(err, io.EOF) {
			return src, nil
		}
		if err != nil {
			return nil, fmt.Errorf("loader: reading line %d: %w", len(src.Lines)+1, err)
		}

		line := strings.TrimSpace(raw)
		if line == Terminator {
			return src, nil
		}
		lineNo := len(src.Lines) + 1
		if lbl, ok := labelOf(line, lineNo); ok {
			if prev, exists := src.Labels[lbl]; exists {
				return nil, fmt.Errorf("loader: duplicate label %q on line %d (first declared on line %d)", lbl, lineNo, prev)
			}
			src.Labels[lbl] = lineNo
		}
		src.Lines = append(src.Lines, line)
	}
}

// labelOf reports the label a line declares. Lines that do not lex are left
// for the parser to diagnose.
func labelOf(line string, lineNo int) (string, bool) {
	if !strings.Contains(line, ":") {
		return "", false
	}
	tokens, err := parser.Tokenize(line, lineNo)
	if err != nil || len(tokens) < 2 {
		return "", false
	}
	if tokens[0].Type != parser.IDENTIFIER || tokens[1].Type != parser.COLON {
		return "", false
	}
	return tokens[0].Lexeme, true
}

// Load collects and parses one program from r.
func Load(r runtime.LineReader) (parser.Program, runtime.LabelRegistry, error) {
	src, err := Collect(r)
	if err != nil {
		return nil, nil, err
	}
	prog, err := parser.Parse(src.Lines)
	if err != nil {
		return nil, nil, err
	}
	return prog, src.Labels, nil
}
