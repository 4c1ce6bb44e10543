package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"smile/pkg/config"
)

func runProgram(t *testing.T, cfg *config.Config, source string) (string, int) {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	var out bytes.Buffer
	code := run(cfg, strings.NewReader(source), nil, &out, slog.New(slog.DiscardHandler))
	return out.String(), code
}

func TestPrograms(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		want     string
		wantCode int
	}{
		{
			name:   "assign print end",
			source: "LET X 10\nPRINT X\nEND\n.\n",
			want:   "10\n",
		},
		{
			name: "count down with label",
			source: `LET N 3
TOP: PRINT N
SUB N 1
GOTO "TOP" IF N > 0
PRINT "liftoff"
.
`,
			want: "3\n2\n1\nliftoff\n",
		},
		{
			name: "subroutines",
			source: `LET A 2
GOSUB "DOUBLE"
GOSUB "DOUBLE"
PRINT A
END
DOUBLE: MULT A 2
RETURN
.
`,
			want: "8\n",
		},
		{
			name: "relative jumps fall off the end",
			source: `GOTO 2
PRINT "skipped"
PRINT "landed"
GOTO 1
.
`,
			want: "landed\n",
		},
		{
			name: "numbers and strings",
			source: `LET F 7
DIV F 2.0
PRINT F
LET I 7
DIV I -2
PRINT I
LET S "Boo"
MULT S 3
PRINT S
LET G "Hello "
ADD G "World!"
PRINT G
.
`,
			want: "3.5\n-4\nBooBooBoo\nHello World!\n",
		},
		{
			name: "input after terminator",
			source: `INNUM A
INNUM B
ADD A B
PRINT A
INSTR NAME
PRINT NAME
.
2
2.5
Ada Lovelace
`,
			want: "4.5\nAda Lovelace\n",
		},
		{
			name: "variable jump target",
			source: `LET T "DONE"
GOTO T
PRINT "skipped"
DONE: PRINT "done"
.
`,
			want:     "Error on line 2: jump target not specified\n",
			wantCode: 1,
		},
		{
			name:     "variable offset target",
			source:   "LET T 2\nGOTO T\nPRINT \"skipped\"\nPRINT \"landed\"\n.\n",
			want:     "Error on line 2: jump target not specified\n",
			wantCode: 1,
		},
		{
			name: "NaN compares unequal to itself",
			source: `INNUM A
INNUM B
MULT A 10
MULT B 10
SUB B A
GOTO 3 IF B = B
PRINT "unequal"
END
PRINT "equal"
.
1.0e308
1.0e308
`,
			want: "unequal\n",
		},
		{
			name:     "undefined variable prints zero",
			source:   "PRINT MISSING\n.\n",
			want:     "0\n",
			wantCode: 0,
		},
		{
			name:     "zero offset",
			source:   "PRINT \"once\"\nGOTO 0\n.\n",
			want:     "once\nError on line 2: jump offset of 0 would loop forever\n",
			wantCode: 1,
		},
		{
			name:     "return without gosub",
			source:   "RETURN\n.\n",
			want:     "Error on line 1: RETURN without matching GOSUB\n",
			wantCode: 1,
		},
		{
			name:     "divide by zero",
			source:   "LET X 1\nDIV X 0\nPRINT X\n.\n",
			wantCode: 1,
		},
		{
			name:     "bad numeric input",
			source:   "INNUM X\n.\nabc\n",
			wantCode: 1,
		},
		{
			name:     "lex error",
			source:   "PRINT \"open\n.\n",
			want:     "Lexical error at Line 1 Column 7: unterminated string literal\n",
			wantCode: 1,
		},
		{
			name:     "parse error stops before running",
			source:   "PRINT \"first\"\nLET X\n.\n",
			want:     "Parse error at Line 2 Column 6: value expected, got end of line\n",
			wantCode: 1,
		},
	}

	for _, tc := range tests {
		out, code := runProgram(t, nil, tc.source)
		if code != tc.wantCode {
			t.Errorf("%s: exit code = %d; want %d (output %q)", tc.name, code, tc.wantCode, out)
			continue
		}
		if tc.want == "" && tc.wantCode != 0 {
			lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
			if !strings.HasPrefix(lines[len(lines)-1], "Error on line ") {
				t.Errorf("%s: output = %q; want a runtime diagnostic", tc.name, out)
			}
			continue
		}
		if out != tc.want {
			t.Errorf("%s: output = %q; want %q", tc.name, out, tc.want)
		}
	}
}

func TestRunStepLimit(t *testing.T) {
	cfg := config.Default()
	cfg.MaxSteps = 100
	out, code := runProgram(t, cfg, "LET X 1\nGOTO -1\n.\n")
	if code != 1 || !strings.Contains(out, "step limit of 100 exceeded") {
		t.Errorf("output = %q, code = %d", out, code)
	}
}

func TestRunDuplicateLabel(t *testing.T) {
	out, code := runProgram(t, nil, "A: END\nA: END\n.\n")
	if code != 1 || !strings.Contains(out, `duplicate label "A"`) {
		t.Errorf("output = %q, code = %d", out, code)
	}
}

func TestRunTraceLogger(t *testing.T) {
	cfg := config.Default()
	cfg.Trace = true
	var log bytes.Buffer
	var out bytes.Buffer
	code := run(cfg, strings.NewReader("GOSUB 2\nEND\nRETURN\n.\n"), nil, &out, newLogger(cfg, &log))
	if code != 0 {
		t.Fatalf("code = %d, output %q", code, out.String())
	}
	if !strings.Contains(log.String(), "push call frame") {
		t.Errorf("trace = %q; want call frame records", log.String())
	}

	cfg.Trace = false
	log.Reset()
	run(cfg, strings.NewReader("GOSUB 2\nEND\nRETURN\n.\n"), nil, &out, newLogger(cfg, &log))
	if log.Len() != 0 {
		t.Errorf("trace written with tracing off: %q", log.String())
	}
}

func TestRunSeparateInput(t *testing.T) {
	// With a separate input channel, lines after the terminator are not
	// read as input.
	source := "INNUM A\nINSTR NAME\nPRINT A\nPRINT NAME\n.\n99\nfrom source\n"
	var out bytes.Buffer
	code := run(config.Default(), strings.NewReader(source), strings.NewReader("7\nfrom stdin\n"),
		&out, slog.New(slog.DiscardHandler))
	if code != 0 {
		t.Fatalf("code = %d, output %q", code, out.String())
	}
	if want := "7\nfrom stdin\n"; out.String() != want {
		t.Errorf("output = %q; want %q", out.String(), want)
	}
}

func TestParseFlags(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "smile.yaml")
	if err := os.WriteFile(cfgPath, []byte("max_steps: 10\ntrace: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		args      []string
		wantSteps int
		wantTrace bool
		wantIn    string
		wantErr   bool
	}{
		{nil, 0, false, "-", false},
		{[]string{"-in", "prog.smile", "-max-steps", "5"}, 5, false, "prog.smile", false},
		{[]string{"-config", cfgPath}, 10, true, "-", false},
		{[]string{"-config", cfgPath, "-max-steps", "0", "-trace=false"}, 0, false, "-", false},
		{[]string{"-max-steps", "-1"}, 0, false, "", true},
		{[]string{"-config", filepath.Join(dir, "missing.yaml")}, 0, false, "", true},
		{[]string{"-unknown"}, 0, false, "", true},
	}
	for _, tc := range tests {
		cfg, in, err := parseFlags(tc.args, io.Discard)
		if (err != nil) != tc.wantErr {
			t.Errorf("parseFlags(%q) error = %v; wantErr %v", tc.args, err, tc.wantErr)
			continue
		}
		if tc.wantErr {
			continue
		}
		if cfg.MaxSteps != tc.wantSteps || cfg.Trace != tc.wantTrace || in != tc.wantIn {
			t.Errorf("parseFlags(%q) = steps %d, trace %v, in %q; want %d, %v, %q",
				tc.args, cfg.MaxSteps, cfg.Trace, in, tc.wantSteps, tc.wantTrace, tc.wantIn)
		}
	}
}
