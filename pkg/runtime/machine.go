package runtime

import (
	"errors"
	"io"
	"log/slog"
	"maps"
	"os"

	"smile/pkg/parser"
)

// Machine runs one Program: a fetch/dispatch/execute loop over the
// instruction array driven by IP and the call stack.
type Machine struct {
	Program parser.Program
	State   *ProgramState
	Stack   *CallStack

	IP     int
	Halted bool
	Steps  int

	// MaxSteps bounds the number of executed instructions; 0 means no limit.
	MaxSteps int

	// Input feeds INNUM/INSTR. If nil, stdin is used.
	Input LineReader
	// Output receives PRINT lines. If nil, os.Stdout is used.
	Output io.Writer
	// Logger receives trace records. If nil, nothing is logged.
	Logger *slog.Logger

	labels LabelRegistry
	flow   *FlowController
}

// NewMachine prepares a run of prog against labels.
func NewMachine(prog parser.Program, labels LabelRegistry) *Machine {
	m := &Machine{
		Program: prog,
		State:   NewProgramState(labels),
		Stack:   &CallStack{},
		labels:  maps.Clone(labels),
	}
	m.flow = NewFlowController(m.State, m.Stack, len(prog))
	return m
}

// Reset returns the machine to its initial state: no variables, an empty
// call stack and IP at the first instruction.
func (m *Machine) Reset() {
	m.State.Reset(m.labels)
	m.Stack.Reset()
	m.IP = 0
	m.Halted = false
	m.Steps = 0
}

func (m *Machine) outputSink() io.Writer {
	if m.Output != nil {
		return m.Output
	}
	return os.Stdout
}

func (m *Machine) inputSource() LineReader {
	if m.Input == nil {
		m.Input = NewLineReader(os.Stdin)
	}
	return m.Input
}

func (m *Machine) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Step executes the instruction at IP. Falling off the end or END halts
// the machine; a fault halts it and is returned.
func (m *Machine) Step() error {
	if m.Halted {
		return nil
	}
	if m.IP >= len(m.Program) {
		m.Halted = true
		return nil
	}
	in := m.Program[m.IP]
	if m.MaxSteps > 0 && m.Steps >= m.MaxSteps {
		m.Halted = true
		return m.locate(faultf(ErrStepLimit, "step limit of %d exceeded", m.MaxSteps), in)
	}
	m.Steps++

	next, err := m.execute(in)
	if err != nil {
		m.Halted = true
		return m.locate(err, in)
	}
	m.IP = next
	if m.IP >= len(m.Program) {
		m.Halted = true
	}
	return nil
}

// locate attaches the source line of in to a fault that lacks one.
func (m *Machine) locate(err error, in parser.Instruction) error {
	var f *Fault
	if errors.As(err, &f) && f.Line == 0 {
		f.Line = in.Line
	}
	return err
}

func (m *Machine) execute(in parser.Instruction) (int, error) {
	next := m.IP + 1
	switch in.Kind() {
	case parser.LET:
		Assign(m.State, in)
	case parser.PRINT:
		if err := Output(m.State, in, m.outputSink()); err != nil {
			return 0, err
		}
	case parser.END:
		m.Halted = true
		return m.IP, nil
	case parser.INNUM:
		if err := NumericInput(m.State, in, m.inputSource()); err != nil {
			return 0, err
		}
	case parser.INSTR:
		if err := TextInput(m.State, in, m.inputSource()); err != nil {
			return 0, err
		}
	case parser.ADD, parser.SUB, parser.MULT, parser.DIV:
		if err := Arithmetic(m.State, in); err != nil {
			return 0, err
		}
	case parser.GOTO:
		target, err := m.flow.Jump(in, m.IP)
		if err != nil {
			return 0, err
		}
		if target != next {
			m.logger().Debug("jump", slog.Int("line", in.Line), slog.Int("target", target))
		}
		return target, nil
	case parser.GOSUB:
		depth := m.Stack.Len()
		target, err := m.flow.Call(in, m.IP)
		if err != nil {
			return 0, err
		}
		if m.Stack.Len() > depth {
			m.logger().Debug("push call frame",
				slog.Int("line", in.Line),
				slog.Int("target", target),
				slog.Int("stack-size", m.Stack.Len()))
		}
		return target, nil
	case parser.RETURN:
		target, err := m.flow.Return()
		if err != nil {
			return 0, err
		}
		m.logger().Debug("pop call frame",
			slog.Int("line", in.Line),
			slog.Int("return-to", target),
			slog.Int("stack-size", m.Stack.Len()))
		return target, nil
	default:
		return 0, faultf(ErrInvalidFormat, "unknown statement %s", in.Kind())
	}
	return next, nil
}

// Run steps until the program ends or faults.
func (m *Machine) Run() error {
	for !m.Halted {
		if err := m.Step(); err != nil {
			return err
		}
	}
	m.logger().Info("run complete",
		slog.Int("steps", m.Steps),
		slog.Int("variables", len(m.State.Variables())))
	return nil
}
