package runtime

import (
	"smile/pkg/parser"
	"smile/pkg/value"
)

// FlowController computes the next instruction index for GOTO, GOSUB and
// RETURN. size is the program length N; index N is a legal target that
// ends the run.
type FlowController struct {
	state *ProgramState
	stack *CallStack
	size  int
}

func NewFlowController(state *ProgramState, stack *CallStack, size int) *FlowController {
	return &FlowController{state: state, stack: stack, size: size}
}

// Jump handles GOTO. A false condition always advances by exactly one.
func (fc *FlowController) Jump(in parser.Instruction, current int) (int, error) {
	taken, err := fc.taken(in)
	if err != nil {
		return 0, err
	}
	if !taken {
		return current + 1, nil
	}
	return fc.resolve(in.Tokens[1], current)
}

// Call handles GOSUB. The return index is pushed only after the target
// resolved successfully.
func (fc *FlowController) Call(in parser.Instruction, current int) (int, error) {
	taken, err := fc.taken(in)
	if err != nil {
		return 0, err
	}
	if !taken {
		return current + 1, nil
	}
	target, err := fc.resolve(in.Tokens[1], current)
	if err != nil {
		return 0, err
	}
	fc.stack.Push(current + 1)
	return target, nil
}

// Return pops the index the most recent GOSUB saved.
func (fc *FlowController) Return() (int, error) {
	index, ok := fc.stack.Pop()
	if !ok {
		return 0, faultf(ErrReturnWithoutCall, "RETURN without matching GOSUB")
	}
	return index, nil
}

// taken validates the instruction shape before anything is resolved and
// evaluates the IF clause of the six-token form.
func (fc *FlowController) taken(in parser.Instruction) (bool, error) {
	switch len(in.Tokens) {
	case 2:
		return true, nil
	case 6:
		if in.Tokens[2].Type != parser.IF {
			break
		}
		return fc.condition(in.Tokens[3], in.Tokens[4], in.Tokens[5])
	}
	return false, faultf(ErrInvalidFormat, "invalid %s format", in.Kind())
}

func (fc *FlowController) condition(left, cmp, right parser.Token) (bool, error) {
	c, ok := cmp.Type.Comparison()
	if !ok {
		return false, faultf(ErrInvalidFormat, "unknown comparison operator %q", cmp.Lexeme)
	}
	a, err := fc.operand(left)
	if err != nil {
		return false, err
	}
	b, err := fc.operand(right)
	if err != nil {
		return false, err
	}
	result, err := value.Compare(c, a, b)
	if err != nil {
		return false, &Fault{Kind: ErrInvalidOperation, Msg: err.Error(), Err: err}
	}
	return result, nil
}

func (fc *FlowController) operand(tok parser.Token) (value.Value, error) {
	switch {
	case tok.Type.IsLiteral():
		return tok.Value, nil
	case tok.Type == parser.IDENTIFIER:
		v, ok := fc.state.Lookup(tok.Lexeme)
		if !ok {
			return value.Value{}, faultf(ErrUndefinedVariable, "undefined variable in condition: %s", tok.Lexeme)
		}
		return v, nil
	}
	return value.Value{}, faultf(ErrInvalidFormat, "invalid condition operand %q", tok.Lexeme)
}

// resolve turns a target token into an instruction index. Integers are
// offsets from current and strings name labels. A variable name is
// accepted by the parser but never resolves.
func (fc *FlowController) resolve(tok parser.Token, current int) (int, error) {
	switch tok.Type {
	case parser.INTEGER:
		return fc.offset(tok.Value.AsInt(), current)
	case parser.STRING:
		return fc.label(tok.Value.AsString())
	}
	return 0, faultf(ErrJumpTarget, "jump target not specified")
}

func (fc *FlowController) offset(off int64, current int) (int, error) {
	if off == 0 {
		return 0, faultf(ErrJumpTarget, "jump offset of 0 would loop forever")
	}
	target := int64(current) + off
	if target < 0 || target > int64(fc.size) {
		return 0, faultf(ErrJumpTarget, "jump target line %d out of range", target+1)
	}
	return int(target), nil
}

// label maps a label's 1-based line L to instruction index L-1.
func (fc *FlowController) label(name string) (int, error) {
	line, ok := fc.state.ResolveLabel(name)
	if !ok {
		return 0, faultf(ErrJumpTarget, "label %q not found", name)
	}
	index := line - 1
	if index < 0 || index > fc.size {
		return 0, faultf(ErrJumpTarget, "label %q at line %d out of range", name, line)
	}
	return index, nil
}
