package runtime

import (
	"errors"
	"fmt"
)

var (
	ErrUndefinedVariable = errors.New("undefined variable")
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrInvalidFormat     = errors.New("invalid format")
	ErrJumpTarget        = errors.New("invalid jump target")
	ErrReturnWithoutCall = errors.New("return without matching call")
	ErrInvalidInput      = errors.New("invalid input")
	ErrStepLimit         = errors.New("step limit exceeded")
)

// Fault is a fatal runtime error. Kind is one of the package sentinels and
// Err, when set, is the underlying cause; errors.Is matches either.
type Fault struct {
	Kind error
	Msg  string
	Line int // source line of the failing instruction, 0 if unknown
	Err  error
}

func faultf(kind error, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func (f *Fault) Error() string {
	if f.Line > 0 {
		return fmt.Sprintf("Error on line %d: %s", f.Line, f.Msg)
	}
	return "Error: " + f.Msg
}

func (f *Fault) Unwrap() []error {
	if f.Err != nil {
		return []error{f.Kind, f.Err}
	}
	return []error{f.Kind}
}
