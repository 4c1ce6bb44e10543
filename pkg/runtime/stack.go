package runtime

// CallStack holds the instruction indices GOSUB will resume at.
type CallStack struct {
	frames []int
}

func (cs *CallStack) Push(index int) {
	cs.frames = append(cs.frames, index)
}

// Pop removes the most recent return index. ok is false on an empty stack.
func (cs *CallStack) Pop() (index int, ok bool) {
	if len(cs.frames) == 0 {
		return 0, false
	}
	index = cs.frames[len(cs.frames)-1]
	cs.frames = cs.frames[:len(cs.frames)-1]
	return index, true
}

func (cs *CallStack) Len() int { return len(cs.frames) }

// Frames returns the stack bottom first.
func (cs *CallStack) Frames() []int {
	return append([]int(nil), cs.frames...)
}

func (cs *CallStack) Reset() { cs.frames = cs.frames[:0] }
