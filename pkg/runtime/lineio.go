package runtime

import (
	"bufio"
	"io"
	"strings"
)

// LineReader is the line-oriented input channel. ReadLine returns one line
// without its terminator and blocks until one is available.
type LineReader interface {
	ReadLine() (string, error)
}

type bufferedLines struct {
	r *bufio.Reader
}

// NewLineReader reads lines from r. A final line without a newline is still
// returned; io.EOF is reported only once nothing is left.
func NewLineReader(r io.Reader) LineReader {
	if lr, ok := r.(LineReader); ok {
		return lr
	}
	return &bufferedLines{r: bufio.NewReader(r)}
}

func (b *bufferedLines) ReadLine() (string, error) {
	line, err := b.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}
