package remote

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// Close reasons sent with the final normal-closure frame.
const (
	ReasonOK    = "ok"
	ReasonFault = "fault"
)

// maxMessageSize bounds a single client message. A larger one makes the
// library close the connection with CloseMessageTooBig.
const maxMessageSize = 64 << 10

// conn is one upgraded client connection. Reads happen on the interpreter
// goroutine only; writes are serialized by mu.
type conn struct {
	ws *websocket.Conn

	mu     sync.Mutex
	closed bool

	pending []string // lines of a multi-line message not yet consumed
	partial bytes.Buffer
}

func newConn(ws *websocket.Conn) *conn {
	ws.SetReadLimit(maxMessageSize)
	return &conn{ws: ws}
}

// ReadLine returns the next line sent by the client. Each text message is a
// line; a message holding newlines counts as several. A close from the
// client or a dropped connection ends the input with io.EOF.
func (c *conn) ReadLine() (string, error) {
	for len(c.pending) == 0 {
		messageType, message, err := c.ws.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			if errors.As(err, &ce) || errors.Is(err, io.ErrUnexpectedEOF) {
				return "", io.EOF
			}
			return "", fmt.Errorf("remote: read: %w", err)
		}
		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}
		text := strings.TrimSuffix(string(message), "\n")
		for _, line := range strings.Split(text, "\n") {
			c.pending = append(c.pending, strings.TrimSuffix(line, "\r"))
		}
	}
	line := c.pending[0]
	c.pending = c.pending[1:]
	return line, nil
}

// Write sends every completed line of p as one text message and holds back
// a trailing partial line until its newline arrives.
func (c *conn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, errors.New("remote: connection is closed")
	}
	c.partial.Write(p)
	for {
		data := c.partial.Bytes()
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		line := bytes.TrimSuffix(data[:i], []byte("\r"))
		if err := c.ws.WriteMessage(websocket.TextMessage, line); err != nil {
			c.closed = true
			return 0, fmt.Errorf("remote: write: %w", err)
		}
		c.partial.Next(i + 1)
	}
	return len(p), nil
}

// Send writes msg as a single text message.
func (c *conn) Send(msg string) error {
	_, err := c.Write([]byte(msg + "\n"))
	return err
}

// Close flushes any partial line, sends a normal-closure frame carrying
// reason and closes the connection.
func (c *conn) Close(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.ws.Close()
	}
	c.closed = true
	var errs []error
	if c.partial.Len() > 0 {
		if err := c.ws.WriteMessage(websocket.TextMessage, c.partial.Bytes()); err != nil {
			errs = append(errs, fmt.Errorf("remote: flush: %w", err))
		}
		c.partial.Reset()
	}
	err := c.ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason))
	if err != nil {
		errs = append(errs, fmt.Errorf("remote: close frame: %w", err))
	}
	if err := c.ws.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
