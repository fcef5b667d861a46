package telnet

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// Telnet command and option bytes (RFC 854, RFC 858).
const (
	IAC  byte = 255
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250
	GA   byte = 249
	NOP  byte = 241
	SE   byte = 240

	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
	OptLinemode        byte = 34
)

// MaxLineLength bounds a single input line. Longer lines are truncated.
const MaxLineLength = 512

// ErrClosed is returned by writes on a closed Conn.
var ErrClosed = errors.New("telnet: connection closed")

// decodeState is the position of the IAC decoder inside a command sequence.
type decodeState int

const (
	stateData decodeState = iota
	stateCommand
	stateOption
	stateSub
	stateSubIAC
)

// decoder strips Telnet command sequences from a byte stream. It keeps its
// state between calls so a sequence split across reads is still removed.
type decoder struct {
	state decodeState
}

// feed consumes one input byte and reports the data byte it yields, if any.
func (d *decoder) feed(b byte) (byte, bool) {
	switch d.state {
	case stateCommand:
		switch b {
		case WILL, WONT, DO, DONT:
			d.state = stateOption
		case SB:
			d.state = stateSub
		case IAC:
			d.state = stateData
			return IAC, true
		default:
			d.state = stateData
		}
		return 0, false
	case stateOption:
		d.state = stateData
		return 0, false
	case stateSub:
		if b == IAC {
			d.state = stateSubIAC
		}
		return 0, false
	case stateSubIAC:
		if b == SE {
			d.state = stateData
		} else {
			d.state = stateSub
		}
		return 0, false
	}
	if b == IAC {
		d.state = stateCommand
		return 0, false
	}
	return b, true
}

// FilterIAC returns input with every Telnet command sequence removed. An
// escaped IAC IAC pair yields a single 0xFF byte.
func FilterIAC(input []byte) []byte {
	var d decoder
	out := make([]byte, 0, len(input))
	for _, b := range input {
		if v, ok := d.feed(b); ok {
			out = append(out, v)
		}
	}
	return out
}

// Conn is a line-oriented Telnet connection. Reads come from one goroutine;
// writes are serialized and may come from any goroutine.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader
	dec    decoder

	wmu    sync.Mutex
	closed bool

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps raw. A zero timeout disables the corresponding deadline.
//
// Precondition: raw must be open.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Negotiate announces that the server suppresses go-ahead.
func (c *Conn) Negotiate() error {
	return c.Write([]byte{IAC, WILL, OptSuppressGoAhead})
}

// ReadLine returns the next input line without its terminator. CR, LF and
// CRLF all end a line. Command sequences and control characters other than
// tab are dropped.
//
// Postcondition: the returned line is at most MaxLineLength bytes. On error
// the partial line read so far is returned with it.
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	line := make([]byte, 0, 64)
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return string(line), err
		}
		v, ok := c.dec.feed(b)
		if !ok {
			continue
		}
		switch {
		case v == '\r':
			if next, err := c.reader.Peek(1); err == nil && next[0] == '\n' {
				_, _ = c.reader.ReadByte()
			}
			return string(line), nil
		case v == '\n':
			return string(line), nil
		case v < 32 && v != '\t', v == 127:
			continue
		}
		if len(line) < MaxLineLength {
			line = append(line, v)
		}
	}
}

// Write sends data as-is.
func (c *Conn) Write(data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(data)
	return err
}

// WriteLine sends text followed by CRLF. Bare LFs inside text are expanded
// to CRLF so multi-line output renders on every client.
func (c *Conn) WriteLine(text string) error {
	return c.Write(append(toCRLF(text), '\r', '\n'))
}

// Writef formats and sends one line.
func (c *Conn) Writef(format string, args ...any) error {
	return c.WriteLine(fmt.Sprintf(format, args...))
}

// WritePrompt sends prompt without a line terminator.
func (c *Conn) WritePrompt(prompt string) error {
	return c.Write([]byte(prompt))
}

// Close closes the underlying connection. It is safe to call more than once.
func (c *Conn) Close() error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.raw.Close()
}

// RemoteAddr returns the client address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}

func toCRLF(s string) []byte {
	out := make([]byte, 0, len(s)+8)
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' && (i == 0 || s[i-1] != '\r') {
			out = append(out, '\r')
		}
		out = append(out, s[i])
	}
	return out
}
