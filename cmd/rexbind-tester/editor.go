package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const prompt = "rexbind> "

// LineEditor is a minimal raw-mode line editor: cursor movement, history,
// and the usual control keys. Anything fancier belongs in the host shell.
type LineEditor struct {
	fd       int
	oldState *term.State

	line   []rune
	cursor int

	history []string
	histPos int

	pending []byte
}

func NewLineEditor() *LineEditor {
	return &LineEditor{fd: int(os.Stdin.Fd())}
}

func (e *LineEditor) enterRawMode() error {
	oldState, err := term.MakeRaw(e.fd)
	if err != nil {
		return err
	}
	e.oldState = oldState
	return nil
}

func (e *LineEditor) exitRawMode() {
	if e.oldState != nil {
		term.Restore(e.fd, e.oldState)
		e.oldState = nil
	}
}

// readByte reads one byte, draining a pending buffer first so that escape
// sequences arriving in one read are consumed byte by byte.
func (e *LineEditor) readByte() (byte, error) {
	if len(e.pending) > 0 {
		b := e.pending[0]
		e.pending = e.pending[1:]
		return b, nil
	}
	buf := make([]byte, 32)
	n, err := os.Stdin.Read(buf)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	if n > 1 {
		e.pending = append(e.pending, buf[1:n]...)
	}
	return buf[0], nil
}

// redraw repaints the prompt and line and places the cursor.
func (e *LineEditor) redraw() {
	fmt.Print("\r\x1b[K", prompt, string(e.line))
	if tail := len(e.line) - e.cursor; tail > 0 {
		fmt.Printf("\x1b[%dD", tail)
	}
}

func (e *LineEditor) setLine(s string) {
	e.line = []rune(s)
	e.cursor = len(e.line)
}

// ReadLine reads one edited line. io.EOF means the user is done.
func (e *LineEditor) ReadLine() (string, error) {
	if err := e.enterRawMode(); err != nil {
		return "", err
	}
	defer e.exitRawMode()

	e.line = e.line[:0]
	e.cursor = 0
	e.histPos = len(e.history)
	e.redraw()

	for {
		b, err := e.readByte()
		if err != nil {
			return "", err
		}
		switch b {
		case '\r', '\n':
			fmt.Print("\r\n")
			line := string(e.line)
			if strings.TrimSpace(line) != "" {
				e.history = append(e.history, line)
			}
			return line, nil

		case 0x03: // ctrl-c: drop the line
			fmt.Print("^C\r\n")
			e.line = e.line[:0]
			e.cursor = 0
			e.redraw()

		case 0x04: // ctrl-d: quit on empty line
			if len(e.line) == 0 {
				fmt.Print("\r\n")
				return "", io.EOF
			}

		case 0x01: // ctrl-a
			e.cursor = 0
			e.redraw()

		case 0x05: // ctrl-e
			e.cursor = len(e.line)
			e.redraw()

		case 0x15: // ctrl-u: clear line
			e.line = e.line[:0]
			e.cursor = 0
			e.redraw()

		case 0x7f, 0x08: // backspace
			if e.cursor > 0 {
				e.line = append(e.line[:e.cursor-1], e.line[e.cursor:]...)
				e.cursor--
				e.redraw()
			}

		case 0x1b: // escape sequence
			e.handleEscape()

		default:
			if b >= 0x20 {
				e.insertByte(b)
			}
		}
	}
}

// insertByte inserts a printable byte, buffering UTF-8 continuation bytes
// until a full rune has arrived.
func (e *LineEditor) insertByte(b byte) {
	bytes := []byte{b}
	// Multi-byte rune: the remaining bytes are already pending.
	for n := utf8Len(b) - 1; n > 0 && len(e.pending) > 0; n-- {
		bytes = append(bytes, e.pending[0])
		e.pending = e.pending[1:]
	}
	for _, r := range string(bytes) {
		e.line = append(e.line[:e.cursor], append([]rune{r}, e.line[e.cursor:]...)...)
		e.cursor++
	}
	e.redraw()
}

func utf8Len(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b&0xe0 == 0xc0:
		return 2
	case b&0xf0 == 0xe0:
		return 3
	case b&0xf8 == 0xf0:
		return 4
	default:
		return 1
	}
}

func (e *LineEditor) handleEscape() {
	b, err := e.readByte()
	if err != nil || b != '[' {
		return
	}
	b, err = e.readByte()
	if err != nil {
		return
	}
	switch b {
	case 'A': // up
		if e.histPos > 0 {
			e.histPos--
			e.setLine(e.history[e.histPos])
			e.redraw()
		}
	case 'B': // down
		if e.histPos < len(e.history) {
			e.histPos++
			if e.histPos == len(e.history) {
				e.setLine("")
			} else {
				e.setLine(e.history[e.histPos])
			}
			e.redraw()
		}
	case 'C': // right
		if e.cursor < len(e.line) {
			e.cursor++
			e.redraw()
		}
	case 'D': // left
		if e.cursor > 0 {
			e.cursor--
			e.redraw()
		}
	case '3': // delete: CSI 3 ~
		if t, err := e.readByte(); err == nil && t == '~' && e.cursor < len(e.line) {
			e.line = append(e.line[:e.cursor], e.line[e.cursor+1:]...)
			e.redraw()
		}
	default:
		// Swallow the rest of an unrecognized CSI sequence.
		for b < 0x40 || b > 0x7e {
			b, err = e.readByte()
			if err != nil {
				return
			}
		}
	}
}

func runREPL(s *session) {
	fmt.Println("rexbind tester (help for commands, ctrl-d to leave)")

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		runScript(s)
		return
	}

	editor := NewLineEditor()
	for {
		line, err := editor.ReadLine()
		if err == io.EOF {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "read: %v\n", err)
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out, err := execute(s, line)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		fmt.Println(out)
	}
}
