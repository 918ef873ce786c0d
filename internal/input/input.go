// Package input turns raw terminal bytes into per-frame game input: clicks,
// held aim keys, number-key aim and SGR mouse reports.
package input

import (
	"bufio"
	"strconv"
	"time"
)

// keyHoldDuration is how long a key is considered "held" after its last press.
// Terminals only report key repeats, so this bridges the gap between them.
const keyHoldDuration = 60 * time.Millisecond

// Pointer is a mouse position in 1-based terminal cells.
type Pointer struct {
	Col, Row int
	Valid    bool
}

// Input represents the current frame's input state.
type Input struct {
	Quit      bool
	Closed    bool    // The byte source ended
	Primary   int     // Primary clicks (left button, SPACE, ENTER) this frame
	Secondary int     // Secondary clicks (right button, R, BACKSPACE) this frame
	Axis      int     // -1 while a turn-left key is held, 1 for turn-right
	Number    int     // Last digit pressed this frame, -1 if none
	Pointer   Pointer // Last reported mouse position this frame
}

// keyState tracks the last time each held key was pressed.
type keyState struct {
	left  time.Time
	right time.Time
}

// Stream delivers input bytes via a channel and tracks held keys.
type Stream struct {
	ch     chan byte
	state  keyState
	closed bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := newStream()
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

func newStream() *Stream {
	return &Stream{ch: make(chan byte, 256)}
}

// ReadInput drains all available bytes from the stream without blocking and
// decodes them.
func ReadInput(s *Stream) Input {
	var buf []byte
drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}
	in := s.decode(buf, time.Now())
	in.Closed = s.closed
	return in
}

// decode parses one frame's bytes. Escape sequences split across frames are
// dropped.
func (s *Stream) decode(buf []byte, now time.Time) Input {
	in := Input{Number: -1}

	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			if buf[i+2] == '<' {
				if n, ok := decodeMouse(buf[i+3:], &in); ok {
					i += 2 + n
					continue
				}
			}
			switch buf[i+2] {
			case 'C': // Right arrow
				s.state.right = now
				i += 2
				continue
			case 'D': // Left arrow
				s.state.left = now
				i += 2
				continue
			case 'A', 'B': // Up/down arrows are unused
				i += 2
				continue
			}
		}

		switch b {
		case 'q', 'Q', '\x03':
			in.Quit = true
		case 'a', 'A', 'j', 'J':
			s.state.left = now
		case 'd', 'D', 'l', 'L':
			s.state.right = now
		case ' ', '\n', '\r':
			in.Primary++
		case 'r', 'R', '\b', '\x7f':
			in.Secondary++
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			in.Number = int(b - '0')
		}
	}

	left := now.Sub(s.state.left) < keyHoldDuration
	right := now.Sub(s.state.right) < keyHoldDuration
	switch {
	case left && !right:
		in.Axis = -1
	case right && !left:
		in.Axis = 1
	}
	return in
}

// decodeMouse parses the body of an SGR mouse report ("b;col;row" followed by
// 'M' for press/motion or 'm' for release). It returns the bytes consumed.
func decodeMouse(buf []byte, in *Input) (int, bool) {
	var fields [3]int
	field, start := 0, 0
	for i, c := range buf {
		switch {
		case c >= '0' && c <= '9':
			continue
		case c == ';' && field < 2:
			v, err := strconv.Atoi(string(buf[start:i]))
			if err != nil {
				return 0, false
			}
			fields[field] = v
			field++
			start = i + 1
		case (c == 'M' || c == 'm') && field == 2:
			v, err := strconv.Atoi(string(buf[start:i]))
			if err != nil {
				return 0, false
			}
			fields[2] = v
			applyMouse(fields, c == 'M', in)
			return i + 1, true
		default:
			return 0, false
		}
	}
	return 0, false
}

func applyMouse(f [3]int, press bool, in *Input) {
	code := f[0]
	in.Pointer = Pointer{Col: f[1], Row: f[2], Valid: true}
	if !press || code&32 != 0 || code&64 != 0 {
		return // release, motion or wheel
	}
	switch code & 3 {
	case 0:
		in.Primary++
	case 2:
		in.Secondary++
	}
}
