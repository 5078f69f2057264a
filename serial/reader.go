package serial

import (
	"bytes"
	"context"
	"errors"
	"io"
)

const maxLine = 256

// ErrLineTooLong is reported for a line longer than the protocol allows.
// The whole line is skipped, up to its terminator.
var ErrLineTooLong = errors.New("line too long")

// ReadEvents reads protocol lines from r and calls fn for each event until
// ctx is done or r fails. io.EOF and cancellation end the stream without an
// error. Malformed lines go to onBad (when non-nil) and reading continues.
//
// r is expected to return periodically (a serial port with a read timeout
// returns 0 bytes); ctx is checked between reads.
func ReadEvents(ctx context.Context, r io.Reader, fn func(Event), onBad func(error)) error {
	buf := make([]byte, 64)
	var pending []byte
	discarding := false
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := r.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			for {
				i := bytes.IndexAny(pending, "\r\n")
				if i < 0 {
					break
				}
				line := string(pending[:i])
				pending = pending[i+1:]
				if ctx.Err() != nil {
					return nil
				}
				if discarding {
					// tail of an overlong line
					discarding = false
					continue
				}
				if len(line) > maxLine {
					reportLong(line, onBad)
					continue
				}
				emitLine(line, fn, onBad)
			}
			if len(pending) > maxLine {
				if !discarding {
					reportLong(string(pending), onBad)
					discarding = true
				}
				pending = pending[:0]
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(pending) > 0 && !discarding && ctx.Err() == nil {
					emitLine(string(pending), fn, onBad)
				}
				return nil
			}
			return err
		}
	}
}

func reportLong(line string, onBad func(error)) {
	if onBad == nil {
		return
	}
	if len(line) > 32 {
		line = line[:32] + "..."
	}
	onBad(&ParseError{Line: line, Err: ErrLineTooLong})
}

func emitLine(line string, fn func(Event), onBad func(error)) {
	ev, ok, err := ParseLine(line)
	if err != nil {
		if onBad != nil {
			onBad(err)
		}
		return
	}
	if ok {
		fn(ev)
	}
}
