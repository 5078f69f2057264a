package serial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/tarm/serial"
)

// Open opens name as 8N1 with a short read timeout so readers can notice
// cancellation between lines.
func Open(name string, baud int) (*serial.Port, error) {
	if name == "" {
		return nil, fmt.Errorf("missing serial port")
	}
	config := &serial.Config{
		Name:        name,
		Baud:        baud,
		Parity:      serial.ParityNone,
		Size:        8,
		StopBits:    serial.Stop1,
		ReadTimeout: time.Millisecond * 300,
	}
	return serial.OpenPort(config)
}

// AutoDetectPort scans common device names for a port that streams force lines.
func AutoDetectPort(baud int) string {
	for _, name := range candidatePorts() {
		if TestPort(name, baud) {
			return name
		}
	}
	return ""
}

func candidatePorts() []string {
	if runtime.GOOS == "windows" {
		out := make([]string, 0, 64)
		for i := 1; i <= 64; i++ {
			out = append(out, fmt.Sprintf("COM%d", i))
		}
		return out
	}
	candidates := make([]string, 0, 32)
	for _, pat := range []string{"/dev/ttyUSB*", "/dev/ttyACM*", "/dev/cu.usbmodem*", "/dev/cu.usbserial*"} {
		matches, _ := filepath.Glob(pat)
		for _, m := range matches {
			if _, err := os.Stat(m); err == nil {
				candidates = append(candidates, m)
			}
		}
	}
	return candidates
}

// TestPort opens name and waits briefly for one valid protocol line.
func TestPort(name string, baud int) bool {
	sp, err := Open(name, baud)
	if err != nil {
		return false
	}
	defer func() { _ = sp.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	found := false
	_ = Stream(ctx, sp, func(Event) {
		found = true
		cancel()
	}, nil)
	return found
}

// Stream reads events from an open port until ctx is done. A read timeout
// on the port is not treated as end of stream.
func Stream(ctx context.Context, port io.Reader, fn func(Event), onBad func(error)) error {
	return ReadEvents(ctx, timeoutReader{port}, fn, onBad)
}

// timeoutReader hides the io.EOF some platforms return when a read times
// out with no data.
type timeoutReader struct {
	r io.Reader
}

func (t timeoutReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n == 0 && errors.Is(err, io.EOF) {
		return 0, nil
	}
	return n, err
}
