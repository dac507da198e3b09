package stream

import (
	"context"
	"io"
	"strconv"
	"time"
)

// Source produces the chunk at index i
type Source func(i int) []byte

// DripSource emits b once per chunk
func DripSource(b byte) Source {
	return func(int) []byte { return []byte{b} }
}

// LineSource emits {"line": i} followed by a newline
func LineSource() Source {
	return func(i int) []byte {
		return []byte(`{"line": ` + strconv.Itoa(i) + "}\n")
	}
}

// Emitter writes paced chunks to w, flushing after each one
type Emitter struct {
	w     io.Writer
	flush func() error
}

// NewEmitter creates an Emitter. flush may be nil when w does not buffer.
func NewEmitter(w io.Writer, flush func() error) *Emitter {
	return &Emitter{w: w, flush: flush}
}

// Emit walks plan, waiting before each chunk and writing it from src.
// It stops at the first wait interrupted by ctx and returns ctx.Err().
func (e *Emitter) Emit(ctx context.Context, plan Plan, src Source) (int64, error) {
	var written int64
	for i, wait := range plan.Chunks() {
		if err := Sleep(ctx, wait); err != nil {
			return written, err
		}
		n, err := e.w.Write(src(i))
		written += int64(n)
		if err != nil {
			return written, err
		}
		if e.flush != nil {
			if err := e.flush(); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// Sleep pauses for d or until ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
