// Package chunked reads HTTP/1.1 chunked transfer coding one chunk at a
// time. Streaming endpoints flush every unit as its own chunk; reading at
// chunk granularity lets callers observe when each unit arrived on the wire.
package chunked

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// maxChunkSize bounds a single chunk accepted by Reader
const maxChunkSize = 1 << 24

// Reader yields the chunks of a chunked body
type Reader struct {
	br       *bufio.Reader
	trailers map[string]string
	done     bool
}

// NewReader reads chunks from r. r must be positioned at the first chunk
// size line, i.e. just after the response header block.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{br: br, trailers: map[string]string{}}
}

// Next returns the data of the next chunk. It returns io.EOF after the
// terminating zero-size chunk and its trailers have been consumed.
func (r *Reader) Next() ([]byte, error) {
	if r.done {
		return nil, io.EOF
	}

	line, err := r.readLine()
	if err != nil {
		return nil, err
	}
	size, err := parseSize(line)
	if err != nil {
		return nil, err
	}

	if size == 0 {
		if err := r.readTrailers(); err != nil {
			return nil, err
		}
		r.done = true
		return nil, io.EOF
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(r.br, data); err != nil {
		return nil, fmt.Errorf("chunked: short chunk data: %w", err)
	}
	crlf, err := r.readLine()
	if err != nil {
		return nil, err
	}
	if crlf != "" {
		return nil, fmt.Errorf("chunked: missing CRLF after chunk data")
	}
	return data, nil
}

// Trailers returns trailer fields seen after the last chunk
func (r *Reader) Trailers() map[string]string {
	return r.trailers
}

func (r *Reader) readLine() (string, error) {
	line, err := r.br.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return "", fmt.Errorf("chunked: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (r *Reader) readTrailers() error {
	for {
		line, err := r.readLine()
		if err != nil {
			return err
		}
		if line == "" {
			return nil
		}
		name, value, found := strings.Cut(line, ":")
		if !found {
			return fmt.Errorf("chunked: malformed trailer %q", line)
		}
		r.trailers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
}

func parseSize(line string) (int, error) {
	// chunk extensions are ignored
	if idx := strings.IndexByte(line, ';'); idx != -1 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	size, err := strconv.ParseInt(line, 16, 64)
	if err != nil || size < 0 {
		return 0, fmt.Errorf("chunked: invalid chunk size %q", line)
	}
	if size > maxChunkSize {
		return 0, fmt.Errorf("chunked: chunk size %d too large", size)
	}
	return int(size), nil
}
