// internal/revreader/reader.go
package revreader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// BufferSize is the default number of bytes read per refill.
const BufferSize = 64 * 1024

// Option configures a Reader
type Option func(*Reader)

// WithBufferSize overrides the refill size. Values below 1 are ignored.
func WithBufferSize(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.bufSize = n
		}
	}
}

// Reader yields the lines of a file from last to first.
// It is single-pass: open a new Reader to scan the file again.
type Reader struct {
	path    string
	file    *os.File
	bufSize int
	buf     []byte

	// pos is the offset of the lowest byte read so far; it only decreases.
	pos int64

	// leftover is the head of the lowest chunk read so far. Its start lies
	// further back in the file, so it is completed by the next refill.
	leftover    string
	hasLeftover bool

	// lines holds the current batch in on-disk order; Next pops from the end.
	lines []string

	done bool
	err  error
}

// Open opens path for reverse reading
func Open(path string, opts ...Option) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat log: %w", err)
	}

	r := &Reader{
		path:    path,
		file:    f,
		bufSize: BufferSize,
		pos:     info.Size(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Path returns the file being read
func (r *Reader) Path() string {
	return r.path
}

// Next returns the next line in reverse file order, without its newline.
// ok is false once every line has been returned; further calls keep
// returning ok == false. A non-nil error is sticky.
func (r *Reader) Next() (line string, ok bool, err error) {
	if r.err != nil {
		return "", false, r.err
	}

	for len(r.lines) == 0 {
		if r.done || r.pos == 0 {
			r.finish()
			return "", false, nil
		}
		if err := r.refill(); err != nil {
			r.err = err
			r.finish()
			return "", false, err
		}
	}

	last := len(r.lines) - 1
	line = r.lines[last]
	r.lines[last] = ""
	r.lines = r.lines[:last]
	return line, true, nil
}

// Close releases the file handle. It is safe to call more than once.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// Closed reports whether the file handle has been released.
func (r *Reader) Closed() bool {
	return r.file == nil
}

func (r *Reader) finish() {
	r.done = true
	r.lines = nil
	r.Close()
}

// refill reads the chunk preceding pos and splits it into lines.
func (r *Reader) refill() error {
	size := int64(r.bufSize)
	if r.pos < size {
		size = r.pos
	}
	r.pos -= size

	if cap(r.buf) < int(size) {
		r.buf = make([]byte, size)
	}
	chunk := r.buf[:size]
	n, err := r.file.ReadAt(chunk, r.pos)
	if err != nil && !(errors.Is(err, io.EOF) && int64(n) == size) {
		return fmt.Errorf("read log %s at offset %d: %w", r.path, r.pos, err)
	}

	parts := bytes.Split(chunk, []byte{'\n'})
	lines := make([]string, len(parts))
	for i, p := range parts {
		lines[i] = string(p)
	}

	last := len(lines) - 1
	if r.hasLeftover {
		lines[last] += r.leftover
	} else if lines[last] == "" {
		// newline that terminates the file
		lines = lines[:last]
	}

	if r.pos > 0 {
		r.leftover = lines[0]
		r.hasLeftover = true
		lines = lines[1:]
	} else {
		r.leftover = ""
		r.hasLeftover = false
	}

	r.lines = lines
	return nil
}
