// internal/session/walker.go
package session

import (
	"strings"

	"github.com/dorontal/scrapelog/internal/logline"
	"github.com/dorontal/scrapelog/internal/revreader"
)

// Directive prefixes written by the scrapers at process start and exit.
const (
	StartDirective = "START"
	EndDirective   = "END"
)

type state int

const (
	notStarted state = iota
	started
	ended
)

// Walker yields the lines of the most recent session, newest first,
// checking the session boundaries as it goes. The first line returned is
// the END line; the last is the START line.
type Walker struct {
	path  string
	lines *revreader.Reader
	state state
	read  int
	err   error
}

// Open starts a walk over the log file at path.
func Open(path string, opts ...revreader.Option) (*Walker, error) {
	r, err := revreader.Open(path, opts...)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	return &Walker{path: path, lines: r}, nil
}

// Next returns the next session line. ok is false once the START line has
// been returned. Errors are sticky and release the file.
func (w *Walker) Next() (line logline.Line, ok bool, err error) {
	if w.err != nil {
		return logline.Line{}, false, w.err
	}
	if w.state == ended {
		return logline.Line{}, false, nil
	}

	raw, ok, err := w.lines.Next()
	if err != nil {
		return w.fail(0, err)
	}
	if !ok {
		if w.state == notStarted {
			return w.fail(0, ErrMissingEnd)
		}
		return w.fail(0, ErrMissingStart)
	}
	w.read++

	line, err = logline.Parse(raw)
	if err != nil {
		return w.fail(w.read, err)
	}

	switch w.state {
	case notStarted:
		if !strings.HasPrefix(line.Message, EndDirective) {
			return w.fail(w.read, ErrMissingEnd)
		}
		w.state = started
	case started:
		if strings.HasPrefix(line.Message, EndDirective) {
			return w.fail(w.read, ErrDuplicateEnd)
		}
		if strings.HasPrefix(line.Message, StartDirective) {
			w.state = ended
			w.lines.Close()
		}
	}
	return line, true, nil
}

// Close releases the underlying file. It is safe to call more than once.
func (w *Walker) Close() error {
	return w.lines.Close()
}

func (w *Walker) fail(line int, err error) (logline.Line, bool, error) {
	w.err = &Error{Path: w.path, Line: line, Err: err}
	w.lines.Close()
	return logline.Line{}, false, w.err
}
