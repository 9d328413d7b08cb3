package multipart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/iudanet/otagate/internal/httpwire"
)

// ChunkSize is the size of a single read from the body while streaming.
const ChunkSize = 1024

// State is the extraction state of an upload.
type State int

const (
	AwaitingBoundary State = iota
	InTargetHeaders
	StreamingPayload
	Terminated
)

func (s State) String() string {
	switch s {
	case AwaitingBoundary:
		return "awaiting_boundary"
	case InTargetHeaders:
		return "in_target_headers"
	case StreamingPayload:
		return "streaming_payload"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Source is a body reader usable both line by line and in chunks.
type Source interface {
	io.Reader
	io.ByteReader
}

// Extractor pulls one named field out of a multipart body.
type Extractor struct {
	src     Source
	lines   *httpwire.LineReader
	delim   string
	state   State
	err     error
	scanner *Scanner

	capture map[string]bool
	values  map[string]string
}

// NewExtractor creates an Extractor reading from src. delim is the part
// delimiter as returned by BoundaryFromContentType.
func NewExtractor(src Source, delim string, maxLine int) *Extractor {
	return &Extractor{
		src:   src,
		lines: httpwire.NewLineReader(src, maxLine),
		delim: delim,
		state: AwaitingBoundary,
	}
}

// State returns the current extraction state.
func (e *Extractor) State() State {
	return e.state
}

// Err returns the error that terminated extraction, nil on success or while running.
func (e *Extractor) Err() error {
	return e.err
}

// Received returns the number of payload-phase bytes read from the body.
func (e *Extractor) Received() int64 {
	if e.scanner == nil {
		return 0
	}
	return e.scanner.Received()
}

// Capture makes SeekField keep the values of the named fields met before the
// target field. Values are read line by line and are subject to the line limit.
func (e *Extractor) Capture(names ...string) {
	if e.capture == nil {
		e.capture = make(map[string]bool, len(names))
		e.values = make(map[string]string, len(names))
	}
	for _, name := range names {
		e.capture[name] = true
	}
}

// Value returns a captured field value.
func (e *Extractor) Value(name string) (string, bool) {
	v, ok := e.values[name]
	return v, ok
}

func (e *Extractor) fail(err error) error {
	e.state = Terminated
	e.err = err
	return err
}

// SeekField skips parts until the one named field and its headers.
// On success the extractor is positioned at the first payload byte.
func (e *Extractor) SeekField(field string) error {
	if e.state != AwaitingBoundary {
		return fmt.Errorf("seek field in state %s", e.state)
	}

	terminator := e.delim + "--"

	var (
		capturing string
		captured  []string
	)

	for {
		// AwaitingBoundary: тела игнорируемых частей могут содержать длинные строки
		line, err := e.lines.SkipLine()
		if err != nil {
			return e.fail(err)
		}
		if !strings.HasPrefix(line, e.delim) {
			if capturing != "" {
				captured = append(captured, line)
			}
			continue
		}
		if capturing != "" {
			e.values[capturing] = strings.Join(captured, "\n")
			capturing, captured = "", nil
		}
		if strings.HasPrefix(line, terminator) {
			return e.fail(ErrFieldNotFound)
		}

		disposition, err := e.lines.ReadLine()
		if err != nil {
			return e.fail(err)
		}

		name := partName(disposition)
		target := name == field
		if target {
			e.state = InTargetHeaders
		} else if e.capture[name] {
			capturing = name
		}

		// пропускаем оставшиеся заголовки части до пустой строки
		for disposition != "" {
			disposition, err = e.lines.ReadLine()
			if err != nil {
				return e.fail(err)
			}
		}

		if target {
			e.state = StreamingPayload
			return nil
		}
	}
}

// partName returns the name parameter of a Content-Disposition header line.
func partName(disposition string) string {
	_, params, ok := strings.Cut(disposition, ";")
	if !ok {
		return ""
	}
	for _, param := range strings.Split(params, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if ok && strings.EqualFold(key, "name") {
			return strings.Trim(value, `"`)
		}
	}
	return ""
}

// Stream copies the field payload to w until the closing boundary. It returns
// the number of payload bytes written. The closing boundary itself is never
// written.
func (e *Extractor) Stream(ctx context.Context, w io.Writer) (int64, error) {
	if e.state != StreamingPayload {
		return 0, fmt.Errorf("stream in state %s", e.state)
	}

	e.scanner = NewScanner(Marker(e.delim))
	chunk := make([]byte, ChunkSize)
	out := make([]byte, 0, ChunkSize+len(e.delim)+2)
	var written int64

	for {
		if err := ctx.Err(); err != nil {
			return written, e.fail(err)
		}

		n, readErr := e.src.Read(chunk)

		var res Result
		out, res = e.scanner.Feed(out[:0], chunk[:n])
		if len(out) > 0 {
			m, err := w.Write(out)
			written += int64(m)
			if err != nil {
				return written, e.fail(err)
			}
			if m != len(out) {
				return written, e.fail(io.ErrShortWrite)
			}
		}

		if res.State == Matched {
			e.state = Terminated
			return written, nil
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF) {
				return written, e.fail(ErrTruncated)
			}
			return written, e.fail(readErr)
		}
	}
}
