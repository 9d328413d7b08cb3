package multipart

// ScanState is the state of a Scanner.
type ScanState int

const (
	// Searching means the marker has not been seen yet
	Searching ScanState = iota
	// Matched means the marker ended inside the last fed chunk
	Matched
)

func (s ScanState) String() string {
	switch s {
	case Searching:
		return "searching"
	case Matched:
		return "matched"
	default:
		return "unknown"
	}
}

// Result describes the outcome of feeding one chunk.
type Result struct {
	State ScanState
	// End is the offset in the chunk one past the last marker byte.
	// Valid only when State is Matched.
	End int
}

// Scanner finds a marker in a byte stream fed in arbitrary chunks.
//
// It keeps the most recent len(marker) bytes in a ring buffer. A byte that is
// pushed out of the full window can no longer start a match, so it is
// released as payload. Bytes still inside the window are provisional.
type Scanner struct {
	marker   []byte
	window   []byte
	head     int // индекс самого старого байта в окне
	size     int
	state    ScanState
	received int64
	emitted  int64
}

// NewScanner creates a Scanner for marker. marker must not be empty.
func NewScanner(marker []byte) *Scanner {
	m := make([]byte, len(marker))
	copy(m, marker)
	return &Scanner{
		marker: m,
		window: make([]byte, len(m)),
	}
}

// State returns the current state.
func (s *Scanner) State() ScanState {
	return s.state
}

// Received returns the number of bytes consumed so far, marker bytes included.
func (s *Scanner) Received() int64 {
	return s.received
}

// emittedBytes returns the number of bytes released as payload so far.
func (s *Scanner) emittedBytes() int64 {
	return s.emitted
}

// pendingBytes returns the number of provisional bytes held in the window.
func (s *Scanner) pendingBytes() int {
	return s.size
}

// Feed consumes chunk and appends confirmed payload bytes to dst.
// Once the marker is matched, Feed stops consuming and later calls are no-ops;
// Result.End tells how much of the chunk was consumed.
func (s *Scanner) Feed(dst, chunk []byte) ([]byte, Result) {
	if s.state == Matched {
		return dst, Result{State: Matched}
	}

	last := s.marker[len(s.marker)-1]
	for i, c := range chunk {
		s.received++

		if s.size == len(s.window) {
			dst = append(dst, s.window[s.head])
			s.emitted++
			s.window[s.head] = c
			s.head = (s.head + 1) % len(s.window)
		} else {
			s.window[(s.head+s.size)%len(s.window)] = c
			s.size++
		}

		if c == last && s.size == len(s.window) && s.matches() {
			s.state = Matched
			s.size = 0
			return dst, Result{State: Matched, End: i + 1}
		}
	}

	return dst, Result{State: Searching}
}

func (s *Scanner) matches() bool {
	n := len(s.window)
	for i := 0; i < n; i++ {
		if s.window[(s.head+i)%n] != s.marker[i] {
			return false
		}
	}
	return true
}
