package converter

import (
	"fmt"

	"golang.org/x/text/transform"
)

// crState is the one byte of look-behind the transducer carries.
type crState uint8

const (
	// stateClean: the previous byte was not a CR.
	stateClean crState = iota
	// stateCRPending: the previous byte was a CR. In LineEndingLF mode that CR has
	// not been written yet; the next byte decides whether it was half of a CRLF.
	stateCRPending
)

// machine is the tab/whitespace/line-ending transducer. Every step writes at
// most one byte before committing its state, so the machine can resume after
// running out of destination space at any point.
type machine struct {
	width int
	mode  LineEndingMode
	trim  bool

	column int // visual column modulo width
	cr     crState
	keep   int // bytes of the current whitespace run already probed and kept
}

func newMachine(cfg Config) machine {
	return machine{
		width: cfg.TabWidth,
		mode:  cfg.LineEnding,
		trim:  cfg.TrimTrailingWhitespace,
	}
}

func (m *machine) reset() {
	m.column = 0
	m.cr = stateClean
	m.keep = 0
}

// withholdsCR reports whether a CR has been read but not yet written.
func (m *machine) withholdsCR() bool {
	return m.cr == stateCRPending && m.mode == LineEndingLF
}

// transform follows the transform.Transformer contract. It returns
// transform.ErrShortDst when dst is full and transform.ErrShortSrc when more
// input is needed to decide whether a whitespace run is trailing.
func (m *machine) transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if m.trim && m.keep == 0 && (c == ' ' || c == '\t') {
			n, verdict := probeTrailingWhitespace(src[nSrc:], m.mode, atEOF)
			switch verdict {
			case probeElide:
				nSrc += n
				continue
			case probeNeedMore:
				return nDst, nSrc, transform.ErrShortSrc
			case probeKeep:
				m.keep = n
			}
		}

		var n int
		var done bool
		switch c {
		case '\t':
			n, done = m.tab(dst[nDst:])
		case '\n':
			n, done = m.lineFeed(dst[nDst:])
		default:
			n, done = m.literal(dst[nDst:], c)
		}
		nDst += n
		if !done {
			return nDst, nSrc, transform.ErrShortDst
		}
		nSrc++
		if m.keep > 0 {
			m.keep--
		}
	}

	// End of input is an implicit non-LF byte: a withheld CR was a lone CR.
	if atEOF && m.withholdsCR() {
		if nDst == len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		dst[nDst] = '\r'
		nDst++
		m.cr = stateClean
	}
	return nDst, nSrc, nil
}

// tab pads to the next tab stop. A partially written tab leaves column advanced
// and is finished on the next call.
func (m *machine) tab(dst []byte) (int, bool) {
	n := 0
	if m.withholdsCR() {
		if len(dst) == 0 {
			return 0, false
		}
		dst[0] = '\r'
		n = 1
	}
	m.cr = stateClean
	for m.column < m.width {
		if n == len(dst) {
			return n, false
		}
		dst[n] = ' '
		n++
		m.column++
	}
	m.column = 0
	return n, true
}

// lineFeed writes an LF, inserting a CR first in CRLF mode. A withheld CR is
// dropped, collapsing CRLF to LF.
func (m *machine) lineFeed(dst []byte) (int, bool) {
	n := 0
	if m.mode == LineEndingCRLF && m.cr == stateClean {
		if len(dst) == 0 {
			return 0, false
		}
		dst[0] = '\r'
		n = 1
		m.cr = stateCRPending
	}
	if n == len(dst) {
		return n, false
	}
	dst[n] = '\n'
	n++
	m.column = 0
	m.cr = stateClean
	return n, true
}

// literal copies any other byte. CR and NUL are zero width.
func (m *machine) literal(dst []byte, c byte) (int, bool) {
	n := 0
	if m.withholdsCR() {
		if len(dst) == 0 {
			return 0, false
		}
		dst[0] = '\r'
		n = 1
		m.cr = stateClean
	}

	if c == '\r' {
		if m.mode != LineEndingLF {
			if n == len(dst) {
				return n, false
			}
			dst[n] = c
			n++
		}
		m.cr = stateCRPending
		return n, true
	}

	if n == len(dst) {
		return n, false
	}
	dst[n] = c
	n++
	m.cr = stateClean
	if c != 0 {
		m.column++
		if m.column == m.width {
			m.column = 0
		}
	}
	return n, true
}

// Transform expands tabs, normalizes line endings and trims trailing whitespace
// of input according to cfg. It returns a new slice exactly as long as the
// transformed content. The only configuration error is ErrInvalidConfiguration,
// returned before any work is done.
func Transform(input []byte, cfg Config) ([]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	capacity, err := EstimateOutputSize(input, cfg.TabWidth)
	if err != nil {
		return nil, err
	}

	output := make([]byte, capacity)
	m := newMachine(cfg)
	written, _, err := m.transform(output, input, true)
	if err != nil {
		return nil, fmt.Errorf("%w: capacity %d, written %d", ErrEstimateExceeded, capacity, written)
	}
	return output[:written:written], nil
}
