package converter

// probeVerdict is the outcome of a trailing-whitespace probe.
type probeVerdict int

const (
	// probeKeep: the run is not followed by a line terminator and is written out.
	probeKeep probeVerdict = iota
	// probeElide: the run ends at a line terminator and is dropped.
	probeElide
	// probeNeedMore: the source ended inside the run before end of input.
	probeNeedMore
)

// probeTrailingWhitespace inspects the run of spaces, tabs and CRs starting at
// src[0], which must be a space or a tab.
//
// With probeElide, n is the number of bytes to drop: up to the LF, or up to the
// CR directly before it in LineEndingIgnore mode so that an existing CRLF is
// kept as found. With probeKeep, n is the offset of the first byte that is
// known not to start an elidable run (the blocking byte, or len(src) at end of
// input); none of src[:n] can be trimmed.
func probeTrailingWhitespace(src []byte, mode LineEndingMode, atEOF bool) (n int, verdict probeVerdict) {
	afterCR := false
	for i, c := range src {
		switch c {
		case ' ', '\t':
			afterCR = false
		case '\r':
			afterCR = true
		case '\n':
			if afterCR && mode == LineEndingIgnore {
				return i - 1, probeElide
			}
			return i, probeElide
		default:
			return i, probeKeep
		}
	}
	if atEOF {
		return len(src), probeKeep
	}
	return 0, probeNeedMore
}
