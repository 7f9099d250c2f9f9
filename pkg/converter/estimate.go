package converter

import (
	"bytes"
	"fmt"
	"math"
)

// OutputBound returns an upper bound on the transformed length of an input of
// inputLen bytes holding tabCount tabs and lfCount line feeds: every tab may grow
// to tabWidth spaces and every LF may gain a CR. The bound holds for every valid
// configuration. ok is false if the bound does not fit in an int.
func OutputBound(inputLen, tabCount, lfCount, tabWidth int) (bound int, ok bool) {
	if tabCount > 0 && tabWidth > (math.MaxInt-inputLen)/tabCount {
		return 0, false
	}
	bound = inputLen + tabCount*tabWidth
	if lfCount > math.MaxInt-bound {
		return 0, false
	}
	return bound + lfCount, true
}

// EstimateOutputSize counts the tabs and line feeds of input and returns
// OutputBound for them, or ErrOutputTooLarge.
func EstimateOutputSize(input []byte, tabWidth int) (int, error) {
	tabs := bytes.Count(input, []byte{'\t'})
	lfs := bytes.Count(input, []byte{'\n'})
	bound, ok := OutputBound(len(input), tabs, lfs, tabWidth)
	if !ok {
		return 0, fmt.Errorf("%w: %d bytes with %d tabs at width %d", ErrOutputTooLarge, len(input), tabs, tabWidth)
	}
	return bound, nil
}
