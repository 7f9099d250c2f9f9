package converter

import "golang.org/x/text/transform"

// Transformer is the streaming form of Transform, usable with transform.NewReader
// and transform.NewWriter. Trimming needs to see a whole whitespace run at once,
// so a run longer than the caller's source buffer yields transform.ErrShortSrc.
type Transformer struct {
	m machine
}

var _ transform.Transformer = (*Transformer)(nil)

// NewTransformer validates cfg and returns a Transformer positioned at the start of a file.
func NewTransformer(cfg Config) (*Transformer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Transformer{m: newMachine(cfg)}, nil
}

// Transform implements transform.Transformer.
func (t *Transformer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	return t.m.transform(dst, src, atEOF)
}

// Reset implements transform.Transformer.
func (t *Transformer) Reset() {
	t.m.reset()
}
