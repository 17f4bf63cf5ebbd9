package codec

// noopCodec passes data through unchanged. Useful for tests and for payload
// shapes that are already incompressible (e.g. a handful of values).
type noopCodec struct{}

var _ Codec = noopCodec{}

// NewNoopCodec returns a Codec that does not compress.
func NewNoopCodec() Codec {
	return noopCodec{}
}

func (noopCodec) Name() string { return "noop" }

func (noopCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (noopCodec) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
