package codec

import "github.com/klauspost/compress/s2"

// s2Codec wraps klauspost/compress/s2, a fast Snappy-compatible codec well
// suited to the varint streams codec.Encode* produces.
type s2Codec struct{}

var _ Codec = s2Codec{}

// NewS2Codec returns a Codec backed by S2.
func NewS2Codec() Codec {
	return s2Codec{}
}

func (s2Codec) Name() string { return "s2" }

func (s2Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return s2.Encode(nil, data), nil
}

func (s2Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return s2.Decode(nil, data)
}
