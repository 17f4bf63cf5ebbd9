// Package codec implements the compression pipeline (C4): per-Kind numeric
// encode/decode pairs layered over a pluggable entropy-coding backend.
//
// Integers and timestamps go through a zigzag delta-of-delta pre-transform
// before entropy coding; floats and the bool-carrier uint16 stream go
// straight to the backend. The backend itself never sees field semantics —
// it only ever compresses and decompresses an opaque byte blob.
package codec

import "errors"

// ErrCodec marks a failure inside the compression pipeline: a backend
// rejecting malformed input, a truncated varint stream, or a decode call
// receiving a blob that was never produced by the matching Encode call.
var ErrCodec = errors.New("codec: compression pipeline failure")

// Codec is the pluggable entropy-coding backend. Implementations compress
// and decompress opaque byte blobs; they carry no knowledge of the wire
// formats layered on top in this package.
type Codec interface {
	Name() string
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}
