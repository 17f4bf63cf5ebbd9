// Per-Kind numeric encode/decode pairs (C4). Each wire blob begins with a
// varint element count so Decode* never needs the caller to pass it back
// in, followed by the Kind-specific payload, the whole thing then run
// through the configured entropy Codec. An empty input encodes to a
// zero-length blob and a zero-length blob decodes to a zero-length slice,
// per spec.md's I1.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var errTruncated = errors.New("codec: truncated or corrupt payload")

func encodeFrame(count int, payload []byte, c Codec) ([]byte, error) {
	if count == 0 {
		return nil, nil
	}
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], uint64(count))

	framed := make([]byte, 0, n+len(payload))
	framed = append(framed, tmp[:n]...)
	framed = append(framed, payload...)

	out, err := c.Compress(framed)
	if err != nil {
		return nil, fmt.Errorf("%w: %s compress: %v", ErrCodec, c.Name(), err)
	}
	return out, nil
}

// decodeFrame decompresses blob and splits off the leading varint count,
// returning the count and the remaining Kind-specific payload.
func decodeFrame(blob []byte, c Codec) (int, []byte, error) {
	if len(blob) == 0 {
		return 0, nil, nil
	}
	framed, err := c.Decompress(blob)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %s decompress: %v", ErrCodec, c.Name(), err)
	}
	count, n := binary.Uvarint(framed)
	if n <= 0 {
		return 0, nil, fmt.Errorf("%w: %v", ErrCodec, errTruncated)
	}
	return int(count), framed[n:], nil
}

// EncodeInt64 applies zigzag delta-of-delta then entropy-codes the result.
func EncodeInt64(vals []int64, c Codec) ([]byte, error) {
	return encodeFrame(len(vals), encodeDeltaOfDelta(vals), c)
}

// DecodeInt64 inverts EncodeInt64.
func DecodeInt64(blob []byte, c Codec) ([]int64, error) {
	count, payload, err := decodeFrame(blob, c)
	if err != nil {
		return nil, err
	}
	out, err := decodeDeltaOfDelta(payload, count)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCodec, err)
	}
	return out, nil
}

// EncodeTimestamp is EncodeInt64 specialised to microsecond timestamps; the
// wire format is identical, the distinct name documents intent at call
// sites per spec.md §4.3.
func EncodeTimestamp(vals []int64, c Codec) ([]byte, error) {
	return EncodeInt64(vals, c)
}

// DecodeTimestamp inverts EncodeTimestamp.
func DecodeTimestamp(blob []byte, c Codec) ([]int64, error) {
	return DecodeInt64(blob, c)
}

// EncodeFloat64Raw writes native IEEE-754 bytes, used when FloatRound==0.
func EncodeFloat64Raw(vals []float64, c Codec) ([]byte, error) {
	return encodeFrame(len(vals), encodeFloat64Raw(vals), c)
}

// DecodeFloat64Raw inverts EncodeFloat64Raw.
func DecodeFloat64Raw(blob []byte, c Codec) ([]float64, error) {
	count, payload, err := decodeFrame(blob, c)
	if err != nil {
		return nil, err
	}
	out, err := decodeFloat64Raw(payload, count)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCodec, err)
	}
	return out, nil
}

// EncodeFloat32Raw writes native IEEE-754 bytes.
func EncodeFloat32Raw(vals []float32, c Codec) ([]byte, error) {
	return encodeFrame(len(vals), encodeFloat32Raw(vals), c)
}

// DecodeFloat32Raw inverts EncodeFloat32Raw.
func DecodeFloat32Raw(blob []byte, c Codec) ([]float32, error) {
	count, payload, err := decodeFrame(blob, c)
	if err != nil {
		return nil, err
	}
	out, err := decodeFloat32Raw(payload, count)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCodec, err)
	}
	return out, nil
}

// EncodeUint16 carries boolean columns per I4: each bool widens to one
// full little-endian uint16 (0 or 1), and that uint16 stream is stored raw.
func EncodeUint16(vals []uint16, c Codec) ([]byte, error) {
	return encodeFrame(len(vals), encodeUint16Raw(vals), c)
}

// DecodeUint16 inverts EncodeUint16.
func DecodeUint16(blob []byte, c Codec) ([]uint16, error) {
	count, payload, err := decodeFrame(blob, c)
	if err != nil {
		return nil, err
	}
	out, err := decodeUint16Raw(payload, count)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCodec, err)
	}
	return out, nil
}
