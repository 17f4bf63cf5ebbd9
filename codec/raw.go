package codec

import (
	"encoding/binary"
	"math"
)

// encodeFloat64Raw writes vals as little-endian IEEE-754 float64, grounded
// on arloliu-mebo's NumericRawEncoder (native-binary, no transform).
func encodeFloat64Raw(vals []float64) []byte {
	buf := make([]byte, len(vals)*8)
	for i, v := range vals {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

func decodeFloat64Raw(blob []byte, count int) ([]float64, error) {
	if count == 0 {
		return nil, nil
	}
	if len(blob) != count*8 {
		return nil, errTruncated
	}
	out := make([]float64, count)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return out, nil
}

func encodeFloat32Raw(vals []float32) []byte {
	buf := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeFloat32Raw(blob []byte, count int) ([]float32, error) {
	if count == 0 {
		return nil, nil
	}
	if len(blob) != count*4 {
		return nil, errTruncated
	}
	out := make([]float32, count)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return out, nil
}

func encodeUint16Raw(vals []uint16) []byte {
	buf := make([]byte, len(vals)*2)
	for i, v := range vals {
		binary.LittleEndian.PutUint16(buf[i*2:], v)
	}
	return buf
}

func decodeUint16Raw(blob []byte, count int) ([]uint16, error) {
	if count == 0 {
		return nil, nil
	}
	if len(blob) != count*2 {
		return nil, errTruncated
	}
	out := make([]uint16, count)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(blob[i*2:])
	}
	return out, nil
}
