package codec

import "encoding/binary"

// encodeDeltaOfDelta writes vals as: first value raw varint, second value
// zigzag-delta from the first, every later value zigzag-delta-of-delta from
// its predecessor pair. Grounded on the delta-of-delta algorithm described
// for arloliu-mebo's timestamp encoder: regular intervals collapse to a
// single byte per value once the series settles into a constant delta.
func encodeDeltaOfDelta(vals []int64) []byte {
	if len(vals) == 0 {
		return nil
	}

	buf := make([]byte, 0, len(vals)*2)
	var tmp [binary.MaxVarintLen64]byte

	var prev, prevDelta int64
	for i, v := range vals {
		var toEncode int64
		switch i {
		case 0:
			n := binary.PutUvarint(tmp[:], uint64(v))
			buf = append(buf, tmp[:n]...)
			prev = v
			continue
		case 1:
			toEncode = v - prev
			prevDelta = toEncode
		default:
			delta := v - prev
			toEncode = delta - prevDelta
			prevDelta = delta
		}
		prev = v

		zz := zigzagEncode(toEncode)
		n := binary.PutUvarint(tmp[:], zz)
		buf = append(buf, tmp[:n]...)
	}
	return buf
}

// decodeDeltaOfDelta inverts encodeDeltaOfDelta. count must equal the number
// of values originally encoded.
func decodeDeltaOfDelta(blob []byte, count int) ([]int64, error) {
	if count == 0 {
		return nil, nil
	}

	out := make([]int64, count)
	rest := blob

	first, n := binary.Uvarint(rest)
	if n <= 0 {
		return nil, errTruncated
	}
	rest = rest[n:]
	out[0] = int64(first)

	if count == 1 {
		return out, nil
	}

	var prev, prevDelta int64
	prev = out[0]
	for i := 1; i < count; i++ {
		zz, n := binary.Uvarint(rest)
		if n <= 0 {
			return nil, errTruncated
		}
		rest = rest[n:]
		v := zigzagDecode(zz)

		var delta int64
		if i == 1 {
			delta = v
		} else {
			delta = v + prevDelta
		}
		prevDelta = delta
		cur := prev + delta
		out[i] = cur
		prev = cur
	}
	return out, nil
}

func zigzagEncode(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func zigzagDecode(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}
