package codec

// BoolsToUint16 widens a bool column to the u16 carrier EncodeUint16
// expects, per I4: true -> 1, false -> 0.
func BoolsToUint16(vals []bool) []uint16 {
	out := make([]uint16, len(vals))
	for i, v := range vals {
		if v {
			out[i] = 1
		}
	}
	return out
}

// Uint16ToBools narrows a decoded u16 carrier back to bool, per I4: nonzero
// decodes to true, zero to false.
func Uint16ToBools(vals []uint16) []bool {
	out := make([]bool, len(vals))
	for i, v := range vals {
		out[i] = v != 0
	}
	return out
}
