package frame

// FCS-16 (RFC 1662, CRC-16/X-25): reflected polynomial 0x8408, initial
// value 0xFFFF, complemented on output, transmitted low byte first.
const (
	fcsInit   uint16 = 0xFFFF
	fcsPoly   uint16 = 0x8408
	fcsResult uint16 = 0xFFFF
)

var fcsTable = makeFCSTable()

func makeFCSTable() [256]uint16 {
	var t [256]uint16
	for i := range t {
		v := uint16(i)
		for bit := 0; bit < 8; bit++ {
			if v&1 != 0 {
				v = (v >> 1) ^ fcsPoly
			} else {
				v >>= 1
			}
		}
		t[i] = v
	}
	return t
}

// Checksum returns the frame check sequence for an unescaped payload.
func Checksum(payload []byte) uint16 {
	fcs := fcsInit
	for _, b := range payload {
		fcs = (fcs >> 8) ^ fcsTable[byte(fcs)^b]
	}
	return fcs ^ fcsResult
}
