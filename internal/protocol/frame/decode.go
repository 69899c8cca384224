package frame

// ErrorReason classifies a dropped frame.
type ErrorReason string

const (
	ReasonChecksum ErrorReason = "checksum"
	ReasonAborted  ErrorReason = "aborted"
	ReasonShort    ErrorReason = "short"
	ReasonOverflow ErrorReason = "overflow"
)

// Stats counts decoder outcomes since construction or the last Reset.
type Stats struct {
	Frames   uint64 `json:"frames"`
	Errors   uint64 `json:"errors"`
	Checksum uint64 `json:"checksum"`
	Aborted  uint64 `json:"aborted"`
	Short    uint64 `json:"short"`
	Overflow uint64 `json:"overflow"`
}

// Decoder recovers payloads from a byte stream with no message boundaries.
//
// A Decoder holds per-link state across arbitrary chunk boundaries and must
// be driven by a single reader. Corrupt or malformed frames are counted and
// dropped; Feed never fails.
type Decoder struct {
	limits Limits

	acc      []byte
	escape   bool
	overflow bool
	stats    Stats

	// OnError, when set, observes every dropped frame.
	OnError func(reason ErrorReason)
}

func NewDecoder(limits Limits) *Decoder {
	return &Decoder{limits: limits}
}

// Feed consumes one chunk and returns the payloads of every frame it
// completed, in arrival order. Returned slices are owned by the caller.
func (d *Decoder) Feed(chunk []byte) [][]byte {
	var out [][]byte
	for _, b := range chunk {
		switch {
		case b == Flag:
			if payload, ok := d.finish(); ok {
				out = append(out, payload)
			}
		case d.overflow:
			// discard until the next boundary
		case b == Escape:
			d.escape = true
		default:
			if d.escape {
				b ^= EscapeXOR
				d.escape = false
			}
			d.acc = append(d.acc, b)
			if d.limits.MaxPayloadBytes > 0 && len(d.acc) > d.limits.MaxPayloadBytes+ChecksumLen {
				d.overflow = true
				d.acc = d.acc[:0]
				d.escape = false
			}
		}
	}
	return out
}

func (d *Decoder) finish() ([]byte, bool) {
	defer d.resetFrame()

	switch {
	case d.overflow:
		d.fail(ReasonOverflow)
		return nil, false
	case d.escape:
		d.fail(ReasonAborted)
		return nil, false
	case len(d.acc) == 0:
		return nil, false
	case len(d.acc) < ChecksumLen:
		d.fail(ReasonShort)
		return nil, false
	}

	n := len(d.acc) - ChecksumLen
	body := d.acc[:n]
	got := uint16(d.acc[n]) | uint16(d.acc[n+1])<<8
	if Checksum(body) != got {
		d.fail(ReasonChecksum)
		return nil, false
	}

	payload := make([]byte, n)
	copy(payload, body)
	d.stats.Frames++
	return payload, true
}

func (d *Decoder) fail(reason ErrorReason) {
	d.stats.Errors++
	switch reason {
	case ReasonChecksum:
		d.stats.Checksum++
	case ReasonAborted:
		d.stats.Aborted++
	case ReasonShort:
		d.stats.Short++
	case ReasonOverflow:
		d.stats.Overflow++
	}
	if d.OnError != nil {
		d.OnError(reason)
	}
}

func (d *Decoder) resetFrame() {
	d.acc = d.acc[:0]
	d.escape = false
	d.overflow = false
}

// Reset drops any partial frame and zeroes the counters.
func (d *Decoder) Reset() {
	d.resetFrame()
	d.stats = Stats{}
}

func (d *Decoder) Stats() Stats {
	return d.stats
}

// Pending reports how many unframed bytes are buffered.
func (d *Decoder) Pending() int {
	return len(d.acc)
}
