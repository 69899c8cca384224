// Package frame owns the serial link framing contract.
//
// Ownership boundary:
// - HDLC-style byte stuffing (FLAG 0x7E, ESCAPE 0x7D, XOR 0x20)
// - FCS-16 frame check sequence
// - streaming decoder state and drop accounting
//
// Wire layout:
//
//	FLAG | escaped payload | escaped FCS (2 bytes, low first) | FLAG
package frame
