// Package link moves encoded grid payloads over a byte-oriented link.
//
// Ownership boundary:
// - Driver adapters (serial port, in-memory loopback)
// - rate-limited transmit path with reconnect backoff
// - polling receive path feeding a frame.Decoder
//
// Link failures are reported to the caller and never retried by Send.
// Reconnection happens lazily on the next Send when an Opener is set.
package link
