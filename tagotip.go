// Package tagotip provides a pure Go implementation of the TagoTiP protocol codec.
//
// It supports parsing and building uplink frames (PUSH, PULL, PING) and
// ACK (downlink) frames, with no CGo. Its one dependency outside the
// standard library is golang.org/x/crypto/chacha20poly1305.
package tagotip
