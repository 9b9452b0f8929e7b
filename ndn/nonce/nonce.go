// Package nonce generates the 32-bit values an Interest-originating client
// stamps on its own requests. The forwarder core in package ndn never
// imports this package — nonces are a client concern, not a routing one,
// the same separation the reference implementation draws between
// sendInterest (caller-supplied nonce) and the routing table (nonce is
// opaque data to it).
package nonce

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator derives Interest nonces from a random per-process salt mixed
// with a monotonic counter, so that two Interests for the same name from
// the same client never collide in a peer's PIT even if issued within the
// same millisecond, while staying a single comparable uint32 on the wire.
type Generator struct {
	salt    uint32
	counter uint32
}

// NewGenerator seeds a Generator from a fresh random UUID.
func NewGenerator() *Generator {
	id := uuid.New()
	return &Generator{salt: binary.BigEndian.Uint32(id[:4])}
}

// Next returns the next nonce in sequence. Safe for concurrent use.
func (g *Generator) Next() uint32 {
	n := atomic.AddUint32(&g.counter, 1)
	return g.salt ^ n
}
