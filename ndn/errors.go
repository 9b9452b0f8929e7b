package ndn

import "errors"

// Error kinds surfaced by the core. Per-datagram errors (everything below
// ErrSocketError) are recovered locally by the daemon loop: it logs at
// debug level and drops the offending datagram. The host program sees
// ErrLinkBringupFailed from Begin, ErrRegistryAlreadyPopulated from a
// second Publish (and ErrMalformedPacket when names and producers differ
// in length), and ErrSocketError from Run on a fatal transport failure.
var (
	ErrLinkBringupFailed        = errors.New("ndn: link/socket bringup failed")
	ErrSocketError              = errors.New("ndn: socket error")
	ErrMalformedPacket          = errors.New("ndn: malformed packet")
	ErrPITFull                  = errors.New("ndn: routing table full")
	ErrDuplicateInterest        = errors.New("ndn: duplicate interest")
	ErrUnknownPacketType        = errors.New("ndn: unknown packet type")
	ErrProducerFailed           = errors.New("ndn: producer failed to produce content")
	ErrRegistryAlreadyPopulated = errors.New("ndn: producer registry already published")
)
