package ndn

import "bytes"

// Producer synthesises content for a name this node owns. It returns the
// content and true on success; returning ok=false (or a nil/empty content
// slice) signals producer failure, and the caller must drop the Interest
// without forwarding it.
type Producer func(name []byte) (content []byte, ok bool)

type registryEntry struct {
	name     []byte
	producer Producer
}

// Registry is the write-once mapping from an owned Interest name to the
// producer that answers it. A second Publish call after the first fails
// silently, matching publishInterests' "this function can only be called
// once at startup" contract in the reference implementation.
type Registry struct {
	entries   []registryEntry
	published bool
}

// NewRegistry returns an empty, unpublished registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Publish registers names with their producers. It may be called exactly
// once; a later call returns ErrRegistryAlreadyPopulated and leaves the
// registry untouched.
func (r *Registry) Publish(names [][]byte, producers []Producer) error {
	if r.published {
		return ErrRegistryAlreadyPopulated
	}
	if len(names) != len(producers) {
		return ErrMalformedPacket
	}
	r.entries = make([]registryEntry, len(names))
	for i := range names {
		r.entries[i] = registryEntry{name: names[i], producer: producers[i]}
	}
	r.published = true
	return nil
}

// Match performs exact length-and-byte equality lookup and returns the
// first registered producer for name, breaking on first match per the
// reference's publishInterests loop — a name should never be registered
// twice, since a second registration would be unreachable.
func (r *Registry) Match(name []byte) (Producer, bool) {
	for _, e := range r.entries {
		if bytes.Equal(e.name, name) {
			return e.producer, true
		}
	}
	return nil, false
}
