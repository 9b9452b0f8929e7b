package ndn

import (
	"crypto/subtle"
	"net/netip"
	"time"

	"golang.org/x/crypto/blake2b"
)

// DefaultPITSize, DefaultPITHashSize and DefaultPITTTL mirror the defaults
// from the reference implementation's NDN_ROUTING_TABLE_SIZE,
// NDN_ROUTING_HASH_SIZE and NDN_ROUTING_TTL constants.
const (
	DefaultPITSize     = 10
	DefaultPITHashSize = 16
	DefaultPITTTL      = 5000 * time.Millisecond
)

// pitEntry is one slot of the fixed-size routing table. Fields on a free
// slot are undefined and must not be read.
type pitEntry struct {
	free      bool
	nonce     uint32
	nameHash  [DefaultPITHashSize]byte
	requester netip.Addr
	timestamp time.Time
}

// PIT is the fixed-capacity pending-interest table: a hashed-name index of
// outstanding forwarded Interests, recording who to send the matching Data
// back to. It is not safe for concurrent use — the daemon loop is its only
// caller and owns it exclusively, the same single-threaded contract the
// reference implementation relies on.
type PIT struct {
	ttl     time.Duration
	entries []pitEntry
	// size is one past the highest-ever-used slot index still in the live
	// region; freeIndex is the slot the next Insert writes: a free slot
	// below size, or size itself. Insert resets it to the lowest free slot;
	// Delete and EvictExpired point it at the slot they freed.
	size      int
	freeIndex int
}

// NewPIT allocates a PIT with the given slot capacity and eviction TTL.
func NewPIT(capacity int, ttl time.Duration) *PIT {
	if capacity <= 0 {
		capacity = DefaultPITSize
	}
	if ttl <= 0 {
		ttl = DefaultPITTTL
	}
	entries := make([]pitEntry, capacity)
	for i := range entries {
		entries[i].free = true
	}
	return &PIT{ttl: ttl, entries: entries}
}

// Len reports the number of live entries.
func (p *PIT) Len() int {
	n := 0
	for i := 0; i < p.size; i++ {
		if !p.entries[i].free {
			n++
		}
	}
	return n
}

func hashName(name []byte) [DefaultPITHashSize]byte {
	var out [DefaultPITHashSize]byte
	h, err := blake2b.New(DefaultPITHashSize, nil)
	if err != nil {
		// blake2b.New only fails for an out-of-range size, and
		// DefaultPITHashSize (16) is always valid.
		panic(err)
	}
	h.Write(name)
	copy(out[:], h.Sum(nil))
	return out
}

func hashEqual(a, b [DefaultPITHashSize]byte) bool {
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}

// Contains reports whether a live entry already exists for (name, nonce) —
// the duplicate-Interest-suppression check.
func (p *PIT) Contains(name []byte, nonce uint32) bool {
	h := hashName(name)
	for i := 0; i < p.size; i++ {
		e := &p.entries[i]
		if !e.free && e.nonce == nonce && hashEqual(e.nameHash, h) {
			return true
		}
	}
	return false
}

// Insert records a newly forwarded Interest's requester. It fails if the
// table is full or if (name, nonce) already has a live entry.
func (p *PIT) Insert(name []byte, nonce uint32, requester netip.Addr, now time.Time) bool {
	if p.freeIndex == p.size && p.size == len(p.entries) {
		return false
	}
	if p.Contains(name, nonce) {
		return false
	}

	idx := p.freeIndex
	p.entries[idx] = pitEntry{
		free:      false,
		nonce:     nonce,
		nameHash:  hashName(name),
		requester: requester,
		timestamp: now,
	}

	// The write grew the live region only if it landed exactly on the old
	// boundary (free_index == size); a gap-fill never changes size.
	if idx == p.size {
		p.size++
	}

	// Recompute free_index: lowest free slot below the (possibly new)
	// size, else size itself.
	newFree := p.size
	for i := 0; i < p.size; i++ {
		if p.entries[i].free {
			newFree = i
			break
		}
	}
	p.freeIndex = newFree
	return true
}

// LookupByName returns the lowest-index live entry whose name hash matches
// name; nonce is not considered, since Data packets carry no nonce. The
// caller must treat the returned requester as a snapshot — the slot may be
// reused by a later Insert.
func (p *PIT) LookupByName(name []byte) (requester netip.Addr, ok bool) {
	h := hashName(name)
	for i := 0; i < p.size; i++ {
		e := &p.entries[i]
		if !e.free && hashEqual(e.nameHash, h) {
			return e.requester, true
		}
	}
	return netip.Addr{}, false
}

// Delete removes the first live entry matching name's hash. It is a no-op
// if no such entry exists.
func (p *PIT) Delete(name []byte) {
	h := hashName(name)
	for i := 0; i < p.size; i++ {
		e := &p.entries[i]
		if !e.free && hashEqual(e.nameHash, h) {
			e.free = true
			p.freeIndex = i
			if i == p.size-1 {
				p.size--
			}
			return
		}
	}
}

// EvictExpired marks as free every live entry whose age exceeds the TTL,
// scanning high-to-low as the reference's dropExpiredInterest does. Unlike
// the reference (which can leave a live slot at or above the shrunk size,
// a latent bug), size is reduced to the index of the highest still-live
// slot plus one, preserving the invariant that every slot at index ≥ size
// is free. An entry aged exactly TTL is not evicted — only age > TTL is.
// It returns the number of entries evicted, for callers that want to track
// eviction activity (e.g. metrics); this is purely observational and does
// not affect the eviction semantics themselves.
func (p *PIT) EvictExpired(now time.Time) int {
	if p.size == 0 {
		return 0
	}
	evicted := 0
	highestLive := -1
	for i := p.size - 1; i >= 0; i-- {
		e := &p.entries[i]
		if e.free {
			continue
		}
		if now.Sub(e.timestamp) > p.ttl {
			e.free = true
			p.freeIndex = i
			evicted++
			continue
		}
		if highestLive == -1 {
			highestLive = i
		}
	}
	p.size = highestLive + 1
	// freeIndex may point at a slot that is now beyond the shrunk size;
	// pull it back so the next Insert lands inside the live region.
	if p.freeIndex > p.size {
		p.freeIndex = p.size
	}
	return evicted
}
