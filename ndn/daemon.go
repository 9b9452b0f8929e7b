package ndn

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"time"

	"go.uber.org/zap"
)

// pollInterval bounds how long Run blocks waiting for a datagram before
// falling through to the idle branch and running EvictExpired. Spec.md §5
// requires eviction to make progress at least once per second when idle.
const pollInterval = time.Second

// Router is the daemon: it owns the PIT, the producer registry, and the
// transport adapter, and drives the single-threaded receive/produce/
// forward/respond loop. It is not safe for concurrent use; Run is meant to
// be the only goroutine touching it once started.
type Router struct {
	cfg      Config
	pit      *PIT
	registry *Registry
	peers    *PeerSet
	sock     socket
	logger   *zap.Logger

	mode      Mode
	localAddr netip.Addr
	port      uint16
}

// Begin initialises the UDP socket and routing state. It mirrors the
// reference's begin(mac) -> bool, with "DHCP succeeded" replaced by a local
// address that is either explicitly configured or auto-detected from the
// host's non-loopback IPv4 interfaces.
func Begin(ctx context.Context, cfg Config, logger *zap.Logger) (*Router, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLinkBringupFailed, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var mode Mode
	switch cfg.Mode {
	case "static-peers":
		mode = ModeStaticPeers
	default:
		mode = ModeBroadcast
	}

	local, err := resolveLocalAddr(cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLinkBringupFailed, err)
	}

	listenAt := netip.AddrPortFrom(netip.IPv4Unspecified(), cfg.Port)
	sock, err := listenUDP(listenAt, mode == ModeBroadcast)
	if err != nil {
		return nil, err
	}

	var peers *PeerSet
	if mode == ModeStaticPeers {
		peers = NewStaticPeerSet(sock, cfg.Port)
	} else {
		peers = NewPeerSet(sock, cfg.Port, broadcastAddrFor(local))
	}

	r := &Router{
		cfg:       cfg,
		pit:       NewPIT(cfg.PITSize, time.Duration(cfg.PITTTLMillis)*time.Millisecond),
		registry:  NewRegistry(),
		peers:     peers,
		sock:      sock,
		logger:    logger,
		mode:      mode,
		localAddr: local,
		port:      cfg.Port,
	}

	logger.Info("ndn daemon listening",
		zap.String("local_addr", local.String()),
		zap.Uint16("port", cfg.Port),
		zap.String("mode", cfg.Mode),
	)
	return r, nil
}

// AddPeers registers the static peer list. Static-peers mode only; may be
// called exactly once, after Begin.
func (r *Router) AddPeers(addrs []netip.Addr) error {
	return r.peers.AddPeers(addrs)
}

// Publish registers owned names and their producers. May be called exactly
// once, after Begin.
func (r *Router) Publish(names [][]byte, producers []Producer) error {
	return r.registry.Publish(names, producers)
}

// Stop releases the socket. Safe to call once after a corresponding Begin.
func (r *Router) Stop() error {
	return r.sock.Close()
}

// Run enters the daemon loop. It returns nil when ctx is cancelled, or a
// non-nil error on a fatal transport failure; per-datagram errors are
// logged and swallowed internally, never returned.
func (r *Router) Run(ctx context.Context) error {
	buf := make([]byte, r.cfg.UDPBufferSize)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := r.sock.SetReadDeadline(time.Now().Add(pollInterval)); err != nil {
			return fmt.Errorf("%w: %v", ErrSocketError, err)
		}

		n, src, err := r.sock.Recv(buf)
		if errors.Is(err, errRecvTimeout) {
			r.evict()
			continue
		}
		if err != nil {
			return err
		}

		r.handleDatagram(buf[:n], src)
		r.evict()
	}
}

func (r *Router) evict() {
	n := r.pit.EvictExpired(time.Now())
	if n > 0 {
		pitEvicted.Add(float64(n))
		r.logger.Debug("evicted expired PIT entries", zap.Int("count", n))
	}
	pitOccupancy.Set(float64(r.pit.Len()))
}

func (r *Router) handleDatagram(datagram []byte, src netip.AddrPort) {
	if len(datagram) > MaxDatagramSize {
		interestsDropped.WithLabelValues("oversize").Inc()
		r.logger.Debug("dropped oversize datagram", zap.Int("len", len(datagram)))
		return
	}

	var originator netip.Addr
	buf := datagram
	if r.mode == ModeStaticPeers {
		if len(buf) < originatorPrefixSize+1 {
			interestsDropped.WithLabelValues("malformed").Inc()
			return
		}
		originator = decodeOriginator(buf[:originatorPrefixSize])
		buf = buf[originatorPrefixSize:]
	} else {
		originator = src.Addr()
		if r.isLocalAddr(originator) {
			r.logger.Debug("dropped self-broadcast datagram", zap.String("addr", originator.String()))
			return
		}
	}

	if len(buf) < 1 {
		interestsDropped.WithLabelValues("malformed").Inc()
		return
	}

	kind := packetType(buf[0])
	body := buf[1:]
	switch kind {
	case typeInterest:
		r.handleInterest(body, originator)
	case typeData:
		r.handleData(body, originator)
	default:
		r.logger.Debug("dropped unknown packet type", zap.Uint8("type", uint8(kind)))
	}
}

func (r *Router) handleInterest(body []byte, originator netip.Addr) {
	interestsReceived.Inc()

	pkt, err := DecodeInterest(body)
	if err != nil {
		interestsDropped.WithLabelValues("malformed").Inc()
		r.logger.Debug("dropped malformed interest", zap.Error(err))
		return
	}

	if producer, ok := r.registry.Match(pkt.Name); ok {
		content, produced := producer(pkt.Name)
		if !produced || len(content) == 0 {
			interestsDropped.WithLabelValues("producer_failed").Inc()
			r.logger.Debug("producer failed, dropping interest", zap.ByteString("name", pkt.Name))
			return
		}
		producerMatches.Inc()
		data := Data{Name: pkt.Name, Content: content}
		if err := r.peers.SendData(data, originator, r.localAddr); err != nil {
			r.logger.Debug("send data failed", zap.Error(err))
		}
		return
	}

	if !r.pit.Insert(pkt.Name, pkt.Nonce, originator, time.Now()) {
		interestsDropped.WithLabelValues("pit_full_or_duplicate").Inc()
		r.logger.Debug("dropped interest: pit full or duplicate",
			zap.ByteString("name", pkt.Name), zap.Uint32("nonce", pkt.Nonce))
		return
	}

	interestsForwarded.Inc()
	if err := r.peers.SendInterest(pkt, r.localAddr); err != nil {
		r.logger.Debug("forwarding interest encountered a send error", zap.Error(err))
	}
}

func (r *Router) handleData(body []byte, originator netip.Addr) {
	dataReceived.Inc()

	pkt, err := DecodeData(body)
	if err != nil {
		r.logger.Debug("dropped malformed data", zap.Error(err))
		return
	}

	matched := false
	for {
		requester, ok := r.pit.LookupByName(pkt.Name)
		if !ok {
			break
		}
		matched = true
		if err := r.peers.SendData(pkt, requester, r.localAddr); err != nil {
			r.logger.Debug("forwarding data encountered a send error", zap.Error(err))
		}
		r.pit.Delete(pkt.Name)
		dataForwarded.Inc()
	}

	if !matched {
		dataUnmatched.Inc()
	}
}

func (r *Router) isLocalAddr(addr netip.Addr) bool {
	locals, err := r.sock.LocalAddrs()
	if err != nil {
		return addr == r.localAddr
	}
	for _, l := range locals {
		if l == addr {
			return true
		}
	}
	return false
}

func decodeOriginator(b []byte) netip.Addr {
	return netip.AddrFrom4([4]byte{b[0], b[1], b[2], b[3]})
}

func broadcastAddrFor(local netip.Addr) netip.Addr {
	// A /24 subnet broadcast is a reasonable default for the constrained
	// LAN segments this forwarder targets; operators on other prefix
	// lengths should configure static peers instead.
	a := local.As4()
	return netip.AddrFrom4([4]byte{a[0], a[1], a[2], 255})
}

func resolveLocalAddr(configured string) (netip.Addr, error) {
	if configured != "" {
		return netip.ParseAddr(configured)
	}
	addrs, err := (&udpSocket{}).LocalAddrs()
	if err != nil {
		return netip.Addr{}, err
	}
	for _, a := range addrs {
		if !a.IsLoopback() {
			return a, nil
		}
	}
	return netip.Addr{}, fmt.Errorf("no non-loopback IPv4 address found")
}
