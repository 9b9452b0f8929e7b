package ndn

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// errRecvTimeout is returned by socket.Recv when a read deadline set via
// SetReadDeadline elapses with no datagram pending. It is not a fatal
// transport error; Run treats it as the signal to run idle-path eviction.
var errRecvTimeout = errors.New("ndn: recv timeout")

// Mode selects how Interests are fanned out to other nodes.
type Mode int

const (
	// ModeBroadcast sends one broadcast datagram per Interest and relies
	// on the UDP source address for reverse-path routing.
	ModeBroadcast Mode = iota
	// ModeStaticPeers unicasts one datagram per configured peer, with the
	// originator IPv4 prefixed on the wire so peers can route Data back.
	ModeStaticPeers
)

// socket is the minimal UDP surface the transport adapter needs; udpSocket
// below provides the real implementation, a fake backs the daemon tests.
type socket interface {
	SendTo(addr netip.AddrPort, b []byte) error
	Recv(buf []byte) (n int, src netip.AddrPort, err error)
	SetReadDeadline(t time.Time) error
	LocalAddrs() ([]netip.Addr, error)
	Close() error
}

// udpSocket is the production socket, a thin wrapper over *net.UDPConn with
// SO_BROADCAST enabled for broadcast mode, mirroring the Ethernet shield's
// implicit broadcast support in the reference implementation.
type udpSocket struct {
	conn *net.UDPConn
}

func listenUDP(listenAddr netip.AddrPort, broadcast bool) (*udpSocket, error) {
	conn, err := net.ListenUDP("udp4", net.UDPAddrFromAddrPort(listenAddr))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLinkBringupFailed, err)
	}
	if broadcast {
		if err := enableBroadcast(conn); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%w: SO_BROADCAST: %v", ErrLinkBringupFailed, err)
		}
	}
	return &udpSocket{conn: conn}, nil
}

func enableBroadcast(conn *net.UDPConn) error {
	rawConn, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	ctrlErr := rawConn.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
	})
	if ctrlErr != nil {
		return ctrlErr
	}
	return sockErr
}

func (s *udpSocket) SendTo(addr netip.AddrPort, b []byte) error {
	_, err := s.conn.WriteToUDPAddrPort(b, addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSocketError, err)
	}
	return nil
}

func (s *udpSocket) Recv(buf []byte) (int, netip.AddrPort, error) {
	n, src, err := s.conn.ReadFromUDPAddrPort(buf)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return 0, netip.AddrPort{}, errRecvTimeout
		}
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return 0, netip.AddrPort{}, errRecvTimeout
		}
		return 0, netip.AddrPort{}, fmt.Errorf("%w: %v", ErrSocketError, err)
	}
	return n, src, nil
}

// SetReadDeadline bounds the next Recv call, the idiom net.Conn offers for
// turning a blocking read into a pollable one so the daemon loop can run
// idle-path eviction on a fixed cadence even with no traffic arriving.
func (s *udpSocket) SetReadDeadline(t time.Time) error {
	return s.conn.SetReadDeadline(t)
}

func (s *udpSocket) LocalAddrs() ([]netip.Addr, error) {
	ifaceAddrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, err
	}
	var out []netip.Addr
	for _, a := range ifaceAddrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if addr, ok := netip.AddrFromSlice(ipNet.IP.To4()); ok {
			out = append(out, addr)
		}
	}
	return out, nil
}

func (s *udpSocket) Close() error {
	return s.conn.Close()
}

// PeerSet fans Interests out to other nodes, either by unicasting to a
// fixed peer list (static-peers mode, "simulated multicast" in spec terms)
// or by broadcasting once to the subnet (broadcast mode).
type PeerSet struct {
	mode          Mode
	port          uint16
	peers         []netip.Addr
	broadcastAddr netip.Addr
	sock          socket
}

// NewPeerSet constructs a peer set for broadcast mode.
func NewPeerSet(sock socket, port uint16, broadcastAddr netip.Addr) *PeerSet {
	return &PeerSet{mode: ModeBroadcast, port: port, broadcastAddr: broadcastAddr, sock: sock}
}

// NewStaticPeerSet constructs a peer set for static-peers mode.
func NewStaticPeerSet(sock socket, port uint16) *PeerSet {
	return &PeerSet{mode: ModeStaticPeers, port: port, sock: sock}
}

// AddPeers registers the static peer list. It may be called exactly once,
// after Begin, mirroring addNDNNodes in the reference implementation.
func (ps *PeerSet) AddPeers(peers []netip.Addr) error {
	if ps.mode != ModeStaticPeers {
		return fmt.Errorf("AddPeers is only valid in static-peers mode")
	}
	if len(ps.peers) > 0 {
		return fmt.Errorf("peers already registered")
	}
	ps.peers = append(ps.peers, peers...)
	return nil
}

// SendInterest fans pkt out per the selected mode: one unicast datagram per
// static peer (framed with the originator prefix), or a single broadcast
// datagram (framed without it, since the UDP source suffices). localAddr
// is this node's own address — the prefix tells each peer who to address
// any Data reply to, one hop at a time, not the ultimate requester.
func (ps *PeerSet) SendInterest(pkt Interest, localAddr netip.Addr) error {
	body, err := EncodeInterest(pkt)
	if err != nil {
		return err
	}

	switch ps.mode {
	case ModeStaticPeers:
		a4 := localAddr.As4()
		framed := append(encodeOriginator(a4), body...)
		var lastErr error
		for _, peer := range ps.peers {
			addr := netip.AddrPortFrom(peer, ps.port)
			if err := ps.sock.SendTo(addr, framed); err != nil {
				// Continue with remaining peers; not retried, per spec.
				lastErr = err
			}
		}
		return lastErr
	default:
		addr := netip.AddrPortFrom(ps.broadcastAddr, ps.port)
		return ps.sock.SendTo(addr, body)
	}
}

// SendData unicasts a Data packet to dest, framed per the selected mode.
func (ps *PeerSet) SendData(pkt Data, dest netip.Addr, localAddr netip.Addr) error {
	body, err := EncodeData(pkt)
	if err != nil {
		return err
	}
	if ps.mode == ModeStaticPeers {
		a4 := localAddr.As4()
		body = append(encodeOriginator(a4), body...)
	}
	addr := netip.AddrPortFrom(dest, ps.port)
	return ps.sock.SendTo(addr, body)
}
