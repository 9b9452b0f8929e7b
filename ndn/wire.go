/*
 * ndnd, a small Named Data Networking forwarder and producer for
 * constrained UDP links.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

package ndn

import (
	"encoding/binary"
	"fmt"
)

// packetType is the one-byte tag that opens every datagram.
type packetType uint8

const (
	typeInterest packetType = 0x01
	typeData     packetType = 0x02
)

const (
	// headerSizeInterest is the Interest header size in broadcast framing:
	// type(1) + nonce(4) + name_len(2).
	headerSizeInterest = 7
	// headerSizeData is the Data header size in broadcast framing:
	// type(1) + name_len(2) + content_len(4).
	headerSizeData = 7
	// originatorPrefixSize is the extra originator-IPv4 prefix carried in
	// static-peers framing, ahead of the type tag.
	originatorPrefixSize = 4
	// MaxDatagramSize is the largest NDN datagram this forwarder will
	// produce or accept; anything longer is truncated by the transport
	// and must be rejected as malformed.
	MaxDatagramSize = 256
)

// Interest is a request for named content.
type Interest struct {
	Nonce uint32
	Name  []byte
}

// Data is a response carrying the named content.
type Data struct {
	Name    []byte
	Content []byte
}

// EncodeInterest serialises pkt in broadcast framing: type || nonce ||
// name_len || name. Callers in static-peers mode prepend the 4-byte
// originator IPv4 themselves (see transport.go) since the prefix is a
// transport concern, not a codec one.
func EncodeInterest(pkt Interest) ([]byte, error) {
	if len(pkt.Name) == 0 {
		return nil, fmt.Errorf("%w: empty interest name", ErrMalformedPacket)
	}
	if headerSizeInterest+len(pkt.Name) > MaxDatagramSize {
		return nil, fmt.Errorf("%w: interest name too long", ErrMalformedPacket)
	}

	buf := make([]byte, headerSizeInterest+len(pkt.Name))
	buf[0] = byte(typeInterest)
	binary.BigEndian.PutUint32(buf[1:5], pkt.Nonce)
	binary.BigEndian.PutUint16(buf[5:7], uint16(len(pkt.Name)))
	copy(buf[7:], pkt.Name)
	return buf, nil
}

// DecodeInterest parses the bytes following the type tag (and, in
// static-peers mode, following the originator prefix already stripped by
// the transport layer) into an Interest.
func DecodeInterest(body []byte) (Interest, error) {
	const fixed = headerSizeInterest - 1 // nonce + name_len, type already consumed
	if len(body) < fixed {
		return Interest{}, fmt.Errorf("%w: interest shorter than header", ErrMalformedPacket)
	}

	nonce := binary.BigEndian.Uint32(body[0:4])
	nameLen := int(binary.BigEndian.Uint16(body[4:6]))
	if nameLen == 0 {
		return Interest{}, fmt.Errorf("%w: zero-length interest name", ErrMalformedPacket)
	}
	if fixed+nameLen > len(body) {
		return Interest{}, fmt.Errorf("%w: interest name exceeds payload", ErrMalformedPacket)
	}

	name := make([]byte, nameLen)
	copy(name, body[fixed:fixed+nameLen])
	return Interest{Nonce: nonce, Name: name}, nil
}

// EncodeData serialises pkt in broadcast framing: type || name_len ||
// content_len || name || content.
func EncodeData(pkt Data) ([]byte, error) {
	if len(pkt.Name) == 0 {
		return nil, fmt.Errorf("%w: empty data name", ErrMalformedPacket)
	}
	total := headerSizeData + len(pkt.Name) + len(pkt.Content)
	if total > MaxDatagramSize {
		return nil, fmt.Errorf("%w: data packet too large", ErrMalformedPacket)
	}

	buf := make([]byte, total)
	buf[0] = byte(typeData)
	binary.BigEndian.PutUint16(buf[1:3], uint16(len(pkt.Name)))
	binary.BigEndian.PutUint32(buf[3:7], uint32(len(pkt.Content)))
	n := copy(buf[7:], pkt.Name)
	copy(buf[7+n:], pkt.Content)
	return buf, nil
}

// DecodeData parses the bytes following the type tag (and stripped
// originator prefix, if any) into a Data packet.
func DecodeData(body []byte) (Data, error) {
	const fixed = headerSizeData - 1 // name_len + content_len, type already consumed
	if len(body) < fixed {
		return Data{}, fmt.Errorf("%w: data shorter than header", ErrMalformedPacket)
	}

	nameLen := int(binary.BigEndian.Uint16(body[0:2]))
	contentLen := int(binary.BigEndian.Uint32(body[2:6]))
	if nameLen == 0 {
		return Data{}, fmt.Errorf("%w: zero-length data name", ErrMalformedPacket)
	}
	if fixed+nameLen+contentLen > len(body) {
		return Data{}, fmt.Errorf("%w: data payload exceeds buffer", ErrMalformedPacket)
	}

	name := make([]byte, nameLen)
	copy(name, body[fixed:fixed+nameLen])
	content := make([]byte, contentLen)
	copy(content, body[fixed+nameLen:fixed+nameLen+contentLen])
	return Data{Name: name, Content: content}, nil
}

// encodeOriginator returns the 4-byte network-order IPv4 prefix prepended
// in static-peers framing.
func encodeOriginator(addr [4]byte) []byte {
	return []byte{addr[0], addr[1], addr[2], addr[3]}
}
