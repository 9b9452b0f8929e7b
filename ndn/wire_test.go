package ndn

import (
	"bytes"
	"errors"
	"testing"
)

func byteSliceEqual(a, b []byte) bool {
	return bytes.Equal(a, b)
}

func TestEncodeInterest(t *testing.T) {
	pkt := Interest{Nonce: 0xDEADBEEF, Name: []byte("temp")}
	got, err := EncodeInterest(pkt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0x01, 0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x04, 't', 'e', 'm', 'p'}
	if !byteSliceEqual(got, want) {
		t.Fatalf("EncodeInterest: got %x, want %x", got, want)
	}
}

func TestEncodeData(t *testing.T) {
	pkt := Data{Name: []byte("light"), Content: []byte("ON")}
	got, err := EncodeData(pkt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0x02, 0x00, 0x05, 0x00, 0x00, 0x00, 0x02, 'l', 'i', 'g', 'h', 't', 'O', 'N'}
	if !byteSliceEqual(got, want) {
		t.Fatalf("EncodeData: got %x, want %x", got, want)
	}
}

func TestInterestRoundTrip(t *testing.T) {
	cases := []Interest{
		{Nonce: 1, Name: []byte("a")},
		{Nonce: 0xFFFFFFFF, Name: []byte("light-switch/kitchen")},
		{Nonce: 0, Name: bytes.Repeat([]byte{0xAA}, MaxDatagramSize-headerSizeInterest)},
	}
	for _, want := range cases {
		wire, err := EncodeInterest(want)
		if err != nil {
			t.Fatalf("encode failed: %v", err)
		}
		got, err := DecodeInterest(wire[1:]) // strip type tag, as the daemon would
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if got.Nonce != want.Nonce || !byteSliceEqual(got.Name, want.Name) {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
		}
	}
}

func TestDataRoundTrip(t *testing.T) {
	cases := []Data{
		{Name: []byte("door"), Content: []byte("OPEN")},
		{Name: []byte("x"), Content: nil}, // zero-length content is valid
	}
	for _, want := range cases {
		wire, err := EncodeData(want)
		if err != nil {
			t.Fatalf("encode failed: %v", err)
		}
		got, err := DecodeData(wire[1:])
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if !byteSliceEqual(got.Name, want.Name) || !byteSliceEqual(got.Content, want.Content) {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
		}
	}
}

func TestDecodeInterestMalformedShort(t *testing.T) {
	_, err := DecodeInterest([]byte{0x00, 0x00, 0x00})
	if !errors.Is(err, ErrMalformedPacket) {
		t.Fatalf("expected ErrMalformedPacket, got %v", err)
	}
}

func TestDecodeInterestZeroLengthNameIsMalformed(t *testing.T) {
	// nonce=1, name_len=0, no name bytes
	body := []byte{0x00, 0x00, 0x00, 0x01, 0x00, 0x00}
	_, err := DecodeInterest(body)
	if !errors.Is(err, ErrMalformedPacket) {
		t.Fatalf("expected ErrMalformedPacket for name_len=0, got %v", err)
	}
}

func TestDecodeInterestNameExceedsPayload(t *testing.T) {
	// name_len claims 10 bytes but only 2 are present
	body := []byte{0x00, 0x00, 0x00, 0x01, 0x00, 0x0A, 'h', 'i'}
	_, err := DecodeInterest(body)
	if !errors.Is(err, ErrMalformedPacket) {
		t.Fatalf("expected ErrMalformedPacket, got %v", err)
	}
}

func TestDecodeDataZeroLengthContentIsValid(t *testing.T) {
	body := []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 'x'}
	got, err := DecodeData(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Content) != 0 {
		t.Fatalf("expected zero-length content, got %d bytes", len(got.Content))
	}
}

func TestEncodeInterestRejectsEmptyName(t *testing.T) {
	_, err := EncodeInterest(Interest{Nonce: 1, Name: nil})
	if !errors.Is(err, ErrMalformedPacket) {
		t.Fatalf("expected ErrMalformedPacket for empty name, got %v", err)
	}
}

func TestEncodeInterestRejectsOversizeDatagram(t *testing.T) {
	_, err := EncodeInterest(Interest{Nonce: 1, Name: bytes.Repeat([]byte{0x01}, MaxDatagramSize)})
	if !errors.Is(err, ErrMalformedPacket) {
		t.Fatalf("expected ErrMalformedPacket for oversize datagram, got %v", err)
	}
}
