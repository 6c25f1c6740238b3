// Package server exposes lookups over a local unix socket so thin
// foreign shims and tooling can delegate resolution to one process.
// The wire format is a minimal fixed-header binary protocol; the
// C-layout marshalling always happens on the caller's side of the
// socket, in the caller's buffer.
package server

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hostwire/hostarc/pkg/hostent"
	"github.com/hostwire/hostarc/pkg/nss"
)

var ErrMalformed = errors.New("malformed wire message")

type Op uint8

const (
	OpLookupName Op = 1
	OpLookupAddr Op = 2
	OpEnumerate  Op = 3
)

func (o Op) String() string {
	switch o {
	case OpLookupName:
		return "lookup_name"
	case OpLookupAddr:
		return "lookup_addr"
	case OpEnumerate:
		return "enumerate"
	default:
		return "unknown"
	}
}

// Request: op(1) family(2) payload-len(2) payload. The payload is the
// queried name for OpLookupName, the raw fixed-width address for
// OpLookupAddr, and empty for OpEnumerate. All integers big endian.
type Request struct {
	Op      Op
	Family  hostent.Family
	Payload []byte
}

// Response: status(1, two's complement) count(2) then count encoded
// records.
type Response struct {
	Status nss.Status
	Hosts  []hostent.Host
}

const requestHeaderSize = 5

func EncodeRequest(r Request) []byte {
	buf := make([]byte, requestHeaderSize, requestHeaderSize+len(r.Payload))
	buf[0] = byte(r.Op)
	binary.BigEndian.PutUint16(buf[1:3], uint16(r.Family))
	binary.BigEndian.PutUint16(buf[3:5], uint16(len(r.Payload)))
	return append(buf, r.Payload...)
}

func ReadRequest(r io.Reader) (Request, error) {
	var hdr [requestHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Request{}, err
	}

	req := Request{
		Op:     Op(hdr[0]),
		Family: hostent.Family(binary.BigEndian.Uint16(hdr[1:3])),
	}

	n := binary.BigEndian.Uint16(hdr[3:5])
	if n > 0 {
		req.Payload = make([]byte, n)
		if _, err := io.ReadFull(r, req.Payload); err != nil {
			return Request{}, fmt.Errorf("%w: truncated payload: %w", ErrMalformed, err)
		}
	}
	return req, nil
}

func WriteResponse(w io.Writer, resp Response) error {
	buf := []byte{byte(int8(resp.Status))}
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(resp.Hosts)))
	for _, h := range resp.Hosts {
		buf = appendHost(buf, h)
	}
	_, err := w.Write(buf)
	return err
}

func ReadResponse(r io.Reader) (Response, error) {
	var hdr [3]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Response{}, err
	}

	resp := Response{Status: nss.Status(int8(hdr[0]))}
	count := binary.BigEndian.Uint16(hdr[1:3])
	for range count {
		h, err := readHost(r)
		if err != nil {
			return Response{}, err
		}
		resp.Hosts = append(resp.Hosts, h)
	}
	return resp, nil
}

// appendHost encodes one record: name-len(2) name, alias-count(2)
// {len(2) bytes}..., family(2), width(1), addr-count(2), then the raw
// address spans at the declared width.
func appendHost(buf []byte, h hostent.Host) []byte {
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(h.Name)))
	buf = append(buf, h.Name...)

	buf = binary.BigEndian.AppendUint16(buf, uint16(len(h.Aliases)))
	for _, a := range h.Aliases {
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(a)))
		buf = append(buf, a...)
	}

	family := hostent.FamilyV4
	if h.Addrs != nil {
		family = h.Addrs.Family()
	}
	width := family.AddrWidth()

	buf = binary.BigEndian.AppendUint16(buf, uint16(family))
	buf = append(buf, byte(width))

	n := 0
	if h.Addrs != nil {
		n = h.Addrs.Len()
	}
	buf = binary.BigEndian.AppendUint16(buf, uint16(n))
	for i := 0; i < n; i++ {
		buf = append(buf, h.Addrs.At(i)...)
	}
	return buf
}

func readHost(r io.Reader) (hostent.Host, error) {
	name, err := readString(r)
	if err != nil {
		return hostent.Host{}, err
	}
	h := hostent.Host{Name: name}

	aliasCount, err := readUint16(r)
	if err != nil {
		return hostent.Host{}, err
	}
	for range aliasCount {
		a, err := readString(r)
		if err != nil {
			return hostent.Host{}, err
		}
		h.Aliases = append(h.Aliases, a)
	}

	familyRaw, err := readUint16(r)
	if err != nil {
		return hostent.Host{}, err
	}
	var widthByte [1]byte
	if _, err := io.ReadFull(r, widthByte[:]); err != nil {
		return hostent.Host{}, err
	}
	addrCount, err := readUint16(r)
	if err != nil {
		return hostent.Host{}, err
	}

	family := hostent.Family(familyRaw)
	width := int(widthByte[0])
	if width != family.AddrWidth() {
		return hostent.Host{}, fmt.Errorf("%w: width %d disagrees with family %s", ErrMalformed, width, family)
	}

	raw := make([]byte, int(addrCount)*width)
	if _, err := io.ReadFull(r, raw); err != nil {
		return hostent.Host{}, fmt.Errorf("%w: truncated addresses: %w", ErrMalformed, err)
	}

	switch family {
	case hostent.FamilyV4:
		l := make(hostent.V4List, addrCount)
		for i := range l {
			l[i] = [4]byte(raw[i*4 : i*4+4])
		}
		h.Addrs = l
	case hostent.FamilyV6:
		l := make(hostent.V6List, addrCount)
		for i := range l {
			l[i] = [16]byte(raw[i*16 : i*16+16])
		}
		h.Addrs = l
	default:
		if addrCount > 0 {
			return hostent.Host{}, fmt.Errorf("%w: addresses with family %d", ErrMalformed, familyRaw)
		}
	}
	return h, nil
}

func readUint16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func readString(r io.Reader) (string, error) {
	n, err := readUint16(r)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", fmt.Errorf("%w: truncated string: %w", ErrMalformed, err)
	}
	return string(b), nil
}
