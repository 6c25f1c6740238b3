// Package hostent models directory host records and renders them into
// the C-compatible hostent layout expected by foreign callers.
package hostent

import (
	"net"
	"syscall"
)

// Family is an address family tag using the platform socket constants.
type Family int32

const (
	FamilyUnspec Family = syscall.AF_UNSPEC
	FamilyV4     Family = syscall.AF_INET
	FamilyV6     Family = syscall.AF_INET6
)

// AddrWidth returns the fixed per-address byte width for the family, or
// 0 for any family without one.
func (f Family) AddrWidth() int {
	switch f {
	case FamilyV4:
		return net.IPv4len
	case FamilyV6:
		return net.IPv6len
	default:
		return 0
	}
}

func (f Family) String() string {
	switch f {
	case FamilyV4:
		return "inet"
	case FamilyV6:
		return "inet6"
	case FamilyUnspec:
		return "unspec"
	default:
		return "unknown"
	}
}

// AddrList is the closed single-family address variant of a host
// record: a record holds either V4List or V6List, never a mix. The
// family tag and per-address width always agree with the payload.
type AddrList interface {
	Family() Family
	Len() int
	// At returns the raw fixed-width bytes of address i.
	At(i int) []byte
}

// V4List is an ordered list of IPv4 addresses.
type V4List [][4]byte

func (V4List) Family() Family    { return FamilyV4 }
func (l V4List) Len() int        { return len(l) }
func (l V4List) At(i int) []byte { return l[i][:] }

// V6List is an ordered list of IPv6 addresses.
type V6List [][16]byte

func (V6List) Family() Family    { return FamilyV6 }
func (l V6List) Len() int        { return len(l) }
func (l V6List) At(i int) []byte { return l[i][:] }

// Host is one directory entry: a primary name, its aliases in
// insertion order, and a single-family address list.
type Host struct {
	Name    string
	Aliases []string
	Addrs   AddrList
}

// IPs returns the record's addresses as net.IP values.
func (h Host) IPs() []net.IP {
	if h.Addrs == nil {
		return nil
	}
	ips := make([]net.IP, h.Addrs.Len())
	for i := range ips {
		ip := make(net.IP, len(h.Addrs.At(i)))
		copy(ip, h.Addrs.At(i))
		ips[i] = ip
	}
	return ips
}

// AddrsFromIPs builds the single-family address list for family out of
// ips, dropping addresses of the other family. ok is false when no
// address matched.
func AddrsFromIPs(family Family, ips []net.IP) (AddrList, bool) {
	switch family {
	case FamilyV4:
		var l V4List
		for _, ip := range ips {
			if v4 := ip.To4(); v4 != nil {
				l = append(l, [4]byte(v4))
			}
		}
		return l, len(l) > 0
	case FamilyV6:
		var l V6List
		for _, ip := range ips {
			if ip.To4() == nil && len(ip) == net.IPv6len {
				l = append(l, [16]byte(ip))
			}
		}
		return l, len(l) > 0
	default:
		return nil, false
	}
}
