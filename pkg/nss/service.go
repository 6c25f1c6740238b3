package nss

import (
	"errors"
	"net"
	"unicode/utf8"
	"unsafe"

	"github.com/hostwire/hostarc/pkg/arena"
	"github.com/hostwire/hostarc/pkg/hostent"
	"github.com/hostwire/hostarc/pkg/source"
	"github.com/hostwire/hostarc/pkg/synq"
)

// hostsDB is the logical database the enumeration protocol scans.
const hostsDB = "hosts"

// Service binds one lookup source to the hosts-database protocol. A
// single Service is shared across every foreign call site; the only
// cross-call state it holds is the per-database enumeration cursor,
// which is keyed by database name rather than declared one static per
// operation set.
//
// Marshalling operations take the caller's scratch region as a raw
// base pointer and length. The region is bound to an arena writer for
// the duration of one call and never retained.
type Service struct {
	src     source.HostSource
	cursors *synq.Map[string, *synq.Cursor[hostent.Host]]
}

func NewService(src source.HostSource) *Service {
	return &Service{
		src:     src,
		cursors: synq.NewMap[string, *synq.Cursor[hostent.Host]](),
	}
}

func (s *Service) cursor(db string) *synq.Cursor[hostent.Host] {
	c, _ := s.cursors.LoadOrInsert(db, synq.NewCursor[hostent.Host]())
	return c
}

// SetHostEnt loads the full record set into the shared cursor,
// beginning a sequential scan.
func (s *Service) SetHostEnt() Status {
	hosts, err := s.src.AllHosts()
	if err != nil {
		return statusFromErr(err)
	}
	s.cursor(hostsDB).Open(hosts)
	return StatusSuccess
}

// GetHostEnt pops the next pending record and marshals it into the
// caller's buffer. NotFound signals exhaustion; the cursor stays open
// until EndHostEnt.
func (s *Service) GetHostEnt(out *hostent.Hostent, buf unsafe.Pointer, buflen uintptr) Status {
	h, ok := s.cursor(hostsDB).Next()
	if !ok {
		return StatusNotFound
	}
	return marshal(h, out, buf, buflen)
}

// EndHostEnt closes the scan and discards any pending records.
func (s *Service) EndHostEnt() Status {
	s.cursor(hostsDB).Close()
	return StatusSuccess
}

// GetHostByName resolves name with no family preference: IPv4 first,
// then IPv6.
func (s *Service) GetHostByName(name string, out *hostent.Hostent, buf unsafe.Pointer, buflen uintptr) Status {
	return s.GetHostByName2(name, hostent.FamilyUnspec, out, buf, buflen)
}

// GetHostByName2 resolves name within the given address family.
func (s *Service) GetHostByName2(name string, family hostent.Family, out *hostent.Hostent, buf unsafe.Pointer, buflen uintptr) Status {
	h, st := s.LookupName(name, family)
	if st != StatusSuccess {
		return st
	}
	return marshal(h, out, buf, buflen)
}

// GetHostByAddr resolves a raw address of the given family. The
// address length must match the family's fixed width.
func (s *Service) GetHostByAddr(raw []byte, family hostent.Family, out *hostent.Hostent, buf unsafe.Pointer, buflen uintptr) Status {
	h, st := s.LookupAddr(raw, family)
	if st != StatusSuccess {
		return st
	}
	return marshal(h, out, buf, buflen)
}

// AllHosts returns the full record set without touching the shared
// enumeration cursor. Used by callers that manage their own iteration,
// such as the wire server.
func (s *Service) AllHosts() ([]hostent.Host, Status) {
	hosts, err := s.src.AllHosts()
	if err != nil {
		return nil, statusFromErr(err)
	}
	return hosts, StatusSuccess
}

// LookupName is the lookup half of GetHostByName2, without the
// marshalling: family dispatch, the unspecified-family fallback, and
// input name validation.
func (s *Service) LookupName(name string, family hostent.Family) (hostent.Host, Status) {
	if !utf8.ValidString(name) {
		return hostent.Host{}, StatusNotFound
	}

	var (
		h   hostent.Host
		ok  bool
		err error
	)
	switch family {
	case hostent.FamilyV4, hostent.FamilyV6:
		h, ok, err = s.src.HostByName(name, family)
	case hostent.FamilyUnspec:
		h, ok, err = s.src.HostByName(name, hostent.FamilyV4)
		if err == nil && !ok {
			h, ok, err = s.src.HostByName(name, hostent.FamilyV6)
		}
	default:
		return hostent.Host{}, StatusReturn
	}

	if err != nil {
		return hostent.Host{}, statusFromErr(err)
	}
	if !ok {
		return hostent.Host{}, StatusNotFound
	}
	return h, StatusSuccess
}

// LookupAddr is the lookup half of GetHostByAddr. A length that
// disagrees with the family's width is data-dependent misuse, not a
// contract violation, and resolves to NotFound.
func (s *Service) LookupAddr(raw []byte, family hostent.Family) (hostent.Host, Status) {
	width := family.AddrWidth()
	if width == 0 || len(raw) != width {
		return hostent.Host{}, StatusNotFound
	}

	ip := make(net.IP, len(raw))
	copy(ip, raw)

	h, ok, err := s.src.HostByAddr(ip)
	if err != nil {
		return hostent.Host{}, statusFromErr(err)
	}
	if !ok {
		return hostent.Host{}, StatusNotFound
	}
	return h, StatusSuccess
}

func marshal(h hostent.Host, out *hostent.Hostent, buf unsafe.Pointer, buflen uintptr) Status {
	w := arena.NewWriter(buf, buflen)
	w.Clear()
	h.Marshal(out, w)
	return StatusSuccess
}

func statusFromErr(err error) Status {
	if errors.Is(err, source.ErrTryAgain) {
		return StatusTryAgain
	}
	return StatusUnavail
}
