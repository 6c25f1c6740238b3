package hostent

import (
	"unsafe"

	"github.com/hostwire/hostarc/pkg/arena"
)

const ptrSize = unsafe.Sizeof(uintptr(0))

// Hostent mirrors the C hostent structure. The header is populated by
// Marshal; every pointer it carries resolves into the arena region the
// record was marshalled into.
//
// https://ftp.gnu.org/old-gnu/Manuals/glibc-2.2.3/html_chapter/libc_16.html#SEC318
type Hostent struct {
	Name     *byte
	Aliases  **byte
	AddrType int32
	Length   int32
	AddrList **byte
}

// Marshal writes the record into buf and fills out. Layout, in write
// order: name bytes, alias pointer array followed by the alias bytes,
// address pointer array followed by the raw address spans. Both arrays
// end in a zeroed sentinel slot. Arena failures (capacity, embedded
// NUL) propagate as panics; a partially written region may remain, but
// no pointer outside it is ever produced.
func (h Host) Marshal(out *Hostent, buf *arena.Writer) {
	out.Name = buf.WriteString(h.Name)
	out.Aliases = buf.WriteStringList(h.Aliases)

	family := FamilyV4
	if h.Addrs != nil {
		family = h.Addrs.Family()
	}
	width := family.AddrWidth()
	out.AddrType = int32(family)
	out.Length = int32(width)

	var spans [][]byte
	if h.Addrs != nil {
		spans = make([][]byte, h.Addrs.Len())
		for i := range spans {
			spans[i] = h.Addrs.At(i)
		}
	}
	out.AddrList = buf.WriteBytesList(spans, uintptr(width))
}

// MarshalSize returns the exact number of arena bytes Marshal needs for
// the record. Callers sizing scratch buffers use the maximum over their
// records.
func (h Host) MarshalSize() uintptr {
	size := uintptr(len(h.Name)) + 1
	size += ptrSize * uintptr(len(h.Aliases)+1)
	for _, a := range h.Aliases {
		size += uintptr(len(a)) + 1
	}
	n := 0
	width := 0
	if h.Addrs != nil {
		n = h.Addrs.Len()
		width = h.Addrs.Family().AddrWidth()
	}
	size += ptrSize * uintptr(n+1)
	size += uintptr(n * width)
	return size
}
