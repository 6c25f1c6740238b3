// Package arena implements a forward-only bump allocator over a
// caller-owned memory region. It is the only package that performs raw
// pointer arithmetic; everything above it deals in owned Go values and
// receives pointers into the region as opaque results.
//
// The region is borrowed for the duration of a single marshalling pass
// and is entirely overwritten on each pass. There is no deallocation and
// no rewrite of earlier spans. Capacity exhaustion and embedded NUL
// bytes are caller contract violations and panic rather than returning
// an error: the calling convention guarantees buffers pre-sized for the
// largest record.
package arena

import (
	"fmt"
	"strings"
	"unsafe"
)

const ptrSize = unsafe.Sizeof(uintptr(0))

// Writer tracks a write cursor and the remaining capacity of a fixed
// byte region supplied by the caller. It never retains the region past
// the marshalling call it was created for.
type Writer struct {
	start unsafe.Pointer
	pos   unsafe.Pointer
	free  uintptr
	size  uintptr
}

// NewWriter binds a writer to the region [base, base+size).
func NewWriter(base unsafe.Pointer, size uintptr) *Writer {
	return &Writer{
		start: base,
		pos:   base,
		free:  size,
		size:  size,
	}
}

// Clear zeroes the entire region. It does not move the cursor; callers
// clear a freshly bound writer once before marshalling into it.
func (w *Writer) Clear() {
	if w.size == 0 {
		return
	}
	b := unsafe.Slice((*byte)(w.start), w.size)
	for i := range b {
		b[i] = 0
	}
}

// Reserve advances the cursor by n bytes and returns the start of the
// reserved span. Panics if n exceeds the remaining capacity.
func (w *Writer) Reserve(n uintptr) unsafe.Pointer {
	if n > w.free {
		panic(fmt.Sprintf("arena: reserve of %d bytes exceeds %d free", n, w.free))
	}
	p := w.pos
	w.pos = unsafe.Add(w.pos, n)
	w.free -= n
	return p
}

// WriteString copies s into a fresh len(s)+1 span as a NUL-terminated
// byte sequence and returns a pointer to its start. Panics if s contains
// an embedded NUL, since it cannot round-trip through a C string.
func (w *Writer) WriteString(s string) *byte {
	if strings.IndexByte(s, 0) >= 0 {
		panic("arena: string contains embedded NUL")
	}
	p := w.Reserve(uintptr(len(s)) + 1)
	b := unsafe.Slice((*byte)(p), len(s)+1)
	copy(b, s)
	b[len(s)] = 0
	return (*byte)(p)
}

// WriteStringList writes a NUL-terminated pointer array for items. The
// len(items)+1 slots are reserved up front, each string is written via
// WriteString with its pointer stored in the matching slot, and the
// final sentinel slot is zeroed.
func (w *Writer) WriteStringList(items []string) **byte {
	slots := w.Reserve(ptrSize * uintptr(len(items)+1))
	for i, s := range items {
		*slotAt(slots, i) = w.WriteString(s)
	}
	*slotAt(slots, len(items)) = nil
	return (**byte)(slots)
}

// WriteBytesList writes a NUL-terminated pointer array over fixed-width
// raw spans. Each item is copied into its own width-sized span; the
// count travels out of band so the spans carry no terminator.
func (w *Writer) WriteBytesList(items [][]byte, width uintptr) **byte {
	slots := w.Reserve(ptrSize * uintptr(len(items)+1))
	for i, item := range items {
		p := w.Reserve(width)
		copy(unsafe.Slice((*byte)(p), width), item)
		*slotAt(slots, i) = (*byte)(p)
	}
	*slotAt(slots, len(items)) = nil
	return (**byte)(slots)
}

// Free reports the remaining capacity in bytes.
func (w *Writer) Free() uintptr {
	return w.free
}

// Size reports the total capacity the writer was bound with.
func (w *Writer) Size() uintptr {
	return w.size
}

func slotAt(base unsafe.Pointer, i int) **byte {
	return (**byte)(unsafe.Add(base, ptrSize*uintptr(i)))
}
