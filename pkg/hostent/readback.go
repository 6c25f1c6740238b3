package hostent

import "unsafe"

// Read reconstructs a Host from a populated header. The arena region
// the header points into must still be live. Used by diagnostics and
// tests to verify what a foreign caller would observe.
func Read(out *Hostent) Host {
	h := Host{
		Name:    cString(out.Name),
		Aliases: []string{},
	}
	for _, p := range pointerList(out.Aliases) {
		h.Aliases = append(h.Aliases, cString(p))
	}

	switch Family(out.AddrType) {
	case FamilyV4:
		var l V4List
		for _, p := range pointerList(out.AddrList) {
			l = append(l, [4]byte(unsafe.Slice(p, 4)))
		}
		h.Addrs = l
	case FamilyV6:
		var l V6List
		for _, p := range pointerList(out.AddrList) {
			l = append(l, [16]byte(unsafe.Slice(p, 16)))
		}
		h.Addrs = l
	}
	return h
}

// cString reads a NUL-terminated byte sequence.
func cString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}

// pointerList collects the non-sentinel slots of a NUL-terminated
// pointer array.
func pointerList(head **byte) []*byte {
	if head == nil {
		return nil
	}
	var out []*byte
	for i := 0; ; i++ {
		p := *(**byte)(unsafe.Add(unsafe.Pointer(head), uintptr(i)*ptrSize))
		if p == nil {
			return out
		}
		out = append(out, p)
	}
}
