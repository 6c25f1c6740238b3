package nss

import (
	"net"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostwire/hostarc/pkg/hostent"
	"github.com/hostwire/hostarc/pkg/source"
)

// fakeSource is a canned HostSource with optional error injection.
type fakeSource struct {
	hosts []hostent.Host
	err   error
}

func (f *fakeSource) AllHosts() ([]hostent.Host, error) {
	return f.hosts, f.err
}

func (f *fakeSource) HostByName(name string, family hostent.Family) (hostent.Host, bool, error) {
	if f.err != nil {
		return hostent.Host{}, false, f.err
	}
	for _, h := range f.hosts {
		if h.Name == name && h.Addrs.Family() == family {
			return h, true, nil
		}
	}
	return hostent.Host{}, false, nil
}

func (f *fakeSource) HostByAddr(ip net.IP) (hostent.Host, bool, error) {
	if f.err != nil {
		return hostent.Host{}, false, f.err
	}
	for _, h := range f.hosts {
		for _, candidate := range h.IPs() {
			if candidate.Equal(ip) {
				return h, true, nil
			}
		}
	}
	return hostent.Host{}, false, nil
}

func fixtureHosts() []hostent.Host {
	return []hostent.Host{
		{Name: "a.example", Addrs: hostent.V4List{{10, 0, 0, 1}}},
		{Name: "b.example", Aliases: []string{"b"}, Addrs: hostent.V4List{{10, 0, 0, 2}}},
		{Name: "b.example", Addrs: hostent.V6List{{0x20, 0x01, 0x0d, 0xb8, 15: 0x02}}},
	}
}

type callBuf struct {
	out *hostent.Hostent
	ptr unsafe.Pointer
	len uintptr
}

func newCallBuf() callBuf {
	buf := make([]byte, 4096)
	return callBuf{
		out: &hostent.Hostent{},
		ptr: unsafe.Pointer(&buf[0]),
		len: uintptr(len(buf)),
	}
}

func TestService_Enumeration(t *testing.T) {
	svc := NewService(&fakeSource{hosts: fixtureHosts()})

	require.Equal(t, StatusSuccess, svc.SetHostEnt())

	var names []string
	for {
		b := newCallBuf()
		st := svc.GetHostEnt(b.out, b.ptr, b.len)
		if st == StatusNotFound {
			break
		}
		require.Equal(t, StatusSuccess, st)
		names = append(names, hostent.Read(b.out).Name)
	}

	assert.Equal(t, []string{"a.example", "b.example", "b.example"}, names)
	require.Equal(t, StatusSuccess, svc.EndHostEnt())
}

func TestService_EnumerationProtocolViolation(t *testing.T) {
	svc := NewService(&fakeSource{hosts: fixtureHosts()})

	b := newCallBuf()
	assert.Panics(t, func() { svc.GetHostEnt(b.out, b.ptr, b.len) })

	svc.SetHostEnt()
	svc.EndHostEnt()
	assert.Panics(t, func() { svc.GetHostEnt(b.out, b.ptr, b.len) })
}

func TestService_EnumerationDiscardOnEnd(t *testing.T) {
	svc := NewService(&fakeSource{hosts: fixtureHosts()})

	svc.SetHostEnt()
	b := newCallBuf()
	require.Equal(t, StatusSuccess, svc.GetHostEnt(b.out, b.ptr, b.len))
	svc.EndHostEnt()

	// a fresh scan starts from the beginning
	svc.SetHostEnt()
	b = newCallBuf()
	require.Equal(t, StatusSuccess, svc.GetHostEnt(b.out, b.ptr, b.len))
	assert.Equal(t, "a.example", hostent.Read(b.out).Name)
	svc.EndHostEnt()
}

func TestService_ConcurrentGetHostEnt(t *testing.T) {
	hosts := make([]hostent.Host, 100)
	for i := range hosts {
		hosts[i] = hostent.Host{
			Name:  "h" + string(rune('0'+i%10)) + string(rune('0'+i/10)),
			Addrs: hostent.V4List{{10, 0, byte(i / 256), byte(i % 256)}},
		}
	}
	svc := NewService(&fakeSource{hosts: hosts})
	svc.SetHostEnt()

	var mu sync.Mutex
	seen := make(map[string]int)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				b := newCallBuf()
				if svc.GetHostEnt(b.out, b.ptr, b.len) != StatusSuccess {
					return
				}
				name := hostent.Read(b.out).Name
				mu.Lock()
				seen[name]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	svc.EndHostEnt()

	total := 0
	for _, n := range seen {
		total += n
	}
	assert.Equal(t, 100, total, "each record delivered exactly once")
}

func TestService_GetHostByName2(t *testing.T) {
	svc := NewService(&fakeSource{hosts: fixtureHosts()})

	tests := []struct {
		name   string
		query  string
		family hostent.Family
		want   Status
	}{
		{name: "v4 hit", query: "a.example", family: hostent.FamilyV4, want: StatusSuccess},
		{name: "v6 hit", query: "b.example", family: hostent.FamilyV6, want: StatusSuccess},
		{name: "v6 miss", query: "a.example", family: hostent.FamilyV6, want: StatusNotFound},
		{name: "unknown name", query: "zz.example", family: hostent.FamilyV4, want: StatusNotFound},
		{name: "invalid utf8", query: "bad\xff\xfe", family: hostent.FamilyV4, want: StatusNotFound},
		{name: "unmapped family", query: "a.example", family: hostent.Family(99), want: StatusReturn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newCallBuf()
			st := svc.GetHostByName2(tt.query, tt.family, b.out, b.ptr, b.len)
			require.Equal(t, tt.want, st)
			if st == StatusSuccess {
				got := hostent.Read(b.out)
				assert.Equal(t, tt.query, got.Name)
				assert.Equal(t, tt.family, got.Addrs.Family())
			}
		})
	}
}

func TestService_GetHostByNameUnspecFallback(t *testing.T) {
	// only a v6 record exists: unspecified family should fall through
	// to IPv6 after the IPv4 miss
	svc := NewService(&fakeSource{hosts: []hostent.Host{
		{Name: "v6only.example", Addrs: hostent.V6List{{0xfe, 0x80, 15: 0x01}}},
	}})

	b := newCallBuf()
	st := svc.GetHostByName("v6only.example", b.out, b.ptr, b.len)
	require.Equal(t, StatusSuccess, st)
	assert.Equal(t, int32(hostent.FamilyV6), b.out.AddrType)
	assert.Equal(t, int32(16), b.out.Length)
}

func TestService_GetHostByAddr(t *testing.T) {
	svc := NewService(&fakeSource{hosts: fixtureHosts()})

	tests := []struct {
		name   string
		raw    []byte
		family hostent.Family
		want   Status
	}{
		{name: "v4 hit", raw: []byte{10, 0, 0, 1}, family: hostent.FamilyV4, want: StatusSuccess},
		{name: "v4 miss", raw: []byte{10, 9, 9, 9}, family: hostent.FamilyV4, want: StatusNotFound},
		{name: "v6 short length", raw: append([]byte{0x20, 0x01, 0x0d, 0xb8}, make([]byte, 11)...), family: hostent.FamilyV6, want: StatusNotFound},
		{name: "length 4 tagged v6", raw: []byte{10, 0, 0, 1}, family: hostent.FamilyV6, want: StatusNotFound},
		{name: "length 16 tagged v4", raw: make([]byte, 16), family: hostent.FamilyV4, want: StatusNotFound},
		{name: "unspec family", raw: []byte{10, 0, 0, 1}, family: hostent.FamilyUnspec, want: StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newCallBuf()
			assert.Equal(t, tt.want, svc.GetHostByAddr(tt.raw, tt.family, b.out, b.ptr, b.len))
		})
	}

	// full 16-byte v6 lookup
	raw := make([]byte, 16)
	raw[0], raw[1], raw[2], raw[3], raw[15] = 0x20, 0x01, 0x0d, 0xb8, 0x02
	b := newCallBuf()
	require.Equal(t, StatusSuccess, svc.GetHostByAddr(raw, hostent.FamilyV6, b.out, b.ptr, b.len))
	assert.Equal(t, "b.example", hostent.Read(b.out).Name)
}

func TestService_SourceErrors(t *testing.T) {
	b := newCallBuf()

	svc := NewService(&fakeSource{err: source.ErrTryAgain})
	assert.Equal(t, StatusTryAgain, svc.SetHostEnt())
	assert.Equal(t, StatusTryAgain, svc.GetHostByName("x", b.out, b.ptr, b.len))

	svc = NewService(&fakeSource{err: source.ErrUnavailable})
	assert.Equal(t, StatusUnavail, svc.SetHostEnt())
	assert.Equal(t, StatusUnavail, svc.GetHostByAddr([]byte{1, 2, 3, 4}, hostent.FamilyV4, b.out, b.ptr, b.len))
}

func TestRegistry(t *testing.T) {
	src := &fakeSource{hosts: fixtureHosts()}

	svc := Register("files", src)
	got, ok := Lookup("files")
	require.True(t, ok)
	assert.Same(t, svc, got)

	// re-registration replaces
	svc2 := Register("files", src)
	got, _ = Lookup("files")
	assert.Same(t, svc2, got)

	Deregister("files")
	_, ok = Lookup("files")
	assert.False(t, ok)
}
