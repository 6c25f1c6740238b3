package arena

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWriter(t *testing.T, size int) (*Writer, []byte) {
	t.Helper()
	buf := make([]byte, size)
	return NewWriter(unsafe.Pointer(&buf[0]), uintptr(size)), buf
}

func TestWriter_Reserve(t *testing.T) {
	w, buf := newTestWriter(t, 16)

	p1 := w.Reserve(4)
	p2 := w.Reserve(4)

	assert.Equal(t, unsafe.Pointer(&buf[0]), p1)
	assert.Equal(t, unsafe.Pointer(&buf[4]), p2)
	assert.Equal(t, uintptr(8), w.Free())
}

func TestWriter_ReserveExhausted(t *testing.T) {
	w, _ := newTestWriter(t, 8)

	w.Reserve(8)
	assert.Equal(t, uintptr(0), w.Free())

	assert.Panics(t, func() { w.Reserve(1) })
}

func TestWriter_Clear(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	w := NewWriter(unsafe.Pointer(&buf[0]), uintptr(len(buf)))

	w.Clear()
	assert.Equal(t, make([]byte, 8), buf)

	// idempotent
	w.Clear()
	assert.Equal(t, make([]byte, 8), buf)
}

func TestWriter_WriteString(t *testing.T) {
	w, buf := newTestWriter(t, 32)

	p := w.WriteString("example.net")

	require.Equal(t, &buf[0], p)
	assert.Equal(t, []byte("example.net\x00"), buf[:12])
	assert.Equal(t, uintptr(32-12), w.Free())
}

func TestWriter_WriteStringEmpty(t *testing.T) {
	w, buf := newTestWriter(t, 4)

	w.WriteString("")

	assert.Equal(t, byte(0), buf[0])
	assert.Equal(t, uintptr(3), w.Free())
}

func TestWriter_WriteStringEmbeddedNUL(t *testing.T) {
	w, _ := newTestWriter(t, 32)

	assert.Panics(t, func() { w.WriteString("bad\x00name") })
}

func TestWriter_WriteStringExactFit(t *testing.T) {
	// len("abc")+1 bytes is the exact minimum
	w, _ := newTestWriter(t, 4)
	assert.NotPanics(t, func() { w.WriteString("abc") })

	short, _ := newTestWriter(t, 3)
	assert.Panics(t, func() { short.WriteString("abc") })
}

func TestWriter_WriteStringList(t *testing.T) {
	w, buf := newTestWriter(t, 128)

	items := []string{"a", "bb", "ccc"}
	head := w.WriteStringList(items)

	base := uintptr(unsafe.Pointer(&buf[0]))
	require.Equal(t, base, uintptr(unsafe.Pointer(head)))

	// 3 populated slots, each pointing at a NUL-terminated copy inside
	// the region, in insertion order
	for i, want := range items {
		p := *slotAt(unsafe.Pointer(head), i)
		require.NotNil(t, p, "slot %d", i)

		off := uintptr(unsafe.Pointer(p)) - base
		require.Less(t, off, uintptr(len(buf)))
		assert.Equal(t, want+"\x00", string(buf[off:off+uintptr(len(want))+1]))
	}

	// sentinel slot is zeroed
	assert.Nil(t, *slotAt(unsafe.Pointer(head), len(items)))
}

func TestWriter_WriteStringListEmpty(t *testing.T) {
	w, _ := newTestWriter(t, 16)

	head := w.WriteStringList(nil)

	assert.Nil(t, *head)
	assert.Equal(t, uintptr(16)-ptrSize, w.Free())
}

func TestWriter_WriteBytesList(t *testing.T) {
	w, buf := newTestWriter(t, 128)

	items := [][]byte{{10, 0, 0, 1}, {10, 0, 0, 2}}
	head := w.WriteBytesList(items, 4)

	base := uintptr(unsafe.Pointer(&buf[0]))
	for i, want := range items {
		p := *slotAt(unsafe.Pointer(head), i)
		require.NotNil(t, p, "slot %d", i)

		off := uintptr(unsafe.Pointer(p)) - base
		assert.Equal(t, want, buf[off:off+4])
	}
	assert.Nil(t, *slotAt(unsafe.Pointer(head), len(items)))

	// slots first, then the two 4-byte spans
	assert.Equal(t, uintptr(128)-3*ptrSize-8, w.Free())
}

func TestWriter_SequentialLayout(t *testing.T) {
	w, buf := newTestWriter(t, 64)

	w.WriteString("one")
	w.WriteString("two")

	assert.Equal(t, []byte("one\x00two\x00"), buf[:8])
}
