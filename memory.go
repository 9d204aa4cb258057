package stream

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Array is a typed window onto one of the three benchmark arrays.
// The view methods reinterpret the same mapped bytes; no copies are
// made, so kernels and validation read the memory the hardware saw.
type Array struct {
	buf []byte
}

// Bytes returns the raw byte view of the array.
func (a Array) Bytes() []byte {
	return a.buf
}

// Float32 returns a float32 slice view of the array.
// The slice can be used directly for reading and writing data.
//
// Example:
//
//	av := b.Arrays().A.Float32()
//	av[0] = 3.14 // Direct access
func (a Array) Float32() []float32 {
	return view[float32](a.buf)
}

// Float64 returns a float64 slice view of the array.
// The slice can be used directly for reading and writing data.
func (a Array) Float64() []float64 {
	return view[float64](a.buf)
}

// view reinterprets a byte buffer as a slice of E. The buffer comes
// from mmap, so the base address is page-aligned and safely exceeds
// the alignment of any element type.
func view[E Element](buf []byte) []E {
	if len(buf) == 0 {
		return nil
	}
	var zero E
	n := len(buf) / int(unsafe.Sizeof(zero))
	return unsafe.Slice((*E)(unsafe.Pointer(&buf[0])), n)
}

// ArraySet bundles the three arrays in kernel order.
type ArraySet struct {
	A, B, C Array
}

// Buffers owns the memory behind the three arrays. The arrays are
// either anonymous mappings in process memory or three consecutive
// windows of a memory device, and are always a whole number of pages.
type Buffers struct {
	mu       sync.Mutex
	a, b, c  []byte
	size     int64
	fd       int
	device   string
	offset   int64
	released bool
}

// newBuffers maps three arrays of size bytes each. With an empty
// device path the arrays are anonymous private mappings. Otherwise the
// device is opened read-write and the arrays are shared mappings of
// three consecutive windows starting at offset.
func newBuffers(size int64, device string, offset int64) (*Buffers, error) {
	if size <= 0 || size%PageSize != 0 {
		return nil, NewConfigError("newBuffers", fmt.Sprintf("array size must be a positive multiple of %d, got %d", PageSize, size))
	}
	if device == "" {
		return anonBuffers(size)
	}
	return deviceBuffers(size, device, offset)
}

func anonBuffers(size int64) (*Buffers, error) {
	bufs := &Buffers{size: size, fd: -1}
	for _, dst := range []*[]byte{&bufs.a, &bufs.b, &bufs.c} {
		m, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
		if err != nil {
			bufs.unmapPartial()
			return nil, NewResourceError("Mmap", fmt.Sprintf("cannot allocate %d bytes of array memory", size), err)
		}
		*dst = m
	}
	return bufs, nil
}

func deviceBuffers(size int64, device string, offset int64) (*Buffers, error) {
	fd, err := unix.Open(device, unix.O_RDWR, 0)
	if err != nil {
		return nil, NewResourceError("Open", fmt.Sprintf("%s is not opened", device), err)
	}

	// A regular file must already hold the three windows; mmap would
	// happily map past EOF and fault later. Character devices like
	// /dev/mem have no meaningful size, so they are taken at their word.
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err == nil && st.Mode&unix.S_IFMT == unix.S_IFREG {
		if need := offset + 3*size; st.Size < need {
			unix.Close(fd)
			return nil, NewResourceError("Mmap", fmt.Sprintf("%s holds %d bytes, need %d for three arrays at offset %#x", device, st.Size, need, offset), nil)
		}
	}

	bufs := &Buffers{size: size, fd: fd, device: device, offset: offset}
	for i, dst := range []*[]byte{&bufs.a, &bufs.b, &bufs.c} {
		m, err := unix.Mmap(fd, offset+int64(i)*size, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
		if err != nil {
			bufs.unmapPartial()
			unix.Close(fd)
			return nil, NewResourceError("Mmap", fmt.Sprintf("cannot map %d bytes of %s at offset %#x", size, device, offset+int64(i)*size), err)
		}
		*dst = m
	}
	return bufs, nil
}

// unmapPartial tears down whatever mappings exist. Used on
// construction failure before the Buffers escapes.
func (bf *Buffers) unmapPartial() {
	for _, m := range [][]byte{bf.a, bf.b, bf.c} {
		if m != nil {
			unix.Munmap(m)
		}
	}
	bf.a, bf.b, bf.c = nil, nil, nil
}

// Arrays returns the three arrays. The views stay valid until Release.
func (bf *Buffers) Arrays() ArraySet {
	return ArraySet{A: Array{bf.a}, B: Array{bf.b}, C: Array{bf.c}}
}

// Size returns the size in bytes of one array.
func (bf *Buffers) Size() int64 {
	return bf.size
}

// Mapped reports whether the arrays are backed by a device rather
// than anonymous memory.
func (bf *Buffers) Mapped() bool {
	return bf.device != ""
}

// Device returns the backing device path and offset. The path is
// empty for anonymous arrays.
func (bf *Buffers) Device() (path string, offset int64) {
	return bf.device, bf.offset
}

// Release unmaps the arrays and closes the backing device. All views
// obtained through Arrays become invalid. Release must be called
// exactly once; further calls return ErrAlreadyReleased.
func (bf *Buffers) Release() error {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	if bf.released {
		return ErrAlreadyReleased
	}
	bf.released = true

	var first error
	for _, m := range [][]byte{bf.a, bf.b, bf.c} {
		if err := unix.Munmap(m); err != nil && first == nil {
			first = NewResourceError("Munmap", "cannot unmap array", err)
		}
	}
	bf.a, bf.b, bf.c = nil, nil, nil

	if bf.fd >= 0 {
		if err := unix.Close(bf.fd); err != nil && first == nil {
			first = NewResourceError("Close", fmt.Sprintf("cannot close %s", bf.device), err)
		}
		bf.fd = -1
	}
	return first
}
