package stream

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unsafe"
)

func TestAnonymousBuffers(t *testing.T) {
	bufs, err := newBuffers(PageSize, "", 0)
	if err != nil {
		t.Fatalf("newBuffers failed: %v", err)
	}
	defer bufs.Release()

	if bufs.Mapped() {
		t.Error("anonymous buffers should not report as mapped")
	}
	if bufs.Size() != PageSize {
		t.Errorf("Size = %d, want %d", bufs.Size(), PageSize)
	}

	s := bufs.Arrays()
	for name, arr := range map[string]Array{"a": s.A, "b": s.B, "c": s.C} {
		raw := arr.Bytes()
		if len(raw) != PageSize {
			t.Errorf("array %s: %d bytes, want %d", name, len(raw), PageSize)
		}
		if addr := uintptr(unsafe.Pointer(&raw[0])); addr%PageSize != 0 {
			t.Errorf("array %s not page aligned: %#x", name, addr)
		}
	}

	// The three arrays are distinct memory.
	av, bv, cv := s.A.Float64(), s.B.Float64(), s.C.Float64()
	for j := range av {
		av[j], bv[j], cv[j] = 1, 2, 3
	}
	for j := range av {
		if av[j] != 1 || bv[j] != 2 || cv[j] != 3 {
			t.Fatalf("arrays overlap at element %d: %v %v %v", j, av[j], bv[j], cv[j])
		}
	}
}

func TestArrayViews(t *testing.T) {
	bufs, err := newBuffers(PageSize, "", 0)
	if err != nil {
		t.Fatalf("newBuffers failed: %v", err)
	}
	defer bufs.Release()

	arr := bufs.Arrays().A
	if n := len(arr.Float32()); n != PageSize/4 {
		t.Errorf("Float32 view length = %d, want %d", n, PageSize/4)
	}
	if n := len(arr.Float64()); n != PageSize/8 {
		t.Errorf("Float64 view length = %d, want %d", n, PageSize/8)
	}

	// Both views alias the same bytes.
	arr.Float64()[0] = math.Float64frombits(0x1122334455667788)
	if got := binary.NativeEndian.Uint64(arr.Bytes()); got != 0x1122334455667788 {
		t.Errorf("views do not alias: %#x", got)
	}

	if view[float64](nil) != nil {
		t.Error("view of empty buffer should be nil")
	}
}

func TestBuffersReleaseExactlyOnce(t *testing.T) {
	bufs, err := newBuffers(PageSize, "", 0)
	if err != nil {
		t.Fatalf("newBuffers failed: %v", err)
	}

	if err := bufs.Release(); err != nil {
		t.Fatalf("first Release failed: %v", err)
	}
	if err := bufs.Release(); err != ErrAlreadyReleased {
		t.Errorf("second Release = %v, want ErrAlreadyReleased", err)
	}
	if err := bufs.Release(); err != ErrAlreadyReleased {
		t.Errorf("third Release = %v, want ErrAlreadyReleased", err)
	}
}

func TestBuffersRejectBadSize(t *testing.T) {
	for _, size := range []int64{0, -PageSize, 1000, PageSize + 1} {
		_, err := newBuffers(size, "", 0)
		if !IsConfigError(err) {
			t.Errorf("size %d: got %v, want config error", size, err)
		}
	}
}

func TestDeviceBuffers(t *testing.T) {
	const size = PageSize
	const offset = PageSize

	path := filepath.Join(t.TempDir(), "fakemem")
	if err := os.WriteFile(path, make([]byte, offset+3*size), 0644); err != nil {
		t.Fatal(err)
	}

	bufs, err := newBuffers(size, path, offset)
	if err != nil {
		t.Fatalf("newBuffers on file failed: %v", err)
	}

	if !bufs.Mapped() {
		t.Error("device buffers should report as mapped")
	}
	if dev, off := bufs.Device(); dev != path || off != offset {
		t.Errorf("Device() = %q, %#x; want %q, %#x", dev, off, path, offset)
	}

	// Writes through each window land in consecutive file regions.
	s := bufs.Arrays()
	s.A.Float64()[0] = 1.5
	s.B.Float64()[0] = 2.5
	s.C.Float64()[0] = 3.5

	if err := bufs.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []float64{1.5, 2.5, 3.5} {
		at := offset + i*size
		got := math.Float64frombits(binary.NativeEndian.Uint64(data[at:]))
		if got != want {
			t.Errorf("window %d at file offset %#x: got %v, want %v", i, at, got, want)
		}
	}
}

func TestDeviceBuffersUnopenable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "mem")
	_, err := newBuffers(PageSize, path, 0)
	if !IsResourceError(err) {
		t.Fatalf("got %v, want resource error", err)
	}
	if !strings.Contains(err.Error(), path+" is not opened") {
		t.Errorf("error %q should name the device path", err)
	}
}

func TestDeviceBuffersFileTooSmall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fakemem")
	// Room for two windows only.
	if err := os.WriteFile(path, make([]byte, 2*PageSize), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := newBuffers(PageSize, path, 0)
	if !IsResourceError(err) {
		t.Fatalf("got %v, want resource error", err)
	}
	if !strings.Contains(err.Error(), "need") {
		t.Errorf("error %q should report the required size", err)
	}
}
