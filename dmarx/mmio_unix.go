// dmarx/mmio_unix.go

//go:build unix

package dmarx

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// MMIO is a Bus over a memory mapping of the engine's register block,
// typically obtained through /dev/mem or a UIO device node.
type MMIO struct {
	mem []byte
}

// OpenMMIO maps size bytes of the register block found at offset base in
// the named device file ("/dev/mem", "/dev/uio0", ...).
func OpenMMIO(device string, base uint64, size int) (*MMIO, error) {
	f, err := os.OpenFile(device, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("dmarx: open %s: %w", device, err)
	}
	defer f.Close()

	mem, err := unix.Mmap(int(f.Fd()), int64(base), size,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("dmarx: mmap %s at %#x: %w", device, base, err)
	}
	return &MMIO{mem: mem}, nil
}

// Close unmaps the register block.
func (m *MMIO) Close() error {
	return unix.Munmap(m.mem)
}

// ReadRegister performs one 32-bit load from the mapped block. The access
// goes through sync/atomic so it is a single real load per call, never
// elided or torn.
func (m *MMIO) ReadRegister(offset uint32) uint32 {
	return atomic.LoadUint32(m.word(offset))
}

// WriteRegister performs one 32-bit store to the mapped block.
func (m *MMIO) WriteRegister(offset, value uint32) {
	atomic.StoreUint32(m.word(offset), value)
}

func (m *MMIO) word(offset uint32) *uint32 {
	return (*uint32)(unsafe.Pointer(&m.mem[offset]))
}

// MapBuffer maps size bytes of DMA buffer memory at offset base in the
// named device file, so the receiver sees the very bytes the engine writes.
// The returned slice is suitable for Config.Buffer; call the returned
// function to unmap it when done.
func MapBuffer(device string, base uint64, size int) ([]byte, func() error, error) {
	f, err := os.OpenFile(device, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("dmarx: open %s: %w", device, err)
	}
	defer f.Close()

	mem, err := unix.Mmap(int(f.Fd()), int64(base), size,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, fmt.Errorf("dmarx: mmap buffer %s at %#x: %w", device, base, err)
	}
	return mem, func() error { return unix.Munmap(mem) }, nil
}
