// dmarx/sim.go

package dmarx

import "sync"

// SimulatedEngine is a software model of the dma_axi_write_simple block: a
// register file plus a writer that streams bytes into the ring buffer the
// way the hardware does. It backs the unit tests, the selftest binary and
// the runnable examples, so the driver can be exercised without an FPGA.
//
// The model is byte-granular, as if the stream were one byte wide, so no
// alignment errors arise from normal use; error bits are latched on demand
// with the Inject methods. Feed may be called from a different goroutine
// than the consumer, mirroring the hardware advancing its cursor
// concurrently with software.
type SimulatedEngine struct {
	mu sync.Mutex

	buf  []byte
	base uint32

	enabled bool
	status  uint32

	startAddr uint32
	endAddr   uint32
	readAddr  uint32
	written   uint32

	irq chan struct{}
}

// Bus address the model pretends the buffer lives at. Arbitrary, non-zero
// so address arithmetic bugs cannot hide behind a zero base.
const simBufferAddress = 0x4000_0000

// NewSimulatedEngine returns a disabled engine with a fresh ring buffer of
// the given size.
func NewSimulatedEngine(bufferSize int) *SimulatedEngine {
	return &SimulatedEngine{
		buf:  make([]byte, bufferSize),
		base: simBufferAddress,
		irq:  make(chan struct{}, 1),
	}
}

// Buffer returns the shared data buffer; pass it as Config.Buffer.
func (e *SimulatedEngine) Buffer() []byte { return e.buf }

// BufferAddress returns the bus address of Buffer[0] in the model's address
// space; pass it as Config.BufferAddress.
func (e *SimulatedEngine) BufferAddress() uint32 { return e.base }

// Interrupt returns the coalesced interrupt line: at most one pending wake
// no matter how many events were latched since the last receive. Callers
// must re-check state after waking, exactly as with a level interrupt.
func (e *SimulatedEngine) Interrupt() <-chan struct{} { return e.irq }

// ReadRegister implements Bus. Write-only registers read back as zero.
func (e *SimulatedEngine) ReadRegister(offset uint32) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch offset {
	case regConfig:
		if e.enabled {
			return configEnable
		}
	case regInterruptStatus:
		return e.status
	case regBufferWritten:
		return e.written
	}
	return 0
}

// WriteRegister implements Bus.
func (e *SimulatedEngine) WriteRegister(offset, value uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch offset {
	case regConfig:
		if value&configEnable != 0 && !e.enabled {
			e.enabled = true
			e.written = e.startAddr
		}
	case regInterruptStatus:
		// Write 1 to clear.
		e.status &^= value
	case regBufferStart:
		e.startAddr = value
	case regBufferEnd:
		e.endAddr = value
	case regBufferRead:
		e.readAddr = value
	}
}

// Feed streams bytes into the ring the way the DMA engine would: wrapping
// at the end of the buffer and never advancing onto the committed read
// cursor. It latches a write-done event for whatever it accepted and
// returns the accepted count; the remainder is backpressured, as the real
// engine would stall its input stream.
func (e *SimulatedEngine) Feed(p []byte) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.enabled || len(p) == 0 {
		return 0
	}

	capacity := uint32(len(e.buf))
	used := ringDistance(e.readAddr, e.written, capacity)
	// One byte always stays free so a full ring never looks empty.
	free := capacity - 1 - used

	n := uint32(len(p))
	if n > free {
		n = free
	}
	for i := uint32(0); i < n; i++ {
		e.buf[(e.written-e.base+i)%capacity] = p[i]
	}
	e.written = e.base + (e.written-e.base+n)%capacity

	if n > 0 {
		e.latchLocked(irqWriteDone)
	}
	return int(n)
}

// InjectWriteError latches the write-error status bit, as if a buffer write
// got an error response on the bus.
func (e *SimulatedEngine) InjectWriteError() {
	e.mu.Lock()
	e.latchLocked(irqWriteError)
	e.mu.Unlock()
}

// InjectReadAddressUnalignedError latches the read-address alignment error
// status bit.
func (e *SimulatedEngine) InjectReadAddressUnalignedError() {
	e.mu.Lock()
	e.latchLocked(irqReadAddressUnaligned)
	e.mu.Unlock()
}

func (e *SimulatedEngine) latchLocked(bits uint32) {
	e.status |= bits
	select {
	case e.irq <- struct{}{}:
	default:
	}
}
