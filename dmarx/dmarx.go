// dmarx/dmarx.go

// Package dmarx is a zero-copy consumer-side driver for the hdl-modules
// 'dma_axi_write_simple' FPGA block: a DMA engine that streams data into a
// fixed-size circular memory buffer and reports progress through
// memory-mapped registers and a latched interrupt status. The driver tracks
// how far the hardware has written, hands out direct spans into the shared
// buffer, and releases consumed bytes back to the engine so the space can be
// reused. No data is ever copied.
package dmarx

import (
	"errors"
	"fmt"
	"math"
)

// Config carries the construction parameters for a Receiver.
type Config struct {
	// Buffer is the caller-allocated region the DMA engine writes into.
	// It must be the very same memory the hardware reaches at BufferAddress
	// (see MapBuffer), or a plain slice when driving a SimulatedEngine.
	Buffer []byte

	// BufferAddress is the bus address of Buffer[0] as seen by the engine.
	BufferAddress uint32

	// Reporter receives protocol and hardware faults. Nil selects LogFaults.
	Reporter FaultReporter
}

// Span is a zero-copy read result: a direct window into the shared buffer,
// never a duplicated allocation.
type Span struct {
	// Data stays valid until the bytes are released with DoneWithData.
	// Nil when less than the requested minimum was available.
	Data []byte

	// Address is the bus address of Data[0]. Zero for an empty span.
	Address uint32
}

// Len returns the number of bytes in the span.
func (s Span) Len() int { return len(s.Data) }

// Receiver consumes the ring buffer written by one DMA engine instance.
//
// A Receiver is owned by a single consumer goroutine. The hardware advances
// its write cursor concurrently, but the driver itself takes no locks and
// must not be invoked from multiple goroutines without external
// synchronization. No call ever blocks.
type Receiver struct {
	regs registerFile
	buf  []byte

	start    uint32 // bus address of buf[0]
	end      uint32 // start + capacity, exclusive
	capacity uint32

	// Offsets from start, modulo capacity. outstanding marks data handed
	// out to the consumer; done marks data acknowledged and published to
	// the hardware read-cursor register. In ring order done never passes
	// outstanding, and outstanding never passes the hardware write cursor.
	outstanding uint32
	done        uint32

	reporter FaultReporter
	stats    Stats
}

// NewReceiver wires a Receiver to the engine's register block and its data
// buffer. The engine is left untouched; call SetupAndEnable to start it.
func NewReceiver(bus Bus, cfg Config) (*Receiver, error) {
	if bus == nil {
		return nil, errors.New("dmarx: nil bus")
	}
	if len(cfg.Buffer) == 0 {
		return nil, errors.New("dmarx: empty buffer")
	}

	// The address registers are 32 bits wide, so the whole region has to be
	// reachable through them.
	end := uint64(cfg.BufferAddress) + uint64(len(cfg.Buffer))
	if end > math.MaxUint32 {
		return nil, fmt.Errorf(
			"dmarx: buffer [%#x, %#x) does not fit a 32-bit address",
			cfg.BufferAddress, end,
		)
	}

	reporter := cfg.Reporter
	if reporter == nil {
		reporter = LogFaults
	}

	return &Receiver{
		regs:     registerFile{bus: bus},
		buf:      cfg.Buffer,
		start:    cfg.BufferAddress,
		end:      uint32(end),
		capacity: uint32(len(cfg.Buffer)),
		reporter: reporter,
	}, nil
}

// Capacity returns the size of the ring buffer in bytes.
func (r *Receiver) Capacity() int { return int(r.capacity) }

// SetupAndEnable programs the buffer region into the engine and sets the
// enable bit. The engine must not already be running; enabling twice without
// disabling in between is a protocol fault.
func (r *Receiver) SetupAndEnable() error {
	if faultChecksEnabled && r.regs.enabled() {
		if err := r.fault(FaultProtocol, 0,
			"tried to enable DMA engine that is already running"); err != nil {
			return err
		}
	}

	r.regs.setBufferStartAddress(r.start)
	r.regs.setBufferEndAddress(r.end)
	r.regs.setBufferReadAddress(r.start)

	r.regs.setEnable()
	return nil
}

// ReceiveAllData returns whatever is available right now, even a single
// byte, up to the whole buffer. Equivalent to ReceiveData(1, Capacity()).
func (r *Receiver) ReceiveAllData() (Span, error) {
	return r.ReceiveData(1, int(r.capacity))
}

// ReceiveData hands out a contiguous span of at most maxBytes of received
// data, straight out of the shared buffer.
//
// An empty span with a nil error means less than minBytes is available and
// is the normal outcome on many polling rounds: a write-done interrupt can
// outlive the data that raised it when a previous round already drained the
// buffer, or fire again before the latch was serviced.
//
// The span never wraps past the end of the buffer, because it is a direct
// pointer into the ring. When the read position is near the end the span is
// clamped to the bytes up to the end, possibly below minBytes even though
// more data is waiting around the corner; call again for the wrapped
// remainder.
//
// The caller contract is 1 <= minBytes <= maxBytes <= Capacity().
//
// A non-nil error only occurs when the status check detects a hardware
// error and the fault reporter deems it fatal. No cursor is touched in that
// case.
func (r *Receiver) ReceiveData(minBytes, maxBytes int) (Span, error) {
	r.dbgReceive()
	if minBytes < 1 {
		minBytes = 1
	}

	if _, err := r.CheckStatus(); err != nil {
		return Span{}, err
	}

	// One fresh cursor read per call, used for every computation below.
	written := r.regs.bufferWrittenAddress()
	read := r.start + r.outstanding

	available := ringDistance(read, written, r.capacity)
	if available < uint32(minBytes) {
		r.dbgEmpty()
		return Span{}, nil
	}

	numBytes := available
	if uint32(maxBytes) < numBytes {
		numBytes = uint32(maxBytes)
	}

	if written < read {
		// The write cursor has wrapped past us. Clamp to the end of the
		// buffer so the span stays contiguous.
		if untilEnd := r.end - read; untilEnd < numBytes {
			numBytes = untilEnd
			r.dbgWrapSplit()
		}
	}

	span := Span{
		Data:    r.buf[r.outstanding : r.outstanding+numBytes],
		Address: read,
	}
	r.outstanding = (r.outstanding + numBytes) % r.capacity
	r.dbgHandedOut(numBytes)

	return span, nil
}

// DoneWithData releases numBytes back to the engine, telling it that much
// buffer space is reclaimable. Bytes must be released in the order they
// were received, and only after the consumer is finished reading them; the
// driver trusts the caller and does not track spans to enforce this.
// A numBytes of zero (or less) is a no-op.
func (r *Receiver) DoneWithData(numBytes int) {
	if numBytes <= 0 {
		return
	}
	r.done = (r.done + uint32(numBytes)) % r.capacity
	r.regs.setBufferReadAddress(r.start + r.done)
	r.dbgAcked(uint32(numBytes))
}

// ClearAllData discards everything not yet consumed: the hardware read
// cursor is snapped to the current write cursor and both software offsets
// follow. Used to recover after an error, or to drop stale data around a
// (re)initialization.
func (r *Receiver) ClearAllData() {
	written := r.regs.bufferWrittenAddress()
	r.regs.setBufferReadAddress(written)
	r.outstanding = written - r.start
	r.done = r.outstanding
}

// NumBytesAvailable reports how much data could be handed out right now.
// It reads the write cursor but has no side effects: the interrupt status
// and the software cursors are left alone.
func (r *Receiver) NumBytesAvailable() int {
	written := r.regs.bufferWrittenAddress()
	return int(ringDistance(r.start+r.outstanding, written, r.capacity))
}

// CheckStatus reads the latched interrupt status and, if any bit was set,
// writes the value straight back to clear it. The clear happens as soon as
// possible after the read to keep the window for losing a new event small;
// a race can still leave a later call seeing zero fresh bytes despite a
// pending interrupt, which callers resolve by polling again.
//
// Any latched error bit is raised as a hardware fault carrying the raw
// status value. The returned write-done flag is advisory only: ReceiveData
// always re-derives availability from the cursors, since write-done can
// under- or over-fire relative to the actual buffer state.
func (r *Receiver) CheckStatus() (writeDone bool, err error) {
	status := r.regs.interruptStatus()
	if status != 0 {
		r.regs.clearInterruptStatus(status)
		r.dbgStatus(status)

		if faultChecksEnabled && status&irqErrorMask != 0 {
			if err := r.fault(FaultHardware, status,
				"error interrupt from DMA engine"); err != nil {
				return false, err
			}
		}
	}
	return status&irqWriteDone != 0, nil
}

// ringDistance returns how many bytes lie between the absolute addresses
// from and to in ring order, both within the same capacity-sized ring.
// Equal cursors mean empty: the engine leaves at least one byte free, so a
// full ring is never ambiguous with an empty one.
func ringDistance(from, to, capacity uint32) uint32 {
	if to >= from {
		return to - from
	}
	return capacity - (from - to)
}
