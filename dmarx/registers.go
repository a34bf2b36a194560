// dmarx/registers.go

package dmarx

// Bus is the register access port of the DMA engine, typically an AXI-Lite
// slave reached through a memory mapping. Implementations must perform one
// real hardware access per call; the receiver never caches values obtained
// through it across calls.
type Bus interface {
	ReadRegister(offset uint32) uint32
	WriteRegister(offset, value uint32)
}

// Register map of the dma_axi_write_simple slave.

const (
	regConfig          = 0x00 // engine control (RW)
	regInterruptStatus = 0x04 // latched events, write 1 to clear (R/W1C)
	regBufferStart     = 0x08 // buffer start address (W)
	regBufferEnd       = 0x0c // buffer end address, exclusive (W)
	regBufferRead      = 0x10 // consumer read cursor address (W)
	regBufferWritten   = 0x14 // hardware write cursor address (R)
)

// Config register bits.

const (
	configEnable = 1 << 0
)

// Interrupt status bits.

const (
	irqWriteDone             = 1 << 0 // at least one burst landed in the buffer
	irqWriteError            = 1 << 1 // bus error response on a buffer write
	irqStartAddressUnaligned = 1 << 2
	irqEndAddressUnaligned   = 1 << 3
	irqReadAddressUnaligned  = 1 << 4

	irqErrorMask = irqWriteError |
		irqStartAddressUnaligned |
		irqEndAddressUnaligned |
		irqReadAddressUnaligned
)

// registerFile wraps a Bus with typed accessors for the individual fields.
type registerFile struct {
	bus Bus
}

func (r registerFile) enabled() bool {
	return r.bus.ReadRegister(regConfig)&configEnable != 0
}

func (r registerFile) setEnable() {
	r.bus.WriteRegister(regConfig, configEnable)
}

func (r registerFile) interruptStatus() uint32 {
	return r.bus.ReadRegister(regInterruptStatus)
}

// clearInterruptStatus clears exactly the bits that are set in status.
func (r registerFile) clearInterruptStatus(status uint32) {
	r.bus.WriteRegister(regInterruptStatus, status)
}

func (r registerFile) setBufferStartAddress(address uint32) {
	r.bus.WriteRegister(regBufferStart, address)
}

func (r registerFile) setBufferEndAddress(address uint32) {
	r.bus.WriteRegister(regBufferEnd, address)
}

func (r registerFile) setBufferReadAddress(address uint32) {
	r.bus.WriteRegister(regBufferRead, address)
}

func (r registerFile) bufferWrittenAddress() uint32 {
	return r.bus.ReadRegister(regBufferWritten)
}

// Snapshot is a dump of the readable registers, for probes and debugging.
type Snapshot struct {
	Enabled         bool
	InterruptStatus uint32
	BufferWritten   uint32
}

// ReadSnapshot reads each readable register once. The interrupt status is
// only read, never cleared; latched events survive the probe.
func ReadSnapshot(bus Bus) Snapshot {
	regs := registerFile{bus: bus}
	return Snapshot{
		Enabled:         regs.enabled(),
		InterruptStatus: regs.interruptStatus(),
		BufferWritten:   regs.bufferWrittenAddress(),
	}
}

// WriteDone reports whether the write-done bit is latched in the snapshot.
func (s Snapshot) WriteDone() bool {
	return s.InterruptStatus&irqWriteDone != 0
}

// Errors names the error bits latched in the snapshot.
func (s Snapshot) Errors() []string {
	var names []string
	for _, e := range []struct {
		bit  uint32
		name string
	}{
		{irqWriteError, "write error"},
		{irqStartAddressUnaligned, "start address unaligned"},
		{irqEndAddressUnaligned, "end address unaligned"},
		{irqReadAddressUnaligned, "read address unaligned"},
	} {
		if s.InterruptStatus&e.bit != 0 {
			names = append(names, e.name)
		}
	}
	return names
}
