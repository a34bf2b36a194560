//go:build dmarxdebug

package dmarx

import "sync/atomic"

// Stats holds counters since the last reset.
type Stats struct {
	ReceiveCalls  uint32 // ReceiveData entries
	EmptyReceives uint32 // rounds that returned an empty span
	WrapSplits    uint32 // spans clamped at the end of the buffer

	StatusEvents    uint32 // non-zero interrupt status snapshots
	WriteDoneEvents uint32 // snapshots with the write-done bit
	ErrorEvents     uint32 // snapshots with any error bit

	ProtocolFaults uint32
	HardwareFaults uint32

	BytesHandedOut uint32 // total bytes returned in spans
	BytesAcked     uint32 // total bytes released via DoneWithData
	MaxOutstanding uint32 // high-water mark of handed-out-but-unacked bytes
}

func (r *Receiver) DebugReset() {
	r.stats = Stats{}
}

func (r *Receiver) DebugStats() Stats {
	return Stats{
		ReceiveCalls:  atomic.LoadUint32(&r.stats.ReceiveCalls),
		EmptyReceives: atomic.LoadUint32(&r.stats.EmptyReceives),
		WrapSplits:    atomic.LoadUint32(&r.stats.WrapSplits),

		StatusEvents:    atomic.LoadUint32(&r.stats.StatusEvents),
		WriteDoneEvents: atomic.LoadUint32(&r.stats.WriteDoneEvents),
		ErrorEvents:     atomic.LoadUint32(&r.stats.ErrorEvents),

		ProtocolFaults: atomic.LoadUint32(&r.stats.ProtocolFaults),
		HardwareFaults: atomic.LoadUint32(&r.stats.HardwareFaults),

		BytesHandedOut: atomic.LoadUint32(&r.stats.BytesHandedOut),
		BytesAcked:     atomic.LoadUint32(&r.stats.BytesAcked),
		MaxOutstanding: atomic.LoadUint32(&r.stats.MaxOutstanding),
	}
}

// Regs is a snapshot of the readable hardware registers.
type Regs struct {
	Config          uint32
	InterruptStatus uint32 // read is non-destructive; clearing is an explicit write
	BufferWritten   uint32
}

func (r *Receiver) DebugRegs() Regs {
	return Regs{
		Config:          r.regs.bus.ReadRegister(regConfig),
		InterruptStatus: r.regs.interruptStatus(),
		BufferWritten:   r.regs.bufferWrittenAddress(),
	}
}
