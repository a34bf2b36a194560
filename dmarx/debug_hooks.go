//go:build dmarxdebug

package dmarx

import "sync/atomic"

// Called at every ReceiveData entry.
func (r *Receiver) dbgReceive() {
	atomic.AddUint32(&r.stats.ReceiveCalls, 1)
}

// Called when a round returns an empty span (under-minimum availability).
func (r *Receiver) dbgEmpty() {
	atomic.AddUint32(&r.stats.EmptyReceives, 1)
}

// Called when a span was clamped to the end of the buffer.
func (r *Receiver) dbgWrapSplit() {
	atomic.AddUint32(&r.stats.WrapSplits, 1)
}

// Called with the raw status snapshot whenever a non-zero status was latched.
func (r *Receiver) dbgStatus(status uint32) {
	atomic.AddUint32(&r.stats.StatusEvents, 1)
	if status&irqWriteDone != 0 {
		atomic.AddUint32(&r.stats.WriteDoneEvents, 1)
	}
	if status&irqErrorMask != 0 {
		atomic.AddUint32(&r.stats.ErrorEvents, 1)
	}
}

// Called once per reported fault.
func (r *Receiver) dbgFault(kind FaultKind) {
	if kind == FaultProtocol {
		atomic.AddUint32(&r.stats.ProtocolFaults, 1)
	} else {
		atomic.AddUint32(&r.stats.HardwareFaults, 1)
	}
}

func (r *Receiver) dbgHandedOut(numBytes uint32) {
	atomic.AddUint32(&r.stats.BytesHandedOut, numBytes)

	// Track the high-water mark of unacknowledged bytes.
	pending := ringDistance(r.start+r.done, r.start+r.outstanding, r.capacity)
	for {
		max := atomic.LoadUint32(&r.stats.MaxOutstanding)
		if pending <= max {
			break
		}
		if atomic.CompareAndSwapUint32(&r.stats.MaxOutstanding, max, pending) {
			break
		}
	}
}

func (r *Receiver) dbgAcked(numBytes uint32) {
	atomic.AddUint32(&r.stats.BytesAcked, numBytes)
}
