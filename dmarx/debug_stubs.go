//go:build !dmarxdebug

package dmarx

type Stats struct{}

func (r *Receiver) DebugReset()       {}
func (r *Receiver) DebugStats() Stats { return Stats{} }

type Regs struct{}

func (r *Receiver) DebugRegs() Regs { return Regs{} }

func (r *Receiver) dbgReceive()         {}
func (r *Receiver) dbgEmpty()           {}
func (r *Receiver) dbgWrapSplit()       {}
func (r *Receiver) dbgStatus(uint32)    {}
func (r *Receiver) dbgFault(FaultKind)  {}
func (r *Receiver) dbgHandedOut(uint32) {}
func (r *Receiver) dbgAcked(uint32)     {}
