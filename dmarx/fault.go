// dmarx/fault.go

package dmarx

import (
	"fmt"
	"log"
	"path/filepath"
	"runtime"
)

// FaultKind classifies a detected fault.
type FaultKind int

const (
	// FaultProtocol is a driver protocol violation, such as enabling an
	// engine that is already running.
	FaultProtocol FaultKind = iota
	// FaultHardware is an error latched by the engine itself: a bus write
	// error or one of the address alignment errors.
	FaultHardware
)

func (k FaultKind) String() string {
	switch k {
	case FaultProtocol:
		return "protocol"
	case FaultHardware:
		return "hardware"
	}
	return "unknown"
}

// Fault describes a single detected fault. It implements error.
type Fault struct {
	Kind FaultKind
	Msg  string

	// File and Line identify the detection site inside the driver.
	File string
	Line int

	// Status is the raw interrupt status value, hardware faults only.
	Status uint32
}

func (f *Fault) Error() string {
	if f.Kind == FaultHardware {
		return fmt.Sprintf("dmarx: %s fault at %s:%d: %s (status %#x)",
			f.Kind, f.File, f.Line, f.Msg, f.Status)
	}
	return fmt.Sprintf("dmarx: %s fault at %s:%d: %s", f.Kind, f.File, f.Line, f.Msg)
}

// FaultReporter is called synchronously at the point a fault is detected.
// Returning true lets the driver continue with best-effort state; returning
// false makes the detecting call fail with the fault as its error.
type FaultReporter interface {
	Report(f *Fault) bool
}

// ReporterFunc adapts a plain function to a FaultReporter.
type ReporterFunc func(*Fault) bool

// Report calls fn.
func (fn ReporterFunc) Report(f *Fault) bool { return fn(f) }

// LogFaults is the default reporter: log the fault and treat it as fatal.
var LogFaults FaultReporter = ReporterFunc(func(f *Fault) bool {
	log.Print(f.Error())
	return false
})

// fault builds a Fault for the caller's location and runs it through the
// reporter. It returns nil when the reporter elects to continue, or when
// fault checks are compiled out.
func (r *Receiver) fault(kind FaultKind, status uint32, msg string) error {
	if !faultChecksEnabled {
		return nil
	}
	f := &Fault{Kind: kind, Msg: msg, Status: status}
	if _, file, line, ok := runtime.Caller(1); ok {
		f.File = filepath.Base(file)
		f.Line = line
	}
	r.dbgFault(kind)
	if r.reporter.Report(f) {
		return nil
	}
	return f
}
