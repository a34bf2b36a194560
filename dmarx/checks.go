//go:build !dmarx_nocheck

package dmarx

// Protocol and hardware fault checks are compiled in by default. Build with
// -tags dmarx_nocheck to remove them entirely; the guard is a constant, so
// the checks const-fold away and no computed value changes.
const faultChecksEnabled = true
