//go:build dmarx_nocheck

package dmarx

const faultChecksEnabled = false
