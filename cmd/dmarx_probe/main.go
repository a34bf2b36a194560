// cmd/dmarx_probe/main.go
// Dump the register state of a live dma_axi_write_simple instance without
// disturbing it: the interrupt status is read but not cleared.

//go:build unix

package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/hdl-modules/dmarx/dmarx"
)

func main() {
	var (
		device = flag.String("dev", "/dev/mem", "device file to map the registers through")
		base   = flag.Uint64("base", 0, "bus address of the register block")
		size   = flag.Int("size", 0x1000, "mapping size in bytes")
	)
	flag.Parse()

	if *base == 0 {
		log.Fatal("dmarx_probe: need -base (bus address of the register block)")
	}

	mmio, err := dmarx.OpenMMIO(*device, *base, *size)
	if err != nil {
		log.Fatal(err)
	}
	defer mmio.Close()

	snap := dmarx.ReadSnapshot(mmio)

	fmt.Printf("registers at %#x via %s\n", *base, *device)
	fmt.Printf("  enabled          %v\n", snap.Enabled)
	fmt.Printf("  interrupt status %#010x\n", snap.InterruptStatus)
	fmt.Printf("  write done       %v\n", snap.WriteDone())
	for _, name := range snap.Errors() {
		fmt.Printf("  ERROR latched:   %s\n", name)
	}
	fmt.Printf("  written address  %#010x\n", snap.BufferWritten)
}
