// cmd/dmarx_selftest/main.go
// Host-side integrity run for the dmarx receiver: a producer goroutine
// streams a deterministic pattern into the simulated engine while the main
// goroutine drains the ring through ReceiveData with randomized request
// sizes. Every byte is verified, wrap splits included.

package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/hdl-modules/dmarx/dmarx"
)

/*** Tunables ***/
const (
	capacity   = 4096            // ring buffer size in bytes
	totalBytes = 8 * 1024 * 1024 // bytes pushed through the ring
	seed       = 1               // consumer request size randomization
	maxFeed    = 1536            // largest producer burst
	maxRequest = 2048            // largest consumer maxBytes
	timeout    = 30 * time.Second
)

func pattern(i int) byte { return byte(i*31 + 0x55) }

func main() {
	fmt.Println("dmarx selftest (simulated engine)")
	fmt.Printf("capacity = %d  total = %d bytes\n", capacity, totalBytes)

	pass, fail := 0, 0
	report := func(name, err string) {
		if err == "" {
			fmt.Println("[PASS]", name)
			pass++
		} else {
			fmt.Println("[FAIL]", name, ":", err)
			fail++
		}
	}

	report("Pattern integrity", runIntegrity())
	report("Clear and resync", runClear())

	fmt.Println("")
	fmt.Printf("%d passed, %d failed\n", pass, fail)
	if fail > 0 {
		os.Exit(1)
	}
}

func runIntegrity() string {
	sim := dmarx.NewSimulatedEngine(capacity)
	recv, err := dmarx.NewReceiver(sim, dmarx.Config{
		Buffer:        sim.Buffer(),
		BufferAddress: sim.BufferAddress(),
	})
	if err != nil {
		return err.Error()
	}
	if err := recv.SetupAndEnable(); err != nil {
		return err.Error()
	}

	// Producer: push the pattern as fast as the ring accepts it.
	go func() {
		rng := rand.New(rand.NewSource(seed + 1))
		fed := 0
		for fed < totalBytes {
			burst := 1 + rng.Intn(maxFeed)
			if burst > totalBytes-fed {
				burst = totalBytes - fed
			}
			chunk := make([]byte, burst)
			for i := range chunk {
				chunk[i] = pattern(fed + i)
			}
			n := sim.Feed(chunk)
			fed += n
			if n == 0 {
				time.Sleep(50 * time.Microsecond)
			}
		}
	}()

	rng := rand.New(rand.NewSource(seed))
	received := 0
	emptyRounds, wrapSplits := 0, 0
	deadline := time.Now().Add(timeout)

	for received < totalBytes {
		if time.Now().After(deadline) {
			return fmt.Sprintf("timeout with %d/%d bytes received", received, totalBytes)
		}

		span, err := recv.ReceiveData(1, 1+rng.Intn(maxRequest))
		if err != nil {
			return err.Error()
		}
		if span.Len() == 0 {
			emptyRounds++
			select {
			case <-sim.Interrupt():
			case <-time.After(time.Millisecond):
			}
			continue
		}
		if span.Address+uint32(span.Len()) > sim.BufferAddress()+capacity {
			return fmt.Sprintf("span [%#x, +%d) crosses the buffer end", span.Address, span.Len())
		}
		if span.Address+uint32(span.Len()) == sim.BufferAddress()+capacity {
			wrapSplits++
		}
		for i, b := range span.Data {
			if want := pattern(received + i); b != want {
				return fmt.Sprintf("byte %d: got %#02x want %#02x", received+i, b, want)
			}
		}
		received += span.Len()
		recv.DoneWithData(span.Len())
	}

	fmt.Printf("  %d bytes verified, %d empty rounds, %d spans ending at the wrap\n",
		received, emptyRounds, wrapSplits)
	return ""
}

func runClear() string {
	sim := dmarx.NewSimulatedEngine(capacity)
	recv, err := dmarx.NewReceiver(sim, dmarx.Config{
		Buffer:        sim.Buffer(),
		BufferAddress: sim.BufferAddress(),
	})
	if err != nil {
		return err.Error()
	}
	if err := recv.SetupAndEnable(); err != nil {
		return err.Error()
	}

	// Stale data that the consumer never wants to see.
	if n := sim.Feed(make([]byte, capacity/2)); n != capacity/2 {
		return fmt.Sprintf("feed accepted %d of %d", n, capacity/2)
	}
	recv.ClearAllData()
	if n := recv.NumBytesAvailable(); n != 0 {
		return fmt.Sprintf("%d bytes still available after clear", n)
	}

	// The ring keeps working after the resync.
	payload := []byte("fresh after clear")
	sim.Feed(payload)
	span, err := recv.ReceiveAllData()
	if err != nil {
		return err.Error()
	}
	if string(span.Data) != string(payload) {
		return fmt.Sprintf("got %q want %q", span.Data, payload)
	}
	recv.DoneWithData(span.Len())
	return ""
}
