package dmarx

// Randomized cursor walks against a brute-force model of the ring, for a
// mix of capacities including non-powers-of-two. The model is just two
// monotonic byte counters; the driver's modulo arithmetic has to agree with
// it at every step, across every wrap.

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pattern(i int) byte { return byte(i*31 + 0x55) }

func TestCursorWalk_MatchesBruteForceModel(t *testing.T) {
	t.Parallel()
	for _, capacity := range []int{16, 24, 128, 1024} {
		capacity := capacity
		t.Run("", func(t *testing.T) {
			t.Parallel()
			rng := rand.New(rand.NewSource(int64(capacity) * 7919))
			recv, sim, _ := newTestReceiver(t, capacity)
			base := sim.BufferAddress()

			var fedTotal, receivedTotal, ackedTotal int
			pendingAck := 0

			for step := 0; step < 5000; step++ {
				switch rng.Intn(3) {
				case 0: // producer side
					chunk := make([]byte, 1+rng.Intn(capacity))
					for i := range chunk {
						chunk[i] = pattern(fedTotal + i)
					}
					fedTotal += sim.Feed(chunk)

				case 1: // consumer side
					min := 1 + rng.Intn(4)
					max := min + rng.Intn(capacity)
					span, err := recv.ReceiveData(min, max)
					require.NoError(t, err)

					if span.Len() == 0 {
						// Empty happens exactly when under the minimum; a
						// wrap split below the minimum is handed out short,
						// not suppressed.
						assert.Less(t, fedTotal-receivedTotal, min)
					}
					// Never past the end of the buffer, never more than asked.
					assert.LessOrEqual(t, span.Address+uint32(span.Len()), base+uint32(capacity))
					assert.LessOrEqual(t, span.Len(), max)

					for i, b := range span.Data {
						require.Equal(t, pattern(receivedTotal+i), b,
							"byte %d of the stream corrupted", receivedTotal+i)
					}
					receivedTotal += span.Len()
					pendingAck += span.Len()

				case 2: // acknowledge some of what was handed out, in order
					if pendingAck > 0 {
						n := 1 + rng.Intn(pendingAck)
						recv.DoneWithData(n)
						pendingAck -= n
						ackedTotal += n
					}
				}

				// The availability query must agree with the model exactly.
				require.Equal(t, fedTotal-receivedTotal, recv.NumBytesAvailable(),
					"step %d: fed=%d received=%d", step, fedTotal, receivedTotal)
			}

			// Drain to quiescence.
			for recv.NumBytesAvailable() > 0 {
				span, err := recv.ReceiveAllData()
				require.NoError(t, err)
				receivedTotal += span.Len()
				pendingAck += span.Len()
			}
			recv.DoneWithData(pendingAck)
			ackedTotal += pendingAck

			assert.Equal(t, receivedTotal, ackedTotal)
			assert.Equal(t, recv.done, recv.outstanding)
			written := sim.ReadRegister(regBufferWritten)
			assert.Equal(t, written-base, recv.outstanding)
		})
	}
}

func TestRingDistance_AllQuadrants(t *testing.T) {
	t.Parallel()
	const capacity = 1024
	const base = simBufferAddress

	cases := []struct {
		name     string
		from, to uint32
		want     uint32
	}{
		{"empty", base + 100, base + 100, 0},
		{"ahead", base + 100, base + 612, 512},
		{"wrapped", base + 1000, base + 76, 100},
		{"almost full", base + 1, base + 0, capacity - 1},
		{"at origin", base, base + 1023, 1023},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ringDistance(tc.from, tc.to, capacity), tc.name)
	}
}
