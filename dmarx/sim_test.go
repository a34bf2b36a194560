package dmarx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimFeed_Backpressure(t *testing.T) {
	t.Parallel()
	recv, sim, _ := newTestReceiver(t, 16)

	// One byte always stays free, so at most capacity-1 fits.
	assert.Equal(t, 15, sim.Feed(make([]byte, 100)))
	assert.Equal(t, 15, recv.NumBytesAvailable())
	assert.Equal(t, 0, sim.Feed([]byte{0xaa}))

	// Releasing space lets the writer move again.
	span, err := recv.ReceiveAllData()
	require.NoError(t, err)
	recv.DoneWithData(span.Len())
	assert.Equal(t, 5, sim.Feed(make([]byte, 5)))
}

func TestSimFeed_RequiresEnable(t *testing.T) {
	t.Parallel()
	sim := NewSimulatedEngine(16)
	assert.Equal(t, 0, sim.Feed([]byte("dropped")))
}

func TestSimInterrupt_Coalesced(t *testing.T) {
	t.Parallel()
	_, sim, _ := newTestReceiver(t, 64)

	sim.Feed([]byte("one"))
	sim.Feed([]byte("two"))
	sim.InjectWriteError()

	// Any number of latched events collapse into a single pending wake.
	select {
	case <-sim.Interrupt():
	default:
		t.Fatal("expected a pending interrupt wake")
	}
	select {
	case <-sim.Interrupt():
		t.Fatal("interrupt line not coalesced")
	default:
	}

	// A new event after the wake re-arms the line.
	sim.Feed([]byte("three"))
	select {
	case <-sim.Interrupt():
	default:
		t.Fatal("expected a fresh wake after a new event")
	}
}

func TestSimRegisters_WriteOnlyReadBackZero(t *testing.T) {
	t.Parallel()
	_, sim, _ := newTestReceiver(t, 64)

	assert.Zero(t, sim.ReadRegister(regBufferStart))
	assert.Zero(t, sim.ReadRegister(regBufferEnd))
	assert.Zero(t, sim.ReadRegister(regBufferRead))
	assert.Equal(t, uint32(configEnable), sim.ReadRegister(regConfig))
}
