package instruments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobal_CaseInsensitiveLookup(t *testing.T) {
	reg := Global()
	inst, ok := reg.Get("EURUSD")
	require.True(t, ok)
	assert.Equal(t, "eurusd", inst.ID)
	assert.Equal(t, CategoryForex, inst.Category)
	assert.Equal(t, uint32(100000), inst.DecimalFactor)
}

func TestGlobal_UnknownInstrument(t *testing.T) {
	_, ok := Global().Get("not-a-real-instrument")
	assert.False(t, ok)
}

func TestGlobal_IsSingleton(t *testing.T) {
	assert.Same(t, Global(), Global())
}

func TestInstrument_DecimalFactorF64(t *testing.T) {
	inst := Instrument{DecimalFactor: 1000}
	assert.InDelta(t, 1000.0, inst.DecimalFactorF64(), 1e-9)
}
