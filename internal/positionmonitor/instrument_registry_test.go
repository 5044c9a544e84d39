package positionmonitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentMasterResolveAndLookup(t *testing.T) {
	m := NewInstrumentMaster()
	expiry := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	m.Put("NIFTY", expiry, 24000, LegTypeCall, "NIFTY26AUG24000CE", 101)
	m.Put("NIFTY", expiry, 24000, LegTypePut, "NIFTY26AUG24000PE", 102)

	symbol, token, err := m.Resolve("NIFTY", expiry, 24000, LegTypeCall)
	require.NoError(t, err)
	assert.Equal(t, "NIFTY26AUG24000CE", symbol)
	assert.Equal(t, int64(101), token)

	gotSymbol, err := m.SymbolForToken(102)
	require.NoError(t, err)
	assert.Equal(t, "NIFTY26AUG24000PE", gotSymbol)

	gotToken, err := m.TokenForSymbol("NIFTY26AUG24000CE")
	require.NoError(t, err)
	assert.Equal(t, int64(101), gotToken)
}

func TestInstrumentMasterResolveUnknownStrikeIsError(t *testing.T) {
	m := NewInstrumentMaster()
	_, _, err := m.Resolve("NIFTY", time.Now(), 24000, LegTypeCall)
	assert.Error(t, err)
}

func TestInstrumentMasterUnknownTokenAndSymbolAreErrors(t *testing.T) {
	m := NewInstrumentMaster()
	_, err := m.SymbolForToken(999)
	assert.Error(t, err)
	_, err = m.TokenForSymbol("NOPE")
	assert.Error(t, err)
}
