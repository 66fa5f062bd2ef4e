package protocol

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLineValidOrder(t *testing.T) {
	d, err := DecodeLine(`{"side":"buy","price":"100.50","quantity":10}`)
	require.NoError(t, err)
	assert.Equal(t, SideBuy, d.Side)
	assert.True(t, d.Price.Equal(decimal.RequireFromString("100.50")))
	assert.Equal(t, uint32(10), d.Quantity)
}

func TestDecodeLineAcceptsBareNumericPrice(t *testing.T) {
	d, err := DecodeLine(`{"side":"buy","price":100.50,"quantity":10}`)
	require.NoError(t, err)
	assert.True(t, d.Price.Equal(decimal.RequireFromString("100.50")))
}

func TestDecodeLineSideIsCaseInsensitive(t *testing.T) {
	d, err := DecodeLine(`{"side":"SELL","price":"10","quantity":1}`)
	require.NoError(t, err)
	assert.Equal(t, SideSell, d.Side)
}

func TestDecodeLineRejectsInvalidSide(t *testing.T) {
	_, err := DecodeLine(`{"side":"hold","price":"10","quantity":1}`)
	assert.ErrorIs(t, err, ErrInvalidSide)
}

func TestDecodeLineRejectsMalformedJSON(t *testing.T) {
	_, err := DecodeLine(`not json`)
	assert.Error(t, err)
}

func TestDecodeLineRejectsNonPositivePrice(t *testing.T) {
	_, err := DecodeLine(`{"side":"buy","price":"0","quantity":1}`)
	assert.Error(t, err)

	_, err = DecodeLine(`{"side":"buy","price":"-5","quantity":1}`)
	assert.Error(t, err)
}

func TestDecodeLineRejectsZeroQuantity(t *testing.T) {
	_, err := DecodeLine(`{"side":"buy","price":"10","quantity":0}`)
	assert.Error(t, err)
}
