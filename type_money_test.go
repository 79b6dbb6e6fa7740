package costbasis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_String(t *testing.T) {
	tests := []struct {
		m    Money
		want string
	}{
		{USD(1234.5), "$1,234.50"},
		{USD(-18), "-$18.00"},
		{USD(6.666), "$6.67"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.m.String())
	}
	assert.Equal(t, "+$65.00", USD(65).SignedString())
}

func TestMoney_Arithmetic(t *testing.T) {
	// a zero value adopts the currency of the other operand.
	var total Money
	total = total.Add(USD(10))
	assert.Equal(t, "USD", total.Currency())

	third := USD(10).Div(Q(3))
	assert.Equal(t, "$10.00", third.Mul(Q(3)).String())

	assert.Panics(t, func() { USD(1).Add(EUR(1)) })
}

func TestParseMoney(t *testing.T) {
	m, err := ParseMoney("12.50", "USD")
	require.NoError(t, err)
	assertMoney(t, USD(12.5), m, "ParseMoney")

	_, err = ParseMoney("twelve", "USD")
	assert.Error(t, err)
}
