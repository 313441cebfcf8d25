package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyCents(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int64
	}{
		{"whole amount", "100", 10000},
		{"with cents", "19.99", 1999},
		{"sub-cent truncated", "0.999", 99},
		{"zero", "0", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := NewMoneyFromString(tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.want, m.Cents())
		})
	}
}

func TestMoneySign(t *testing.T) {
	assert.True(t, NewMoney(0).IsZero())
	assert.True(t, NewMoney(-1.5).IsNegative())
	assert.False(t, NewMoney(1.5).IsNegative())
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m, err := NewMoneyFromString("149.90")
	require.NoError(t, err)

	data, err := m.MarshalJSON()
	require.NoError(t, err)

	var out Money
	require.NoError(t, out.UnmarshalJSON(data))
	assert.Equal(t, "149.9", out.String())
}

func TestNewMoneyFromStringRejectsGarbage(t *testing.T) {
	_, err := NewMoneyFromString("not-a-number")
	assert.Error(t, err)
}
