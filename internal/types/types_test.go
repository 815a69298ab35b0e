package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPubkeyBase58RoundTrip(t *testing.T) {
	const addr = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
	p, err := TryPubkeyFromBase58(addr)
	require.NoError(t, err)
	assert.Equal(t, addr, p.String())
	assert.False(t, p.IsZero())

	_, err = TryPubkeyFromBase58("abc")
	assert.Error(t, err)
}

func TestPubkeyFromBytes(t *testing.T) {
	_, err := PubkeyFromBytes(make([]byte, 31))
	assert.Error(t, err)

	p, err := PubkeyFromBytes(make([]byte, 32))
	require.NoError(t, err)
	assert.True(t, p.IsZero())
	assert.Equal(t, "11111111111111111111111111111111", p.String())
}

func TestUint128String(t *testing.T) {
	tests := []struct {
		name string
		in   Uint128
		want string
	}{
		{"zero", Uint128{}, "0"},
		{"lo only", Uint128{Lo: 42}, "42"},
		{"max lo", Uint128{Lo: ^uint64(0)}, "18446744073709551615"},
		{"hi one", Uint128{Hi: 1}, "18446744073709551616"},
		{"max", Uint128{Lo: ^uint64(0), Hi: ^uint64(0)}, "340282366920938463463374607431768211455"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.String())
		})
	}
}

func TestUint128FromLE(t *testing.T) {
	b := []byte{1, 0, 0, 0, 0, 0, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0}
	assert.Equal(t, Uint128{Lo: 1, Hi: 2}, Uint128FromLE(b))
}
