package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsHexAddress(t *testing.T) {
	tests := []struct {
		str string
		exp bool
	}{
		{"Mx5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", true},
		{"5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", true},
		{"MxAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", true},
		{"Mx5aaeb6053f3e94c9b9a09f33669435e7ef1beaed1", false},
		{"Mx5aaeb6053f3e94c9b9a09f33669435e7ef1beae", false},
		{"Mxxaaeb6053f3e94c9b9a09f33669435e7ef1beaed", false},
	}

	for _, test := range tests {
		if result := IsHexAddress(test.str); result != test.exp {
			t.Errorf("IsHexAddress(%s) == %v; expected %v", test.str, result, test.exp)
		}
	}
}

func TestAddressJSON(t *testing.T) {
	addr := HexToAddress("Mx5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")

	data, err := json.Marshal(addr)
	require.NoError(t, err)
	require.Equal(t, `"Mx5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"`, string(data))

	var decoded Address
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, addr, decoded)

	require.Error(t, json.Unmarshal([]byte(`"Mx12"`), &decoded))
}

func TestNameToAddressIsDeterministic(t *testing.T) {
	require.Equal(t, NameToAddress("treasury"), NameToAddress("treasury"))
	require.NotEqual(t, NameToAddress("treasury"), NameToAddress("platform"))
	require.False(t, NameToAddress("treasury").IsZero())
}

func TestParsePoolType(t *testing.T) {
	for _, p := range PoolTypes {
		parsed, err := ParsePoolType(p.String())
		require.NoError(t, err)
		require.Equal(t, p, parsed)
	}
	_, err := ParsePoolType("jackpot")
	require.Error(t, err)
}

func TestDefaultParamsAreValid(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())

	p := DefaultParams()
	p.WithdrawalRates = []RateTier{{MinDirects: 3, RateBP: 7000}}
	require.Error(t, p.Validate())

	p = DefaultParams()
	p.ReinvestLevelBP = 9000
	require.Error(t, p.Validate())
}

func TestDay(t *testing.T) {
	require.Equal(t, uint64(0), Day(SecondsPerDay-1))
	require.Equal(t, uint64(1), Day(SecondsPerDay))
}
