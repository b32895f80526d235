package pricing_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/pricewatch/pkg/pricing"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string // empty means nil expected
	}{
		{name: "decimal string", input: "0.003", want: "0.003"},
		{name: "zero string", input: "0", want: "0"},
		{name: "padded zero string", input: "0.00", want: "0"},
		{name: "integer string", input: "15", want: "15"},
		{name: "nil", input: nil, want: ""},
		{name: "empty string", input: "", want: ""},
		{name: "garbage string", input: "not-a-price", want: ""},
		{name: "numeric zero", input: float64(0), want: ""},
		{name: "int zero", input: 0, want: ""},
		{name: "float value", input: 0.25, want: "0.25"},
		{name: "int value", input: 12, want: "12"},
		{name: "json number", input: json.Number("0.0001"), want: "0.0001"},
		{name: "bool", input: true, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pricing.ParseMoney(tt.input)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestMoneyCanonicalString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "0", want: "0"},
		{input: "0.00", want: "0"},
		{input: "0.010", want: "0.01"},
		{input: "1.500", want: "1.5"},
		{input: "0.000001", want: "0.000001"},
		{input: "1000000", want: "1000000"},
		{input: "-0.250", want: "-0.25"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, pricing.MustMoney(tt.input).String())
		})
	}
}

// Canonical strings round-trip unchanged; downstream equality checks rely
// on this.
func TestMoneyRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "0.003", "0.01", "12", "1.5", "0.000001", "3000"} {
		got := pricing.ParseMoney(s)
		if got == nil {
			t.Fatalf("ParseMoney(%q) returned nil", s)
		}
		if got.String() != s {
			t.Errorf("round trip %q -> %q", s, got.String())
		}
	}
}

func TestMoneyComparisons(t *testing.T) {
	small := pricing.MustMoney("0.003")
	big := pricing.MustMoney("0.0030000001")

	assert.True(t, small.LessThan(*big))
	assert.True(t, big.GreaterThan(*small))
	assert.True(t, small.Equal(*pricing.MustMoney("0.00300")))
	assert.False(t, small.Equal(*big))
	assert.Equal(t, 0, small.Cmp(*small))
	assert.True(t, pricing.MustMoney("0").IsZero())
	assert.True(t, pricing.Zero().IsZero())
	assert.False(t, small.IsZero())
}

func TestMoneyArithmetic(t *testing.T) {
	assert.Equal(t, "0.002", pricing.MustMoney("0.012").Sub(*pricing.MustMoney("0.01")).String())
	assert.Equal(t, "3000", pricing.MustMoney("0.003").MulMTok().String())
	assert.Equal(t, "0", pricing.Zero().MulMTok().String())
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(pricing.MustMoney("0.010"))
	require.NoError(t, err)
	assert.Equal(t, `"0.01"`, string(data))

	var m pricing.Money
	require.NoError(t, json.Unmarshal([]byte(`"0.25"`), &m))
	assert.Equal(t, "0.25", m.String())

	require.NoError(t, json.Unmarshal([]byte(`0.5`), &m))
	assert.Equal(t, "0.5", m.String())
}

func TestFormatMoney(t *testing.T) {
	assert.Nil(t, pricing.FormatMoney(nil))

	got := pricing.FormatMoney(pricing.MustMoney("0.010"))
	require.NotNil(t, got)
	assert.Equal(t, "0.01", *got)
}
