package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		set   bool
	}{
		{"26.00", 26, true},
		{"$1,299.99", 1299.99, true},
		{"99 ر.س", 99, true},
		{"-5", -5, true},
		{"12.5.3", 12.5, true},
		{".75", 0.75, true},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			n := ParseNumber(tt.input)
			assert.Equal(t, tt.set, n.IsSet())
			assert.InDelta(t, tt.want, n.Float(), 1e-9)
		})
	}
}

func TestNumber_Unmarshal(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		set   bool
	}{
		{`42`, 42, true},
		{`0`, 0, true},
		{`-1.5`, -1.5, true},
		{`"26.00"`, 26, true},
		{`"SAR 10"`, 10, true},
		{`null`, 0, false},
		{`true`, 0, false},
		{`{"amount": 5}`, 0, false},
		{`[1]`, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var n Number
			require.NoError(t, json.Unmarshal([]byte(tt.input), &n))
			assert.Equal(t, tt.set, n.IsSet())
			assert.InDelta(t, tt.want, n.Float(), 1e-9)
		})
	}
}

func TestNumber_Decimal(t *testing.T) {
	assert.Equal(t, "19.99", ParseNumber("19.99").Decimal().String())
	assert.True(t, Number{}.Decimal().IsZero())
	assert.Equal(t, 3, NumberOf(3.9).Int())
}

func TestNumber_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		A Number `json:"a"`
		B Number `json:"b"`
	}{A: NumberOf(2.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 2.5, "b": null}`, string(out))
}

func TestFirstNonZero(t *testing.T) {
	assert.Equal(t, 3.0, FirstNonZero(Number{}, NumberOf(0), NumberOf(3), NumberOf(4)))
	assert.Equal(t, 0.0, FirstNonZero(Number{}, NumberOf(0)))
}

func TestFirstSet(t *testing.T) {
	v, ok := FirstSet(Number{}, NumberOf(0), NumberOf(3))
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)

	_, ok = FirstSet(Number{})
	assert.False(t, ok)
}
