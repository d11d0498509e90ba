package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeRoundsHalfAwayFromZero(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"half rounds up", "0.00005", "0.0001"},
		{"negative half rounds away", "-0.00005", "-0.0001"},
		{"below half rounds down", "0.00004", "0"},
		{"above half rounds up", "0.00006", "0.0001"},
		{"already normalized", "12.3456", "12.3456"},
		{"extra precision trimmed", "1.00009", "1.0001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := decimal.RequireFromString(tt.input)
			want := decimal.RequireFromString(tt.want)
			assert.True(t, Normalize(in).Equal(want),
				"Normalize(%s) = %s, want %s", tt.input, Normalize(in), want)
		})
	}
}

func TestFromStringInvalidInput(t *testing.T) {
	assert.True(t, FromString("").IsZero())
	assert.True(t, FromString("not-a-number").IsZero())
	assert.True(t, FromString("10.5").Equal(decimal.RequireFromString("10.5")))
}

func TestRepeatedAdditionIsStable(t *testing.T) {
	step := FromString("0.0001")
	sum := decimal.Zero
	for i := 0; i < 10000; i++ {
		sum = Normalize(sum.Add(step))
	}
	assert.True(t, sum.Equal(decimal.RequireFromString("1.0000")),
		"10000 additions of 0.0001 yielded %s", sum)
}

func TestIsPositive(t *testing.T) {
	assert.False(t, IsPositive(FromString("0.00004")), "rounds to zero")
	assert.True(t, IsPositive(FromString("0.00005")), "rounds to 0.0001")
	assert.False(t, IsPositive(FromString("-1")))
}
