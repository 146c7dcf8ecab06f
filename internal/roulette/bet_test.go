package roulette

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOddsTable(t *testing.T) {
	want := map[BetType]int64{
		BetStraight: 35,
		BetSplit:    17,
		BetStreet:   11,
		BetCorner:   8,
		BetLine:     5,
		BetDozen:    2,
		BetColumn:   2,
		BetRed:      1,
		BetBlack:    1,
		BetEven:     1,
		BetOdd:      1,
		BetLow:      1,
		BetHigh:     1,
	}
	for bt, m := range want {
		assert.Equal(t, m, Multiplier(bt), "multiplier for %s", bt)
	}
	assert.Equal(t, int64(0), Multiplier(BetType("hunch")))
}

func TestNormalizeSelector(t *testing.T) {
	cases := []struct {
		betType BetType
		value   string
		want    string
		ok      bool
	}{
		{BetStraight, "0", "0", true},
		{BetStraight, "36", "36", true},
		{BetStraight, "37", "", false},
		{BetStraight, "-1", "", false},
		{BetStraight, "seven", "", false},
		{BetSplit, "8-9", "8-9", true},
		{BetSplit, "9-8", "8-9", true},
		{BetSplit, "8-11", "8-11", true},
		{BetSplit, "0-2", "0-2", true},
		{BetSplit, "0-4", "", false},
		{BetSplit, "3-4", "", false}, // 3 ends its row, 4 starts the next
		{BetSplit, "8-10", "", false},
		{BetSplit, "8", "", false},
		{BetStreet, "1", "1", true},
		{BetStreet, "34", "34", true},
		{BetStreet, "2", "", false},
		{BetCorner, "8", "8", true},
		{BetCorner, "32", "32", true},
		{BetCorner, "33", "", false},
		{BetCorner, "36", "", false},
		{BetLine, "31", "31", true},
		{BetLine, "34", "", false},
		{BetDozen, "1", "1", true},
		{BetDozen, "3", "3", true},
		{BetDozen, "4", "", false},
		{BetDozen, "0", "", false},
		{BetColumn, "2", "2", true},
		{BetColumn, "5", "", false},
		{BetRed, "", "", true},
		{BetRed, "red", "", true},
		{BetRed, "12", "", false},
		{BetHigh, "", "", true},
		{BetType("hunch"), "1", "", false},
	}

	for _, tc := range cases {
		got, err := normalizeSelector(tc.betType, tc.value)
		if tc.ok {
			require.NoError(t, err, "%s %q", tc.betType, tc.value)
			assert.Equal(t, tc.want, got, "%s %q", tc.betType, tc.value)
		} else {
			assert.Error(t, err, "%s %q should be rejected", tc.betType, tc.value)
		}
	}
}

func TestBetWins(t *testing.T) {
	cases := []struct {
		name    string
		bet     Bet
		outcome int
		wins    bool
	}{
		{"straight hit", Bet{Type: BetStraight, Value: "7"}, 7, true},
		{"straight miss", Bet{Type: BetStraight, Value: "7"}, 8, false},
		{"straight zero", Bet{Type: BetStraight, Value: "0"}, 0, true},
		{"split low side", Bet{Type: BetSplit, Value: "8-9"}, 8, true},
		{"split high side", Bet{Type: BetSplit, Value: "8-9"}, 9, true},
		{"split miss", Bet{Type: BetSplit, Value: "8-9"}, 10, false},
		{"street hit", Bet{Type: BetStreet, Value: "4"}, 6, true},
		{"street miss", Bet{Type: BetStreet, Value: "4"}, 7, false},
		{"corner hit", Bet{Type: BetCorner, Value: "8"}, 12, true},
		{"corner miss", Bet{Type: BetCorner, Value: "8"}, 10, false},
		{"line hit", Bet{Type: BetLine, Value: "1"}, 6, true},
		{"line miss", Bet{Type: BetLine, Value: "1"}, 7, false},
		{"dozen 1 hit", Bet{Type: BetDozen, Value: "1"}, 12, true},
		{"dozen 2 hit", Bet{Type: BetDozen, Value: "2"}, 13, true},
		{"dozen 3 hit", Bet{Type: BetDozen, Value: "3"}, 36, true},
		{"dozen zero", Bet{Type: BetDozen, Value: "1"}, 0, false},
		{"column 1 hit", Bet{Type: BetColumn, Value: "1"}, 34, true},
		{"column 3 hit", Bet{Type: BetColumn, Value: "3"}, 36, true},
		{"column zero", Bet{Type: BetColumn, Value: "1"}, 0, false},
		{"red hit", Bet{Type: BetRed}, 19, true},
		{"red on black", Bet{Type: BetRed}, 17, false},
		{"black hit", Bet{Type: BetBlack}, 17, true},
		{"red on zero", Bet{Type: BetRed}, 0, false},
		{"black on zero", Bet{Type: BetBlack}, 0, false},
		{"even hit", Bet{Type: BetEven}, 18, true},
		{"even on zero", Bet{Type: BetEven}, 0, false},
		{"odd hit", Bet{Type: BetOdd}, 9, true},
		{"odd on zero", Bet{Type: BetOdd}, 0, false},
		{"low hit", Bet{Type: BetLow}, 18, true},
		{"low on 19", Bet{Type: BetLow}, 19, false},
		{"high hit", Bet{Type: BetHigh}, 19, true},
		{"high on zero", Bet{Type: BetHigh}, 0, false},
		{"unknown type loses", Bet{Type: BetType("hunch"), Value: "7"}, 7, false},
		{"malformed split loses", Bet{Type: BetSplit, Value: "banana"}, 8, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wins, tc.bet.Wins(tc.outcome))
		})
	}
}

// Wins must be total: every type against every outcome, no panics.
func TestBetWinsTotal(t *testing.T) {
	types := []BetType{
		BetStraight, BetSplit, BetStreet, BetCorner, BetLine,
		BetDozen, BetColumn, BetRed, BetBlack, BetEven, BetOdd,
		BetLow, BetHigh, BetType("hunch"),
	}
	for _, bt := range types {
		b := Bet{Type: bt, Value: "1"}
		for o := -1; o <= WheelSize; o++ {
			first := b.Wins(o)
			assert.Equal(t, first, b.Wins(o), "%s must be deterministic for outcome %d", bt, o)
		}
	}
}

func TestBetKeyAccumulation(t *testing.T) {
	a := Bet{Type: BetDozen, Value: "1"}
	b := Bet{Type: BetDozen, Value: "2"}
	c := Bet{Type: BetRed}
	assert.Equal(t, "dozen:1", a.Key())
	assert.NotEqual(t, a.Key(), b.Key())
	assert.Equal(t, "red", c.Key())
}
