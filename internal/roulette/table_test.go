package roulette

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableAccumulatesPerPlayer(t *testing.T) {
	tbl := NewTable()

	require.NoError(t, tbl.PlaceBet(1, BetRed, "", 100))
	require.NoError(t, tbl.PlaceBet(2, BetRed, "", 50))
	require.NoError(t, tbl.PlaceBet(1, BetRed, "", 100))

	assert.Equal(t, int64(250), tbl.TotalStake())
	assert.ElementsMatch(t, []int64{1, 2}, tbl.Players())
}

func TestTableRejectsBetsWhileSpinning(t *testing.T) {
	tbl := NewTable()
	tbl.SetRandSource(forced(17))
	require.NoError(t, tbl.PlaceBet(1, BetRed, "", 100))

	_, err := tbl.Spin()
	require.NoError(t, err)

	assert.ErrorIs(t, tbl.PlaceBet(2, BetBlack, "", 100), ErrRoundNotAcceptingBets)
	_, err = tbl.Spin()
	assert.ErrorIs(t, err, ErrAlreadySpinning)
}

func TestTableSettlesEachPlayerIndependently(t *testing.T) {
	tbl := NewTable()
	tbl.SetRandSource(forced(17)) // black

	require.NoError(t, tbl.PlaceBet(1, BetBlack, "", 100))
	require.NoError(t, tbl.PlaceBet(2, BetRed, "", 100))
	require.NoError(t, tbl.PlaceBet(3, BetStraight, "17", 10))

	_, err := tbl.Spin()
	require.NoError(t, err)

	results := tbl.Settle()
	require.Len(t, results, 3)

	byPlayer := map[int64]*SettlementResult{}
	for _, r := range results {
		byPlayer[r.PlayerID] = r
	}

	assert.Equal(t, int64(100), byPlayer[1].TotalWin)
	assert.Equal(t, int64(200), byPlayer[1].TotalReturned)
	assert.Equal(t, int64(0), byPlayer[2].TotalWin)
	assert.Equal(t, int64(0), byPlayer[2].TotalReturned)
	assert.Equal(t, int64(350), byPlayer[3].TotalWin)
	assert.Equal(t, int64(360), byPlayer[3].TotalReturned)

	for _, r := range results {
		assert.Equal(t, 17, r.Outcome)
		assert.Equal(t, ModeTable, r.History.Mode)
	}

	assert.Equal(t, StateIdle, tbl.State())
	assert.Equal(t, int64(0), tbl.TotalStake())
	assert.Empty(t, tbl.Players())
}

func TestTableSpinRequiresBets(t *testing.T) {
	tbl := NewTable()
	_, err := tbl.Spin()
	assert.ErrorIs(t, err, ErrNoBetsPlaced)
}
