package roulette

import (
	"sync"
	"time"
)

// Table is the shared multiplayer variant: one round state machine for the
// table, with bets from different players accumulating independently,
// keyed by (player, type, value). The table does not own player balances;
// the caller escrows and credits against its own store around PlaceBet
// and Settle.
type Table struct {
	mu         sync.Mutex
	state      State
	bets       map[int64]map[string]*Bet
	stakes     map[int64]int64
	outcome    int
	randSource RandSource
}

func NewTable() *Table {
	return &Table{
		state:      StateIdle,
		bets:       make(map[int64]map[string]*Bet),
		stakes:     make(map[int64]int64),
		randSource: defaultRandSource(),
	}
}

// SetRandSource overrides the outcome source. Tests use it to force spins.
func (t *Table) SetRandSource(r RandSource) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.randSource = r
}

func (t *Table) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// PlaceBet records a validated wager for a player. The caller has already
// checked funds and debited its store; the table only keeps the ledger.
func (t *Table) PlaceBet(playerID int64, betType BetType, value string, amount int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateIdle {
		return ErrRoundNotAcceptingBets
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	selector, err := normalizeSelector(betType, value)
	if err != nil {
		return ErrInvalidBetSelector
	}

	bet := &Bet{Type: betType, Value: selector, Amount: amount, Multiplier: Multiplier(betType)}
	if t.bets[playerID] == nil {
		t.bets[playerID] = make(map[string]*Bet)
	}
	if existing, ok := t.bets[playerID][bet.Key()]; ok {
		existing.Amount += amount
	} else {
		t.bets[playerID][bet.Key()] = bet
	}
	t.stakes[playerID] += amount
	return nil
}

// TotalStake returns the round's committed amount across all players.
func (t *Table) TotalStake() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	var total int64
	for _, s := range t.stakes {
		total += s
	}
	return total
}

// Players returns the IDs with bets in the current round.
func (t *Table) Players() []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]int64, 0, len(t.bets))
	for id := range t.bets {
		ids = append(ids, id)
	}
	return ids
}

// Spin freezes the table and draws the round's outcome.
func (t *Table) Spin() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateIdle {
		return 0, ErrAlreadySpinning
	}
	if len(t.bets) == 0 {
		return 0, ErrNoBetsPlaced
	}
	t.outcome = t.randSource(WheelSize)
	t.state = StateSpinning
	return t.outcome, nil
}

// Settle evaluates every player's bets against the pending outcome and
// returns one result per player. The table ledger is cleared and the
// round returns to idle.
func (t *Table) Settle() []*SettlementResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateSpinning {
		panic("roulette: table settle called without a pending spin")
	}

	now := time.Now()
	results := make([]*SettlementResult, 0, len(t.bets))
	for playerID, ledger := range t.bets {
		var totalWin, returnedStake int64
		var winners []WonBet
		for _, b := range ledger {
			if !b.Wins(t.outcome) {
				continue
			}
			win := b.Amount * b.Multiplier
			totalWin += win
			returnedStake += b.Amount
			winners = append(winners, WonBet{Type: b.Type, Value: b.Value, Amount: b.Amount, Win: win})
		}
		results = append(results, &SettlementResult{
			PlayerID:      playerID,
			Outcome:       t.outcome,
			OutcomeColor:  NumberColor(t.outcome),
			TotalWin:      totalWin,
			TotalReturned: totalWin + returnedStake,
			WinningBets:   winners,
			History: HistoryEntry{
				Outcome:     t.outcome,
				TotalStaked: t.stakes[playerID],
				TotalWin:    totalWin,
				PlayedAt:    now,
				Mode:        ModeTable,
			},
		})
	}

	t.bets = make(map[int64]map[string]*Bet)
	t.stakes = make(map[int64]int64)
	t.state = StateIdle
	return results
}
