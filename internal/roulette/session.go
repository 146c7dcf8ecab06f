package roulette

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

type State string

const (
	// StateIdle accepts bet placement, removal and clearing.
	StateIdle State = "idle"
	// StateSpinning freezes the bet set until the round is settled.
	StateSpinning State = "spinning"
)

type Mode string

const (
	ModeSolo  Mode = "solo"
	ModeTable Mode = "table"
)

var (
	ErrRoundNotAcceptingBets = errors.New("round is not accepting bets")
	ErrInvalidAmount         = errors.New("bet amount must be a positive number of chips")
	ErrInsufficientFunds     = errors.New("insufficient balance")
	ErrInvalidBetSelector    = errors.New("invalid bet selector")
	ErrNoBetsPlaced          = errors.New("no bets placed")
	ErrAlreadySpinning       = errors.New("wheel is already spinning")
	ErrRoundSpinning         = errors.New("bets are frozen while the wheel is spinning")
)

// Session is the betting state of one player: balance, the current round's
// bet ledger and the round state machine. It replaces the source's scattered
// per-player globals with one explicit object, so all operations and tests
// go through it. Operations serialize on an internal mutex, so concurrent
// callers see the state machine's rejections instead of corrupting the
// ledger; read Balance and Stats through Snapshot when other goroutines may
// be operating on the session.
type Session struct {
	PlayerID int64
	Balance  int64
	Stats    Stats
	Mode     Mode

	mu      sync.Mutex
	state   State
	bets    map[string]*Bet
	stake   int64
	outcome int

	// unflushed holds the last settlement until FlushSettlement persists
	// it, keeping game logic and persistence separately retryable.
	unflushed *SettlementResult

	randSource RandSource
}

// NewSession creates an idle session for a player with the given balance
// and statistics, drawing outcomes from math/rand.
func NewSession(playerID, balance int64, stats Stats) *Session {
	return &Session{
		PlayerID:   playerID,
		Balance:    balance,
		Stats:      stats,
		Mode:       ModeSolo,
		state:      StateIdle,
		bets:       make(map[string]*Bet),
		randSource: defaultRandSource(),
	}
}

// SetRandSource overrides the outcome source. Tests use it to force spins.
func (s *Session) SetRandSource(r RandSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.randSource = r
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stake returns the round's total committed amount.
func (s *Session) Stake() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stake
}

// Snapshot returns the balance and statistics consistently with respect
// to concurrent operations on the session.
func (s *Session) Snapshot() (int64, Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Balance, s.Stats
}

// Bets returns copies of the current bet entries.
func (s *Session) Bets() []*Bet {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Bet, 0, len(s.bets))
	for _, b := range s.bets {
		entry := *b
		out = append(out, &entry)
	}
	return out
}

// PlaceBet validates and escrows a wager. Placement either fully succeeds
// (balance debited, entry recorded) or fully fails with no state change.
// Re-placing on the same (type, value) accumulates into the existing entry.
func (s *Session) PlaceBet(t BetType, value string, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return ErrRoundNotAcceptingBets
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > s.Balance {
		return ErrInsufficientFunds
	}
	selector, err := normalizeSelector(t, value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBetSelector, err)
	}

	bet := &Bet{Type: t, Value: selector, Amount: amount, Multiplier: Multiplier(t)}
	s.Balance -= amount
	s.stake += amount
	if existing, ok := s.bets[bet.Key()]; ok {
		existing.Amount += amount
	} else {
		s.bets[bet.Key()] = bet
	}
	return nil
}

// RemoveBet refunds and deletes one bet entry. It returns the refunded
// amount, 0 if no such bet exists.
func (s *Session) RemoveBet(key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return 0, ErrRoundSpinning
	}
	bet, ok := s.bets[key]
	if !ok {
		return 0, nil
	}
	delete(s.bets, key)
	s.Balance += bet.Amount
	s.stake -= bet.Amount
	return bet.Amount, nil
}

// ClearBets refunds every bet of the round and empties the ledger,
// returning the total refunded.
func (s *Session) ClearBets() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return 0, ErrRoundSpinning
	}
	refunded := s.stake
	s.Balance += refunded
	s.stake = 0
	s.bets = make(map[string]*Bet)
	return refunded, nil
}

// Spin freezes the bet set and draws the round's outcome uniformly from
// the 37 pockets.
func (s *Session) Spin() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return 0, ErrAlreadySpinning
	}
	if len(s.bets) == 0 {
		return 0, ErrNoBetsPlaced
	}
	s.outcome = s.randSource(WheelSize)
	s.state = StateSpinning
	return s.outcome, nil
}

// WonBet reports one winning entry of a settled round.
type WonBet struct {
	Type   BetType `json:"type"`
	Value  string  `json:"value"`
	Amount int64   `json:"amount"`
	Win    int64   `json:"win"`
}

// SettlementResult is the outcome of one settled round. TotalWin is
// winnings only; TotalReturned additionally includes the stakes handed
// back on winning bets. Losing bets forfeit their escrowed stake.
type SettlementResult struct {
	PlayerID      int64        `json:"-"`
	Outcome       int          `json:"outcome"`
	OutcomeColor  Color        `json:"outcome_color"`
	TotalWin      int64        `json:"total_win"`
	TotalReturned int64        `json:"total_returned"`
	WinningBets   []WonBet     `json:"winning_bets"`
	NewBalance    int64        `json:"new_balance"`
	History       HistoryEntry `json:"-"`
	Stats         Stats        `json:"-"`
}

// Settle evaluates every bet against the pending outcome, credits the
// balance, records history and statistics, and returns the round to idle.
// Calling it without a pending spin is a caller bug, not a user error.
func (s *Session) Settle() *SettlementResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSpinning {
		panic("roulette: settle called without a pending spin")
	}

	var totalWin, returnedStake int64
	var winners []WonBet
	for _, b := range s.bets {
		if !b.Wins(s.outcome) {
			continue
		}
		win := b.Amount * b.Multiplier
		totalWin += win
		returnedStake += b.Amount
		winners = append(winners, WonBet{Type: b.Type, Value: b.Value, Amount: b.Amount, Win: win})
	}
	totalReturned := totalWin + returnedStake
	s.Balance += totalReturned

	entry := HistoryEntry{
		Outcome:     s.outcome,
		TotalStaked: s.stake,
		TotalWin:    totalWin,
		PlayedAt:    time.Now(),
		Mode:        s.Mode,
	}
	s.Stats.record(s.stake, totalWin)

	result := &SettlementResult{
		PlayerID:      s.PlayerID,
		Outcome:       s.outcome,
		OutcomeColor:  NumberColor(s.outcome),
		TotalWin:      totalWin,
		TotalReturned: totalReturned,
		WinningBets:   winners,
		NewBalance:    s.Balance,
		History:       entry,
		Stats:         s.Stats,
	}
	s.unflushed = result

	s.bets = make(map[string]*Bet)
	s.stake = 0
	s.state = StateIdle
	return result
}

// BetSummary describes the current round for display.
type BetSummary struct {
	TotalBet     int64 `json:"total_bet"`
	TotalBets    int   `json:"total_bets"`
	PotentialWin int64 `json:"potential_win"`
}

// Summary reports the round's committed amount, entry count and the
// winnings (stake excluded) if every entry were to win.
func (s *Session) Summary() BetSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	var potential int64
	for _, b := range s.bets {
		potential += b.Amount * b.Multiplier
	}
	return BetSummary{TotalBet: s.stake, TotalBets: len(s.bets), PotentialWin: potential}
}
