package roulette

import (
	"context"
	"fmt"
)

// PlayerProfile is what the engine needs loaded to open a session.
type PlayerProfile struct {
	Balance int64
	Stats   Stats
}

// PlayerPatch is the post-round snapshot flushed back to the store.
type PlayerPatch struct {
	Balance int64
	Stats   Stats
}

// PlayerStore is the persistence collaborator behind the engine. Any
// document or relational store satisfying these operations suffices.
type PlayerStore interface {
	LoadPlayer(ctx context.Context, playerID int64) (PlayerProfile, error)
	SavePlayer(ctx context.Context, playerID int64, patch PlayerPatch) error
	AppendHistory(ctx context.Context, playerID int64, entry HistoryEntry) error
}

// FlushSettlement persists the last settlement. In-memory state is already
// consistent when this runs, so a failed write can be retried with the
// same result and without re-running game logic. It is a no-op when
// nothing is pending.
func (s *Session) FlushSettlement(ctx context.Context, store PlayerStore) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unflushed == nil {
		return nil
	}
	r := s.unflushed
	patch := PlayerPatch{Balance: r.NewBalance, Stats: r.Stats}
	if err := store.SavePlayer(ctx, s.PlayerID, patch); err != nil {
		return fmt.Errorf("flush settlement: save player: %w", err)
	}
	if err := store.AppendHistory(ctx, s.PlayerID, r.History); err != nil {
		return fmt.Errorf("flush settlement: append history: %w", err)
	}
	s.unflushed = nil
	return nil
}

// PendingFlush reports whether a settled round still awaits persistence.
func (s *Session) PendingFlush() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unflushed != nil
}

// LastSettlement returns the settlement awaiting persistence, nil if none.
func (s *Session) LastSettlement() *SettlementResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unflushed
}
