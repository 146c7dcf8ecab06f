package models

import (
	"context"

	"github.com/BumsCross1/roulette-api/internal/roulette"
	"github.com/BumsCross1/roulette-api/pkg/logger"

	"gorm.io/gorm"
)

// GormPlayerStore backs the roulette engine's persistence seam with the
// users and game history tables.
type GormPlayerStore struct {
	db *gorm.DB
}

func NewPlayerStore(db *gorm.DB) *GormPlayerStore {
	return &GormPlayerStore{db: db}
}

func (s *GormPlayerStore) LoadPlayer(ctx context.Context, playerID int64) (roulette.PlayerProfile, error) {
	var user User
	if err := s.db.WithContext(ctx).First(&user, playerID).Error; err != nil {
		return roulette.PlayerProfile{}, logger.WrapError(err, "")
	}

	return roulette.PlayerProfile{
		Balance: user.BalanceChips,
		Stats: roulette.Stats{
			GamesPlayed:   user.GamesPlayed,
			GamesWon:      user.GamesWon,
			WinStreak:     user.WinStreak,
			HighestWin:    user.HighestWin,
			TotalWinnings: user.TotalWinnings,
			XP:            user.XP,
		},
	}, nil
}

func (s *GormPlayerStore) SavePlayer(ctx context.Context, playerID int64, patch roulette.PlayerPatch) error {
	err := s.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", playerID).
		Updates(map[string]interface{}{
			"balance_chips":  patch.Balance,
			"games_played":   patch.Stats.GamesPlayed,
			"games_won":      patch.Stats.GamesWon,
			"win_streak":     patch.Stats.WinStreak,
			"highest_win":    patch.Stats.HighestWin,
			"total_winnings": patch.Stats.TotalWinnings,
			"xp":             patch.Stats.XP,
		}).Error
	if err != nil {
		return logger.WrapError(err, "")
	}
	return nil
}

func (s *GormPlayerStore) AppendHistory(ctx context.Context, playerID int64, entry roulette.HistoryEntry) error {
	record := GameHistory{
		UserID:      playerID,
		Outcome:     entry.Outcome,
		TotalStaked: entry.TotalStaked,
		TotalWin:    entry.TotalWin,
		Mode:        string(entry.Mode),
		CreatedAt:   entry.PlayedAt,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return logger.WrapError(err, "")
	}
	return nil
}
