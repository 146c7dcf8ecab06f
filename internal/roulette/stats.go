package roulette

import "time"

// Stats holds a player's running counters, updated once per settled round.
type Stats struct {
	GamesPlayed   int64 `json:"games_played"`
	GamesWon      int64 `json:"games_won"`
	WinStreak     int64 `json:"win_streak"`
	HighestWin    int64 `json:"highest_win"`
	TotalWinnings int64 `json:"total_winnings"`
	XP            int64 `json:"xp"`
}

func (s *Stats) record(totalStaked, totalWin int64) {
	s.GamesPlayed++
	s.XP += totalStaked
	if totalWin > 0 {
		s.GamesWon++
		s.WinStreak++
		s.TotalWinnings += totalWin
		if totalWin > s.HighestWin {
			s.HighestWin = totalWin
		}
	} else {
		s.WinStreak = 0
	}
}

// WinRate is gamesWon/gamesPlayed, 0 before the first game.
func (s Stats) WinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.GamesWon) / float64(s.GamesPlayed)
}

// Level derives the player level from accumulated XP.
func (s Stats) Level() int64 {
	return s.XP/1000 + 1
}

// HistoryEntry is the immutable record of one settled round.
type HistoryEntry struct {
	Outcome     int       `json:"outcome"`
	TotalStaked int64     `json:"total_staked"`
	TotalWin    int64     `json:"total_win"`
	PlayedAt    time.Time `json:"played_at"`
	Mode        Mode      `json:"mode"`
}
