package models

import "time"

// GameHistory is the immutable record of one settled roulette round. Rows
// are only ever created, never updated.
type GameHistory struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	UserID      int64     `json:"user_id" gorm:"index"`
	Outcome     int       `json:"outcome"`
	TotalStaked int64     `json:"total_staked"`
	TotalWin    int64     `json:"total_win"`
	Mode        string    `json:"mode"`
	CreatedAt   time.Time `json:"created_at"`
}
