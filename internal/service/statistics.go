package service

import (
	"errors"

	"github.com/BumsCross1/roulette-api/cmd/db"
	"github.com/BumsCross1/roulette-api/internal/middleware"
	"github.com/BumsCross1/roulette-api/internal/models"
	"github.com/BumsCross1/roulette-api/internal/roulette"
	"github.com/BumsCross1/roulette-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetUserStatistics handles GET requests for the caller's lifetime game
// counters and the figures derived from them.
func GetUserStatistics(c *gin.Context) {
	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"error": "user not found"})
			return
		}
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	stats := roulette.Stats{
		GamesPlayed:   user.GamesPlayed,
		GamesWon:      user.GamesWon,
		WinStreak:     user.WinStreak,
		HighestWin:    user.HighestWin,
		TotalWinnings: user.TotalWinnings,
		XP:            user.XP,
	}

	var rank int64
	if rouletteRedis != nil {
		rank, err = rouletteRedis.PlayerRank(c.Request.Context(), userID)
		if err != nil {
			logger.Error("%v", err)
			rank = 0
		}
	}

	c.JSON(200, gin.H{
		"games_played":   stats.GamesPlayed,
		"games_won":      stats.GamesWon,
		"win_streak":     stats.WinStreak,
		"highest_win":    stats.HighestWin,
		"total_winnings": stats.TotalWinnings,
		"win_rate":       stats.WinRate(),
		"xp":             stats.XP,
		"level":          stats.Level(),
		"rank":           rank,
	})
}

type leaderboardEntry struct {
	Nickname string `json:"nickname"`
	AvatarID int    `json:"avatar_id"`
	Balance  int64  `json:"balance"`
	Level    int64  `json:"level"`
}

// GetLeaderboard handles GET requests for the top players by balance.
// Order comes from the Redis sorted set, profiles from the database.
func GetLeaderboard(c *gin.Context) {
	if rouletteRedis == nil {
		c.JSON(200, []leaderboardEntry{})
		return
	}

	entries, err := rouletteRedis.TopPlayers(c.Request.Context(), 10)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	board := make([]leaderboardEntry, 0, len(entries))
	for _, entry := range entries {
		id, ok := entry.Member.(string)
		if !ok {
			continue
		}

		var user models.User
		if err := db.DB.Where("id = ?", id).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			logger.Error("%v", err)
			c.Status(500)
			return
		}

		stats := roulette.Stats{XP: user.XP}
		board = append(board, leaderboardEntry{
			Nickname: user.Nickname,
			AvatarID: user.AvatarID,
			Balance:  int64(entry.Score),
			Level:    stats.Level(),
		})
	}

	c.JSON(200, board)
}
