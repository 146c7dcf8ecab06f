package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/BumsCross1/roulette-api/cmd/db"
	"github.com/BumsCross1/roulette-api/internal/middleware"
	"github.com/BumsCross1/roulette-api/internal/models"
	"github.com/BumsCross1/roulette-api/internal/roulette"
	"github.com/BumsCross1/roulette-api/pkg/logger"
	"github.com/BumsCross1/roulette-api/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var validate = validator.New()

var (
	rouletteSessions      = make(map[int64]*roulette.Session)
	rouletteSessionsMutex sync.Mutex
	rouletteStore         roulette.PlayerStore
	rouletteRedis         *redis.RedisService
)

// InitRouletteService wires the roulette engine to its persistence and
// live-feed collaborators. Called once from app start.
func InitRouletteService(redisService *redis.RedisService) {
	rouletteStore = models.NewPlayerStore(db.DB)
	rouletteRedis = redisService
}

type RouletteBetInput struct {
	Type   string `json:"type" validate:"required"`
	Value  string `json:"value"`
	Amount int64  `json:"amount" validate:"required,gt=0"`
}

type RouletteRemoveInput struct {
	Key string `json:"key" validate:"required"`
}

// getRouletteSession returns the caller's engine session, loading balance
// and statistics from the store on first use. Sessions are per player and
// manipulated sequentially; the engine's state machine rejects overlap.
func getRouletteSession(c *gin.Context) (*roulette.Session, error) {
	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	rouletteSessionsMutex.Lock()
	defer rouletteSessionsMutex.Unlock()

	if s, ok := rouletteSessions[userID]; ok {
		return s, nil
	}

	profile, err := rouletteStore.LoadPlayer(c.Request.Context(), userID)
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	s := roulette.NewSession(userID, profile.Balance, profile.Stats)
	rouletteSessions[userID] = s
	return s, nil
}

// saveSessionBalance persists the session's balance and counters after a
// bet ledger change, returning the persisted balance. Settlements go
// through the engine's own flush.
func saveSessionBalance(c *gin.Context, s *roulette.Session) (int64, error) {
	balance, stats := s.Snapshot()
	patch := roulette.PlayerPatch{Balance: balance, Stats: stats}
	return balance, rouletteStore.SavePlayer(c.Request.Context(), s.PlayerID, patch)
}

// settleFlushPending retries a settlement flush left over from a failed
// persistence write. New bets wait until the settled round is durable.
func settleFlushPending(c *gin.Context, s *roulette.Session) error {
	if !s.PendingFlush() {
		return nil
	}
	return s.FlushSettlement(c.Request.Context(), rouletteStore)
}

func respondBetError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, roulette.ErrInvalidAmount),
		errors.Is(err, roulette.ErrInvalidBetSelector):
		c.JSON(400, gin.H{"error": err.Error()})
	case errors.Is(err, roulette.ErrInsufficientFunds):
		c.JSON(402, gin.H{"error": err.Error()})
	case errors.Is(err, roulette.ErrRoundNotAcceptingBets),
		errors.Is(err, roulette.ErrRoundSpinning),
		errors.Is(err, roulette.ErrAlreadySpinning),
		errors.Is(err, roulette.ErrNoBetsPlaced):
		c.JSON(403, gin.H{"error": err.Error()})
	default:
		logger.Error("%v", err)
		c.Status(500)
	}
}

// PlaceRouletteBet handles POST requests to place a bet on the wheel.
func PlaceRouletteBet(c *gin.Context) {
	var input RouletteBetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Invalid input"})
		return
	}
	if err := validate.Struct(input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	s, err := getRouletteSession(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	if err := settleFlushPending(c, s); err != nil {
		logger.Error("%v", err)
		c.JSON(500, gin.H{"error": "previous round is not persisted yet, retry"})
		return
	}

	if err := s.PlaceBet(roulette.BetType(input.Type), input.Value, input.Amount); err != nil {
		respondBetError(c, err)
		return
	}

	balance, err := saveSessionBalance(c, s)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, gin.H{
		"balance": balance,
		"summary": s.Summary(),
	})
}

// RemoveRouletteBet handles POST requests to take one bet off the table.
func RemoveRouletteBet(c *gin.Context) {
	var input RouletteRemoveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Invalid input"})
		return
	}
	if err := validate.Struct(input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	s, err := getRouletteSession(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	refund, err := s.RemoveBet(input.Key)
	if err != nil {
		respondBetError(c, err)
		return
	}

	balance, _ := s.Snapshot()
	if refund > 0 {
		if balance, err = saveSessionBalance(c, s); err != nil {
			logger.Error("%v", err)
			c.Status(500)
			return
		}
	}

	c.JSON(200, gin.H{
		"refunded": refund,
		"balance":  balance,
		"summary":  s.Summary(),
	})
}

// ClearRouletteBets handles POST requests to refund the whole round.
func ClearRouletteBets(c *gin.Context) {
	s, err := getRouletteSession(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	refunded, err := s.ClearBets()
	if err != nil {
		respondBetError(c, err)
		return
	}

	balance, err := saveSessionBalance(c, s)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, gin.H{
		"refunded": refunded,
		"balance":  balance,
	})
}

// SpinRoulette handles POST requests to spin the wheel and settle the
// round. Game logic and the persistence flush are two separate phases:
// a failed flush leaves the settlement pending for a retry and never
// re-runs the spin.
func SpinRoulette(c *gin.Context) {
	s, err := getRouletteSession(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	if err := settleFlushPending(c, s); err != nil {
		logger.Error("%v", err)
		c.JSON(500, gin.H{"error": "previous round is not persisted yet, retry"})
		return
	}

	outcome, err := s.Spin()
	if err != nil {
		respondBetError(c, err)
		return
	}

	result := s.Settle()

	if err := s.FlushSettlement(c.Request.Context(), rouletteStore); err != nil {
		logger.Error("%v", err)
		c.JSON(500, gin.H{
			"error":  "settlement computed but not persisted, retry flush",
			"result": result,
		})
		return
	}

	publishRouletteWin(c.Request.Context(), result)

	logger.Info("Roulette settled: user=%d outcome=%d win=%d returned=%d balance=%d",
		s.PlayerID, outcome, result.TotalWin, result.TotalReturned, result.NewBalance)

	c.JSON(200, result)
}

// FlushRouletteSettlement handles POST requests to retry persisting the
// last settled round after a storage failure.
func FlushRouletteSettlement(c *gin.Context) {
	s, err := getRouletteSession(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	if !s.PendingFlush() {
		c.JSON(200, gin.H{"status": "nothing to flush"})
		return
	}

	result := s.LastSettlement()
	if err := s.FlushSettlement(c.Request.Context(), rouletteStore); err != nil {
		logger.Error("%v", err)
		c.JSON(500, gin.H{"error": "flush failed, retry"})
		return
	}

	publishRouletteWin(c.Request.Context(), result)
	c.JSON(200, gin.H{"status": "flushed", "result": result})
}

// GetRouletteSummary returns the current round's totals for display.
func GetRouletteSummary(c *gin.Context) {
	s, err := getRouletteSession(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	balance, _ := s.Snapshot()
	c.JSON(200, gin.H{
		"state":   s.State(),
		"balance": balance,
		"bets":    s.Bets(),
		"summary": s.Summary(),
	})
}

// GetRouletteHistory returns the player's latest settled rounds.
func GetRouletteHistory(c *gin.Context) {
	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	var history []models.GameHistory
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		// Fetch the latest 20 results
		if err := tx.Where("user_id = ?", userID).Order("created_at desc").Limit(20).Find(&history).Error; err != nil {
			return err
		}

		// If we have 20 results, delete older ones
		if len(history) == 20 {
			oldestTimestamp := history[len(history)-1].CreatedAt
			if err := tx.Where("user_id = ? AND created_at < ?", userID, oldestTimestamp).Delete(&models.GameHistory{}).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, history)
}

// publishRouletteWin records a winning round for the live feed and
// refreshes the leaderboard. Feed failures are logged, not surfaced: the
// settlement itself is already durable.
func publishRouletteWin(ctx context.Context, result *roulette.SettlementResult) {
	if rouletteRedis != nil {
		if err := rouletteRedis.UpdateLeaderboard(ctx, result.PlayerID, result.NewBalance); err != nil {
			logger.Error("%v", err)
		}
	}

	if result.TotalWin <= 0 {
		return
	}

	win := models.Winning{
		UserID:    result.PlayerID,
		Amount:    result.TotalWin,
		CreatedAt: time.Now(),
	}
	if err := db.DB.Create(&win).Error; err != nil {
		logger.Error("Failed to record winning: %v", err)
	}

	if rouletteRedis != nil {
		data, err := json.Marshal(RouletteWinData{
			UserID:    result.PlayerID,
			Outcome:   result.Outcome,
			Amount:    result.TotalWin,
			Timestamp: time.Now().Unix(),
		})
		if err != nil {
			logger.Error("%v", err)
			return
		}
		key := fmt.Sprintf("roulette:win:%d:%d", time.Now().UnixNano(), result.PlayerID)
		if err := rouletteRedis.SetKey(ctx, key, data, 24*time.Hour); err != nil {
			logger.Error("%v", err)
		}
	}
}
