package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/BumsCross1/roulette-api/cmd/db"
	"github.com/BumsCross1/roulette-api/internal/middleware"
	"github.com/BumsCross1/roulette-api/internal/models"
	"github.com/BumsCross1/roulette-api/internal/roulette"
	"github.com/BumsCross1/roulette-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TableBetInput struct {
	Type   string `json:"type" validate:"required"`
	Value  string `json:"value"`
	Amount int64  `json:"amount" validate:"required,gt=0"`
}

const (
	tableRoundInterval = 20 * time.Second // Total interval between rounds
	tableBettingWindow = 15 * time.Second
	newTableRoundDelay = 1 * time.Second
)

var (
	isTableBettingOpen bool
	tableBetMutex      sync.RWMutex
	sharedTable        = roulette.NewTable()

	// pendingTableSettlements retains settled results whose persistence
	// write failed. The stake was escrowed at bet time, so the results are
	// retried each round until they land instead of being dropped.
	pendingTableSettlements      []*roulette.SettlementResult
	pendingTableSettlementsMutex sync.Mutex
)

// SuperviseRouletteTable keeps the shared table loop running, restarting
// it after a panic.
func SuperviseRouletteTable() {
	for {
		logger.Info("Starting roulette table loop")

		done := make(chan bool)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Roulette table loop panicked: %v", r)
					done <- true
				}
			}()

			StartRouletteTable()
		}()

		// Wait for the loop to finish (which should only happen on a panic)
		<-done

		time.Sleep(5 * time.Second)
	}
}

// StartRouletteTable runs shared rounds on a fixed cadence: a betting
// window opens, closes shortly before the spin, then every player's bets
// are settled against the one drawn outcome.
func StartRouletteTable() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		retryPendingTableSettlements()

		openTableBetting()

		for elapsedTime := time.Duration(0); elapsedTime < tableRoundInterval; elapsedTime += time.Second {
			if elapsedTime == tableBettingWindow {
				closeTableBetting()
			}
			<-ticker.C
		}
		closeTableBetting()

		outcome, err := sharedTable.Spin()
		if err != nil {
			if errors.Is(err, roulette.ErrNoBetsPlaced) {
				continue
			}
			logger.Error("Table spin failed: %v", err)
			continue
		}

		results := sharedTable.Settle()
		logger.Info("Table round settled: outcome=%d players=%d", outcome, len(results))

		for _, result := range results {
			settleTablePlayer(result)
		}

		time.Sleep(newTableRoundDelay)
	}
}

// settleTablePlayer credits one player's table winnings and records the
// round. The engine result is authoritative; a failed storage write queues
// the result for a later retry because the escrow already happened at bet
// time.
func settleTablePlayer(result *roulette.SettlementResult) {
	if err := writeTableSettlement(result); err != nil {
		logger.Error("Table settlement write failed for user %d, queued for retry: %v", result.PlayerID, err)
		queueTableSettlement(result)
		return
	}

	// Drop any cached solo session so it reloads the credited balance.
	rouletteSessionsMutex.Lock()
	delete(rouletteSessions, result.PlayerID)
	rouletteSessionsMutex.Unlock()

	publishRouletteWin(context.Background(), result)
}

func writeTableSettlement(result *roulette.SettlementResult) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, result.PlayerID).Error; err != nil {
			return logger.WrapError(err, "")
		}

		user.BalanceChips += result.TotalReturned
		user.GamesPlayed++
		if result.TotalWin > 0 {
			user.GamesWon++
			user.WinStreak++
			user.TotalWinnings += result.TotalWin
			if result.TotalWin > user.HighestWin {
				user.HighestWin = result.TotalWin
			}
		} else {
			user.WinStreak = 0
		}
		user.XP += result.History.TotalStaked

		if err := tx.Save(&user).Error; err != nil {
			return logger.WrapError(err, "")
		}

		history := models.GameHistory{
			UserID:      result.PlayerID,
			Outcome:     result.History.Outcome,
			TotalStaked: result.History.TotalStaked,
			TotalWin:    result.History.TotalWin,
			Mode:        string(result.History.Mode),
		}
		if err := tx.Create(&history).Error; err != nil {
			return logger.WrapError(err, "")
		}

		result.NewBalance = user.BalanceChips
		return nil
	})
}

func queueTableSettlement(result *roulette.SettlementResult) {
	pendingTableSettlementsMutex.Lock()
	pendingTableSettlements = append(pendingTableSettlements, result)
	pendingTableSettlementsMutex.Unlock()
}

// retryPendingTableSettlements re-runs persistence for settlements left
// over from earlier rounds. A write that fails again goes back on the
// queue.
func retryPendingTableSettlements() {
	pendingTableSettlementsMutex.Lock()
	pending := pendingTableSettlements
	pendingTableSettlements = nil
	pendingTableSettlementsMutex.Unlock()

	for _, result := range pending {
		settleTablePlayer(result)
	}
}

// openTableBetting sets the betting window as open
func openTableBetting() {
	tableBetMutex.Lock()
	isTableBettingOpen = true
	tableBetMutex.Unlock()
}

// closeTableBetting sets the betting window as closed
func closeTableBetting() {
	tableBetMutex.Lock()
	isTableBettingOpen = false
	tableBetMutex.Unlock()
}

// PlaceTableBet handles POST requests to join the shared table round.
// The stake is escrowed from the user's stored balance first; the table
// ledger only records the bet once the debit has committed, so an aborted
// commit never leaves an unescrowed bet on the table.
func PlaceTableBet(c *gin.Context) {
	tableBetMutex.RLock()
	bettingOpen := isTableBettingOpen
	tableBetMutex.RUnlock()

	if !bettingOpen {
		c.JSON(403, gin.H{"error": "betting is closed"})
		return
	}

	var input TableBetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Invalid input"})
		return
	}
	if err := validate.Struct(input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	if _, err := roulette.ValidSelector(roulette.BetType(input.Type), input.Value); err != nil {
		c.JSON(400, gin.H{"error": roulette.ErrInvalidBetSelector.Error()})
		return
	}

	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	errInsufficientBalance := errors.New("insufficient balance")

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return logger.WrapError(err, "")
		}

		if user.BalanceChips < input.Amount {
			return errInsufficientBalance
		}

		user.BalanceChips -= input.Amount
		if err := tx.Save(&user).Error; err != nil {
			return logger.WrapError(err, "")
		}
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, errInsufficientBalance):
			c.JSON(402, gin.H{"error": "Insufficient balance"})
		default:
			logger.Error("Failed to place table bet: %v", err)
			c.Status(500)
		}
		return
	}

	// The debit is durable; record the bet on the table. A rejection here
	// (the window raced shut) refunds the committed debit.
	if err := sharedTable.PlaceBet(userID, roulette.BetType(input.Type), input.Value, input.Amount); err != nil {
		refundErr := db.DB.Transaction(func(tx *gorm.DB) error {
			return tx.Model(&models.User{}).Where("id = ?", userID).
				Update("balance_chips", gorm.Expr("balance_chips + ?", input.Amount)).Error
		})
		if refundErr != nil {
			logger.Error("Failed to refund rejected table bet for user %d: %v", userID, refundErr)
		}

		switch {
		case errors.Is(err, roulette.ErrInvalidBetSelector),
			errors.Is(err, roulette.ErrInvalidAmount):
			c.JSON(400, gin.H{"error": err.Error()})
		default:
			c.JSON(403, gin.H{"error": "betting is closed"})
		}
		return
	}

	// A table-side debit invalidates any cached solo session snapshot.
	rouletteSessionsMutex.Lock()
	delete(rouletteSessions, userID)
	rouletteSessionsMutex.Unlock()

	c.JSON(200, gin.H{"status": "bet placed successfully"})
}

// GetTableState returns the shared round's phase and totals.
func GetTableState(c *gin.Context) {
	tableBetMutex.RLock()
	bettingOpen := isTableBettingOpen
	tableBetMutex.RUnlock()

	c.JSON(200, gin.H{
		"betting_open": bettingOpen,
		"state":        sharedTable.State(),
		"players":      len(sharedTable.Players()),
		"total_stake":  sharedTable.TotalStake(),
	})
}
