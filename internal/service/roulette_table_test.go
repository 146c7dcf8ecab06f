package service

import (
	"bytes"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BumsCross1/roulette-api/cmd/db"
	"github.com/BumsCross1/roulette-api/internal/middleware"
	"github.com/BumsCross1/roulette-api/internal/models"
	"github.com/BumsCross1/roulette-api/internal/roulette"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestDB points the package's global DB handle at a fresh in-memory
// database for one test.
func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&models.User{}, &models.GameHistory{}, &models.Winning{}))

	db.DB = gdb
	rouletteStore = models.NewPlayerStore(gdb)
}

func tableBetRequest(t *testing.T, userID int64, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest("POST", "/api/games/roulette/table/place", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserIDKey, userID)
	return c, w
}

func TestPlaceTableBetEscrowsStake(t *testing.T) {
	setupTestDB(t)
	sharedTable = roulette.NewTable()
	openTableBetting()
	defer closeTableBetting()

	require.NoError(t, db.DB.Create(&models.User{ID: 1, Nickname: "alice", BalanceChips: 1000}).Error)

	c, w := tableBetRequest(t, 1, `{"type":"red","amount":100}`)
	PlaceTableBet(c)

	assert.Equal(t, 200, w.Code)

	var user models.User
	require.NoError(t, db.DB.First(&user, 1).Error)
	assert.Equal(t, int64(900), user.BalanceChips)
	assert.Equal(t, int64(100), sharedTable.TotalStake())
}

func TestPlaceTableBetRejectsBadSelectorWithoutDebit(t *testing.T) {
	setupTestDB(t)
	sharedTable = roulette.NewTable()
	openTableBetting()
	defer closeTableBetting()

	require.NoError(t, db.DB.Create(&models.User{ID: 1, Nickname: "bob", BalanceChips: 1000}).Error)

	c, w := tableBetRequest(t, 1, `{"type":"dozen","value":"4","amount":100}`)
	PlaceTableBet(c)

	assert.Equal(t, 400, w.Code)

	var user models.User
	require.NoError(t, db.DB.First(&user, 1).Error)
	assert.Equal(t, int64(1000), user.BalanceChips)
	assert.Equal(t, int64(0), sharedTable.TotalStake())
}

func TestPlaceTableBetRefundsWhenRoundFrozen(t *testing.T) {
	setupTestDB(t)
	sharedTable = roulette.NewTable()
	require.NoError(t, sharedTable.PlaceBet(2, roulette.BetRed, "", 10))
	_, err := sharedTable.Spin()
	require.NoError(t, err)

	// The window flag raced open while the table is already frozen.
	openTableBetting()
	defer closeTableBetting()

	require.NoError(t, db.DB.Create(&models.User{ID: 1, Nickname: "carol", BalanceChips: 1000}).Error)

	c, w := tableBetRequest(t, 1, `{"type":"red","amount":100}`)
	PlaceTableBet(c)

	assert.Equal(t, 403, w.Code)

	// The committed debit was refunded and nothing joined the ledger.
	var user models.User
	require.NoError(t, db.DB.First(&user, 1).Error)
	assert.Equal(t, int64(1000), user.BalanceChips)
	assert.NotContains(t, sharedTable.Players(), int64(1))
}

func TestTableSettlementQueuedOnWriteFailure(t *testing.T) {
	setupTestDB(t)
	pendingTableSettlementsMutex.Lock()
	pendingTableSettlements = nil
	pendingTableSettlementsMutex.Unlock()

	result := &roulette.SettlementResult{
		PlayerID:      1,
		Outcome:       17,
		TotalWin:      100,
		TotalReturned: 200,
		History: roulette.HistoryEntry{
			Outcome:     17,
			TotalStaked: 100,
			TotalWin:    100,
			PlayedAt:    time.Now(),
			Mode:        roulette.ModeTable,
		},
	}

	// No user row yet: the write fails and the result must be retained.
	settleTablePlayer(result)

	pendingTableSettlementsMutex.Lock()
	queued := len(pendingTableSettlements)
	pendingTableSettlementsMutex.Unlock()
	require.Equal(t, 1, queued)

	// Once the write can land, the retry credits the player and records
	// the round.
	require.NoError(t, db.DB.Create(&models.User{ID: 1, Nickname: "dave"}).Error)
	retryPendingTableSettlements()

	var user models.User
	require.NoError(t, db.DB.First(&user, 1).Error)
	assert.Equal(t, int64(200), user.BalanceChips)
	assert.Equal(t, int64(1), user.GamesPlayed)
	assert.Equal(t, int64(1), user.GamesWon)

	var histories int64
	require.NoError(t, db.DB.Model(&models.GameHistory{}).Where("user_id = ?", 1).Count(&histories).Error)
	assert.Equal(t, int64(1), histories)

	pendingTableSettlementsMutex.Lock()
	left := len(pendingTableSettlements)
	pendingTableSettlementsMutex.Unlock()
	assert.Equal(t, 0, left)
}
