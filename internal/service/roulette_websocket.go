package service

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/BumsCross1/roulette-api/pkg/logger"
	"github.com/BumsCross1/roulette-api/pkg/redis"
)

// upgrader is used to upgrade HTTP connections to WebSocket connections.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
	wsWriteWait  = 10 * time.Second
)

// watchClientClose runs the connection's read pump. The returned channel
// closes when the peer disconnects or stops answering pings, so write-only
// handlers can stop instead of polling for a dead client forever.
func watchClientClose(conn *websocket.Conn) <-chan struct{} {
	done := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return done
}

// RouletteWinData is one winning round as published to the live feed.
type RouletteWinData struct {
	UserID    int64 `json:"user_id"`
	Outcome   int   `json:"outcome"`
	Amount    int64 `json:"amount"`
	Timestamp int64 `json:"timestamp"`
}

// RouletteWebsocketService is responsible for handling WebSocket connections for roulette wins.
type RouletteWebsocketService struct {
	redisService *redis.RedisService
}

// NewRouletteWebsocketService creates a new instance of RouletteWebsocketService.
func NewRouletteWebsocketService(redisService *redis.RedisService) *RouletteWebsocketService {
	return &RouletteWebsocketService{
		redisService: redisService,
	}
}

// GetRecentWins handles GET requests to fetch recent roulette wins.
func (r *RouletteWebsocketService) GetRecentWins(c *gin.Context) {
	wins, err := r.fetchRecentWins(c.Request.Context(), 10) // Fetch last 10 wins
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}
	if len(wins) < 1 {
		c.String(404, "[]")
		return
	}
	c.JSON(200, wins)
}

// LiveWinsWebsocketHandler handles the WebSocket connection for live roulette wins.
func (r *RouletteWebsocketService) LiveWinsWebsocketHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("%v", err)
		return
	}
	defer conn.Close()

	closed := watchClientClose(conn)

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	pings := time.NewTicker(wsPingPeriod)
	defer pings.Stop()

	var lastWinTimestamp int64

	for {
		select {
		case <-closed:
			return
		case <-pings.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case <-ticker.C: // Continuously fetch and send the latest win data
			wins, err := r.fetchRecentWins(c.Request.Context(), 1) // Fetch only the latest win
			if err != nil {
				logger.Error("%v", err)
				return
			}

			if len(wins) > 0 {
				latestWin := wins[0]
				if latestWin.Timestamp > lastWinTimestamp { // Send only if the latest win is newer
					if err := conn.WriteJSON(latestWin); err != nil {
						logger.Error("%v", err)
						return
					}
					lastWinTimestamp = latestWin.Timestamp
				}
			}
		}
	}
}

// fetchRecentWins retrieves recent roulette wins from Redis.
func (r *RouletteWebsocketService) fetchRecentWins(ctx context.Context, limit int) ([]RouletteWinData, error) {
	keys, err := r.fetchSortedKeys(ctx)
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	if len(keys) > limit {
		keys = keys[len(keys)-limit:]
	}

	return r.fetchWinData(ctx, keys)
}

// fetchSortedKeys retrieves and sorts all roulette win keys from Redis.
func (r *RouletteWebsocketService) fetchSortedKeys(ctx context.Context) ([]string, error) {
	keys, err := r.redisService.Client().Keys(ctx, "roulette:win:*").Result()
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	sort.Strings(keys)
	return keys, nil
}

// fetchWinData fetches the win data for the given keys from Redis.
func (r *RouletteWebsocketService) fetchWinData(ctx context.Context, keys []string) ([]RouletteWinData, error) {
	var winData []RouletteWinData

	for _, key := range keys {
		data, err := r.redisService.GetKey(ctx, key)
		if err != nil {
			return nil, logger.WrapError(err, "")
		}

		var win RouletteWinData
		if err := json.Unmarshal([]byte(data), &win); err != nil {
			return nil, logger.WrapError(err, "")
		}

		winData = append(winData, win)
	}

	return winData, nil
}
