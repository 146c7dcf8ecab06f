package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/BumsCross1/roulette-api/pkg/logger"

	"github.com/go-redis/redis/v8"
)

const leaderboardKey = "roulette:leaderboard"

// RedisService represents the Redis service
type RedisService struct {
	client *redis.Client // Keep the field unexported
}

// Client returns the Redis client
func (r *RedisService) Client() *redis.Client {
	return r.client
}

// NewRedisService creates a new instance of the Redis service
func NewRedisService(redisAddr string, redisPassword string) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       0,
	})

	_, err := client.Ping(context.Background()).Result()
	if err != nil {
		logger.Fatal("%v", err)
	}

	logger.Info("Connected to Redis")

	return &RedisService{
		client: client,
	}
}

// SetKey sets a key-value pair in Redis
func (r *RedisService) SetKey(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	err := r.client.Set(ctx, key, value, expiration).Err()
	if err != nil {
		return logger.WrapError(err, "")
	}
	return nil
}

// GetKey retrieves the value of a key from Redis
func (r *RedisService) GetKey(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return "", logger.WrapError(err, "")
	}
	return val, nil
}

// DeleteKey removes a key from Redis
func (r *RedisService) DeleteKey(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		return logger.WrapError(err, "")
	}
	return nil
}

// UpdateLeaderboard stores a player's balance in the leaderboard sorted set.
func (r *RedisService) UpdateLeaderboard(ctx context.Context, playerID int64, balance int64) error {
	err := r.client.ZAdd(ctx, leaderboardKey, &redis.Z{
		Score:  float64(balance),
		Member: playerID,
	}).Err()
	if err != nil {
		return logger.WrapError(err, "")
	}
	return nil
}

// PlayerRank returns a player's 1-based rank by balance, highest first.
func (r *RedisService) PlayerRank(ctx context.Context, playerID int64) (int64, error) {
	rank, err := r.client.ZRevRank(ctx, leaderboardKey, strconv.FormatInt(playerID, 10)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, logger.WrapError(err, "")
	}
	return rank + 1, nil
}

// TopPlayers returns the top player IDs with their balances, highest first.
func (r *RedisService) TopPlayers(ctx context.Context, limit int64) ([]redis.Z, error) {
	entries, err := r.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, limit-1).Result()
	if err != nil {
		return nil, logger.WrapError(err, "")
	}
	return entries, nil
}
