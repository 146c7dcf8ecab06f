package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	_ "github.com/BumsCross1/roulette-api/cmd/db"
	"github.com/BumsCross1/roulette-api/internal/middleware"
	"github.com/BumsCross1/roulette-api/internal/service"
	"github.com/BumsCross1/roulette-api/pkg/logger"
	"github.com/BumsCross1/roulette-api/pkg/redis"
)

const apiPrefix = "api/"

func Start() {
	gin.DisableConsoleColor()

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.BlockBadActorsMiddleware())
	authorized := router.Group("/", middleware.AuthMiddleware())

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "redis:6379"
	}
	redisService := redis.NewRedisService(redisAddr, os.Getenv("REDIS_PASSWORD"))

	service.InitRouletteService(redisService)
	rouletteWebsocketService := service.NewRouletteWebsocketService(redisService)

	// Start the shared table loop in a separate goroutine
	go service.SuperviseRouletteTable()

	// router
	{
		// auth
		router.POST(apiPrefix+"users/auth/signup", service.SignUp)
		router.POST(apiPrefix+"users/auth/login", service.AuthLogin)

		// live feed
		router.GET(apiPrefix+"ws/roulette/live", rouletteWebsocketService.LiveWinsWebsocketHandler)
	}

	// authorized
	{
		// auth
		authorized.GET(apiPrefix+"users/auth", service.Auth)

		// users
		authorized.GET(apiPrefix+"users", service.GetUser)
		authorized.GET(apiPrefix+"users/statistics", service.GetUserStatistics)
		authorized.GET(apiPrefix+"users/leaderboard", service.GetLeaderboard)

		// roulette, solo rounds
		authorized.POST(apiPrefix+"games/roulette/place", service.PlaceRouletteBet)
		authorized.POST(apiPrefix+"games/roulette/remove", service.RemoveRouletteBet)
		authorized.POST(apiPrefix+"games/roulette/clear", service.ClearRouletteBets)
		authorized.POST(apiPrefix+"games/roulette/spin", service.SpinRoulette)
		authorized.POST(apiPrefix+"games/roulette/flush", service.FlushRouletteSettlement)
		authorized.GET(apiPrefix+"games/roulette/summary", service.GetRouletteSummary)
		authorized.GET(apiPrefix+"games/roulette/history", service.GetRouletteHistory)
		authorized.GET(apiPrefix+"games/roulette/wins", rouletteWebsocketService.GetRecentWins)

		// roulette, shared table
		authorized.POST(apiPrefix+"games/roulette/table/place", service.PlaceTableBet)
		authorized.GET(apiPrefix+"games/roulette/table/state", service.GetTableState)
	}

	srv := &http.Server{
		Addr:    ":8080",
		Handler: router.Handler(),
	}

	go func() {
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with
	// a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server Shutdown: %v", err)
	}

	<-ctx.Done()
	logger.Info("Server exiting")
}
