package main

import (
	"github.com/BumsCross1/roulette-api/cmd/db"
	"github.com/BumsCross1/roulette-api/internal/models"
	"github.com/BumsCross1/roulette-api/pkg/logger"
)

func main() {
	// dropTables()
	createTables()

	logger.Info("Migrated.")
}

func dropTables() {
	db.DB.Migrator().DropTable(
		&models.User{},
		&models.GameHistory{},
		&models.Winning{},
	)
}

func createTables() {
	db.DB.AutoMigrate(
		&models.User{},
		&models.GameHistory{},
		&models.Winning{},
	)
}
