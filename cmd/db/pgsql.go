package db

import (
	"errors"
	"fmt"
	"os"

	"github.com/BumsCross1/roulette-api/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func init() {
	var err error

	dbHost, ok1 := os.LookupEnv("POSTGRES_HOST")
	dbPort, ok2 := os.LookupEnv("POSTGRES_PORT")
	dbUser, ok3 := os.LookupEnv("POSTGRES_USER")
	dbPassword, ok4 := os.LookupEnv("POSTGRES_PASSWORD")
	dbName, ok5 := os.LookupEnv("POSTGRES_DB")
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		// Tests supply their own DB handle; the server fails loudly on
		// its first query if the environment is incomplete.
		logger.Warn("%v", errors.New("database connection parameters not set, skipping connection"))
		return
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPassword, dbName)

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Fatal("%v", err)
	}
}
