package main

import (
	"github.com/BumsCross1/roulette-api/internal/app"
)

func main() {
	app.Start()
}
