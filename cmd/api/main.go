package main

import (
	"flag"
	"log"

	"github.com/stockpilot-io/stockpilot/internal/api"
	"github.com/stockpilot-io/stockpilot/internal/config"
	"github.com/stockpilot-io/stockpilot/internal/database"
	"github.com/stockpilot-io/stockpilot/internal/store"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "app.yml", "Path to configuration file")
	flag.Parse()

	log.Printf("Starting StockPilot API v%s with config: %s", version, *configPath)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	a, err := api.New(cfg, store.New(db))
	if err != nil {
		log.Fatal(err)
	}

	a.Serve()
}
