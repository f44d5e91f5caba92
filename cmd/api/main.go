package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/sariqmarket/b2b-backend/internal/config"
	"github.com/sariqmarket/b2b-backend/internal/db"
	"github.com/sariqmarket/b2b-backend/internal/server"
)

var (
	gitSHA    = "dev"
	buildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		log.Printf("auto migrate error: %v", err)
	}

	srv := server.New(conn, cfg, gitSHA, buildTime)

	addr := ":" + cfg.Port
	log.Printf("starting server on %s", addr)
	if err := srv.Start(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
