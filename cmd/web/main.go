package main

import (
	"fmt"
	"log"

	"github.com/muni-codes/internal/config"
	"github.com/muni-codes/internal/web"
)

func main() {
	// Load environment configuration
	config.LoadEnv()

	fmt.Println("=== Municipality Resolution Web API ===")

	port := config.GetEnvInt("WEB_PORT", 8080)
	host := config.GetEnv("WEB_HOST", "localhost")
	dbName := config.GetEnv("PGDATABASE", "muni_codes")

	webConfig := &web.Config{
		Host: host,
		Port: port,
		DatabaseURL: fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			config.GetEnv("PGUSER", "user"),
			config.GetEnv("PGPASSWORD", "password"),
			config.GetEnv("PGHOST", "localhost"),
			config.GetEnv("PGPORT", "5432"),
			dbName),
	}

	fmt.Printf("Server: http://%s:%d\n", host, port)
	fmt.Printf("Database: %s\n", dbName)

	server, err := web.NewServer(webConfig)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if err := server.Start(); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
