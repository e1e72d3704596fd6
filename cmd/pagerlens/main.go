package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/pagerlens-dev/pagerlens/db"
	"github.com/pagerlens-dev/pagerlens/internal/pagerduty"
	"github.com/pagerlens-dev/pagerlens/internal/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	dsn := os.Getenv("DATABASE_URL")

	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	apiKey := os.Getenv("PAGERDUTY_API_KEY")

	if apiKey == "" {
		log.Fatal("PAGERDUTY_API_KEY environment variable is required")
	}

	conn, err := db.Connect(dsn)

	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.Migrate(conn); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	client := pagerduty.NewClient(apiKey)

	if baseURL := os.Getenv("PAGERDUTY_BASE_URL"); baseURL != "" {
		client = pagerduty.NewClientWithBaseURL(apiKey, baseURL)
	}

	r := router.New(conn, client)

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "5000"
		log.Println("PORT not set, defaulting to 5000")
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
