package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	fmt.Println("=== Database Initialization Script ===")
	fmt.Println()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Could not load .env file: %v\n", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Println("DATABASE_URL environment variable not set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	fmt.Println("Connecting to database...")
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	fmt.Println("Connected!")
	fmt.Println()

	fmt.Println("Reading SQL schema file...")
	sqlBytes, err := os.ReadFile("scripts/init_database.sql")
	if err != nil {
		fmt.Printf("Failed to read SQL file: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Executing database schema...")
	if _, err := conn.Exec(ctx, string(sqlBytes)); err != nil {
		fmt.Printf("Failed to execute SQL: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Schema executed successfully!")
	fmt.Println()

	// Verify setup
	var candidateCount, categoryCount int
	if err := conn.QueryRow(ctx, "SELECT COUNT(*) FROM candidates").Scan(&candidateCount); err != nil {
		fmt.Printf("Warning: Could not count candidates: %v\n", err)
	}
	if err := conn.QueryRow(ctx, "SELECT COUNT(*) FROM categories").Scan(&categoryCount); err != nil {
		fmt.Printf("Warning: Could not count categories: %v\n", err)
	}
	fmt.Printf("Candidates in database: %d\n", candidateCount)
	fmt.Printf("Categories in database: %d\n", categoryCount)

	fmt.Println()
	fmt.Println("Database initialization completed!")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Test the connection: go run scripts/test_connection.go")
	fmt.Println("  2. Start the server: go run cmd/server/main.go")
}
