package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/pairtalk/chat-backend/config"
	"github.com/pairtalk/chat-backend/pkg/helpers"
)

// Seeds two demo accounts and a short conversation between them.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	emails := []string{"alice@example.com", "bob@example.com"}
	for _, email := range emails {
		var id string
		err = db.QueryRow(`
			INSERT INTO users (email, password_hash)
			VALUES ($1, $2)
			ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash
			RETURNING id
		`, email, hash).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", email, err)
		}
		fmt.Printf("seeded user: id=%s email=%s password=%s\n", id, email, password)
	}

	conversation := []struct {
		sender, recipient, content string
	}{
		{emails[0], emails[1], "hi"},
		{emails[1], emails[0], "hey"},
		{emails[0], emails[1], "how's it going?"},
	}
	for _, m := range conversation {
		if _, err := db.Exec(`
			INSERT INTO messages (sender_email, recipient_email, content)
			VALUES ($1, $2, $3)
		`, m.sender, m.recipient, m.content); err != nil {
			log.Fatalf("failed to seed message: %v", err)
		}
	}
	fmt.Printf("seeded %d messages between %s and %s\n", len(conversation), emails[0], emails[1])
}
