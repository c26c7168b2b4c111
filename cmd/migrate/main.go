package main

import (
	"database/sql"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// Applies the schema and seeds the default team plus an admin account, so a
// fresh database can serve logins immediately.
func main() {
	if err := godotenv.Load("../../.env"); err != nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("No .env file found")
		}
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	migrationPath := os.Getenv("MIGRATION_PATH")
	if migrationPath == "" {
		migrationPath = "migrations/create_blog_tables.sql"
	}
	content, err := os.ReadFile(migrationPath)
	if err != nil {
		log.Fatalf("Failed to read migration file: %v", err)
	}

	log.Println("Running migration...")
	if _, err := db.Exec(string(content)); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migration applied successfully!")

	if err := seed(db); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Println("Seed data applied successfully!")
}

func seed(db *sql.DB) error {
	// Default team for new registrations.
	var teamID string
	err := db.QueryRow(`SELECT id FROM teams WHERE name = $1`, "rookie").Scan(&teamID)
	if err == sql.ErrNoRows {
		teamID = uuid.New().String()
		if _, err := db.Exec(`INSERT INTO teams (id, name) VALUES ($1, $2)`, teamID, "rookie"); err != nil {
			return err
		}
		log.Println("Created default team 'rookie'")
	} else if err != nil {
		return err
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		log.Println("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin account")
		return nil
	}

	var exists bool
	if err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, adminEmail).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		INSERT INTO users (id, email, password_hash, name, team_id, is_admin)
		VALUES ($1, $2, $3, 'Admin', $4, true)
	`, uuid.New().String(), adminEmail, string(hash), teamID)
	if err != nil {
		return err
	}
	log.Printf("Created admin account %s", adminEmail)
	return nil
}
