// seed inserts a demo user and a spread of tasks into the local dev
// database. Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/azamatb/todo-tracker/internal/infrastructure/postgres"
	"golang.org/x/crypto/bcrypt"
)

const (
	seedUsername = "demo"
	seedEmail    = "demo@test.local"
	seedPassword = "demo-password"
)

type taskSpec struct {
	title     string
	category  string
	priority  string
	completed bool
	dueInDays int // 0 = no due date; negative = overdue
	hasDue    bool
}

var tasks = []taskSpec{
	// Due soon — should show up on /api/todos/due-soon
	{"Pay electricity bill", "finance", "high", false, 1, true},
	{"Book dentist appointment", "health", "medium", false, 2, true},
	{"Submit expense report", "work", "high", false, 3, true},

	// Overdue and incomplete
	{"Renew passport", "errands", "high", false, -5, true},
	{"Return library books", "errands", "low", false, -1, true},

	// Completed — excluded from due-soon regardless of date
	{"Buy groceries", "errands", "medium", true, 1, true},
	{"Write weekly report", "work", "medium", true, 0, false},
	{"Water the plants", "home", "low", true, 0, false},

	// No due date
	{"Read Designing Data-Intensive Applications", "learning", "low", false, 0, false},
	{"Plan summer vacation", "travel", "medium", false, 0, false},
	{"Refactor the billing module", "work", "medium", false, 0, false},

	// Far future
	{"Prepare tax documents", "finance", "medium", false, 30, true},
	{"Schedule car service", "errands", "low", false, 14, true},
	{"Draft conference talk proposal", "work", "high", false, 21, true},
	{"Organize photo archive", "home", "low", false, 60, true},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	// Upsert demo user
	var userID string
	err = pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE SET updated_at = NOW()
		RETURNING id`,
		seedUsername, seedEmail, string(hash),
	).Scan(&userID)
	if err != nil {
		log.Fatalf("upsert user: %v", err)
	}

	// Idempotent re-runs: skip tasks the demo user already has.
	var inserted, skipped int
	for _, spec := range tasks {
		var due *time.Time
		if spec.hasDue {
			d := time.Now().AddDate(0, 0, spec.dueInDays)
			due = &d
		}

		var exists bool
		err := pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM tasks WHERE owner_id = $1 AND title = $2)`,
			userID, spec.title,
		).Scan(&exists)
		if err != nil {
			log.Fatalf("check task %q: %v", spec.title, err)
		}
		if exists {
			skipped++
			continue
		}

		_, err = pool.Exec(ctx, `
			INSERT INTO tasks (owner_id, title, completed, priority, due_date, category, tags)
			VALUES ($1, $2, $3, $4, $5, $6, '{}')`,
			userID, spec.title, spec.completed, spec.priority, due, spec.category,
		)
		if err != nil {
			log.Fatalf("insert task %q: %v", spec.title, err)
		}
		inserted++
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  User:          %s / %s\n", seedEmail, seedPassword)
	fmt.Printf("  Tasks created: %d  (skipped %d already existing)\n", inserted, skipped)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1 — log in:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/api/auth/login \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", seedEmail, seedPassword)
	fmt.Println()
	fmt.Println("  Step 2 — list tasks:")
	fmt.Println()
	fmt.Println("    export JWT=eyJ...")
	fmt.Println("    curl -s http://localhost:8080/api/todos -H \"Authorization: Bearer $JWT\"")
	fmt.Println()
	fmt.Println("  Step 3 — stats and upcoming deadlines:")
	fmt.Println()
	fmt.Println("    curl -s http://localhost:8080/api/todos/stats/summary -H \"Authorization: Bearer $JWT\"")
	fmt.Println("    curl -s http://localhost:8080/api/todos/due-soon -H \"Authorization: Bearer $JWT\"")
}
