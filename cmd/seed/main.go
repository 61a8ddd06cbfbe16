// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the admin user already exists.
package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"namhatta-management/backend/internal/config"
	"namhatta-management/backend/internal/db"
	"namhatta-management/backend/internal/security"
)

const (
	adminUsername      = "admin"
	officeUsername     = "office1"
	supervisorUsername = "supervisor1"
	devPassword        = "password123"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()

	var existing int64
	err = conn.QueryRowContext(ctx, `SELECT id FROM users WHERE username = $1`, adminUsername).Scan(&existing)
	if err == nil {
		log.Println("Seed already applied (admin exists). Skipping.")
		os.Exit(0)
	}
	if err != sql.ErrNoRows {
		log.Fatalf("seed check: %v", err)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		log.Fatalf("begin: %v", err)
	}
	defer tx.Rollback()

	insertUser := func(username, role string) int64 {
		var id int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO users (username, password_hash, role, is_active)
			 VALUES ($1, $2, $3, TRUE)
			 RETURNING id`,
			username, passwordHash, role,
		).Scan(&id)
		if err != nil {
			log.Fatalf("insert user %s: %v", username, err)
		}
		return id
	}

	insertUser(adminUsername, "ADMIN")
	insertUser(officeUsername, "OFFICE")
	supervisorID := insertUser(supervisorUsername, "DISTRICT_SUPERVISOR")

	namhattas := []struct {
		code, name, district string
		supervisor           *int64
	}{
		{"NH-HGL-001", "Hooghly Sridhampur Namhatta", "Hooghly", &supervisorID},
		{"NH-HGL-002", "Hooghly Chinsurah Namhatta", "Hooghly", &supervisorID},
		{"NH-NDA-001", "Nadia Mayapur Namhatta", "Nadia", nil},
		{"NH-KOL-001", "Kolkata Central Namhatta", "Kolkata", nil},
	}
	for _, n := range namhattas {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO namhattas (code, name, district, district_supervisor_id, is_active)
			 VALUES ($1, $2, $3, $4, TRUE)`,
			n.code, n.name, n.district, n.supervisor,
		)
		if err != nil {
			log.Fatalf("insert namhatta %s: %v", n.code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("commit: %v", err)
	}

	log.Printf("Seeded users %s, %s, %s (password %q) and %d namhattas.",
		adminUsername, officeUsername, supervisorUsername, devPassword, len(namhattas))
}
