package repository

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"

	"namhatta-management/backend/internal/db"
)

// openTestDB connects to the database named by DATABASE_URL, skipping the
// test when it is unset or unreachable. The schema must be migrated.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	conn, err := db.Open(dsn)
	if err != nil {
		t.Skipf("Database connection failed (expected in test environment): %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func newTestUser(t *testing.T, conn *sql.DB) int64 {
	t.Helper()
	var id int64
	err := conn.QueryRowContext(context.Background(), `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, 'x', 'DISTRICT_SUPERVISOR') RETURNING id`,
		"it-"+uuid.NewString()).Scan(&id)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	t.Cleanup(func() {
		_, _ = conn.ExecContext(context.Background(), "DELETE FROM users WHERE id = $1", id)
	})
	return id
}

// Two logins racing on an account that has never had a session must both
// succeed, with exactly one active session left behind.
func TestPostgresRegistry_ConcurrentFirstLogin(t *testing.T) {
	conn := openTestDB(t)
	reg := NewPostgresRegistry(conn)
	userID := newTestUser(t, conn)

	const logins = 2
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		errs       []error
		superseded int64
	)
	for i := 0; i < logins; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, n, err := reg.Create(context.Background(), userID)
			mu.Lock()
			defer mu.Unlock()
			errs = append(errs, err)
			superseded += n
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			t.Errorf("Create: %v", err)
		}
	}
	if superseded != logins-1 {
		t.Errorf("superseded = %d, want %d", superseded, logins-1)
	}

	var active int
	err := conn.QueryRowContext(context.Background(),
		"SELECT count(*) FROM user_sessions WHERE user_id = $1 AND is_active", userID).Scan(&active)
	if err != nil {
		t.Fatalf("count active sessions: %v", err)
	}
	if active != 1 {
		t.Errorf("active sessions = %d, want 1", active)
	}
}

// A later login deactivates the earlier session and Validate stops honoring it.
func TestPostgresRegistry_SecondLoginSupersedes(t *testing.T) {
	conn := openTestDB(t)
	reg := NewPostgresRegistry(conn)
	userID := newTestUser(t, conn)
	ctx := context.Background()

	first, n, err := reg.Create(ctx, userID)
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if n != 0 {
		t.Errorf("first Create superseded = %d, want 0", n)
	}

	second, n, err := reg.Create(ctx, userID)
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if n != 1 {
		t.Errorf("second Create superseded = %d, want 1", n)
	}

	var username string
	if err := conn.QueryRowContext(ctx, "SELECT username FROM users WHERE id = $1", userID).Scan(&username); err != nil {
		t.Fatalf("look up username: %v", err)
	}
	if ok, err := reg.Validate(ctx, username, first.Token); err != nil || ok {
		t.Errorf("Validate(first) = %v, %v; want false, nil", ok, err)
	}
	if ok, err := reg.Validate(ctx, username, second.Token); err != nil || !ok {
		t.Errorf("Validate(second) = %v, %v; want true, nil", ok, err)
	}
}
