package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Clear environment
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.JWTTTL != "24h" {
		t.Errorf("JWTTTL = %q, want %q", cfg.JWTTTL, "24h")
	}
	if cfg.SessionRetention != "24h" {
		t.Errorf("SessionRetention = %q, want %q", cfg.SessionRetention, "24h")
	}
	if cfg.SessionSweepInterval != "1h" {
		t.Errorf("SessionSweepInterval = %q, want %q", cfg.SessionSweepInterval, "1h")
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.CookieSecure {
		t.Error("CookieSecure should default to false")
	}
	if cfg.TelemetryKafkaTopic != "namhatta-telemetry" {
		t.Errorf("TelemetryKafkaTopic = %q, want default", cfg.TelemetryKafkaTopic)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("JWT_TTL", "1h")
	os.Setenv("BCRYPT_COST", "14")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.JWTTTL != "1h" {
		t.Errorf("JWTTTL = %q, want %q", cfg.JWTTTL, "1h")
	}
	if cfg.BcryptCost != 14 {
		t.Errorf("BcryptCost = %d, want 14", cfg.BcryptCost)
	}
}

func TestLoad_ProductionRequiresSecretAndSecureCookie(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("APP_ENV", "production")

	if _, err := Load(); err == nil {
		t.Fatal("Load should fail in production without JWT_SECRET")
	}

	os.Setenv("JWT_SECRET", "super-secret-signing-key")
	if _, err := Load(); err == nil {
		t.Fatal("Load should fail in production without COOKIE_SECURE")
	}

	os.Setenv("COOKIE_SECURE", "true")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.CookieSecure {
		t.Error("CookieSecure = false, want true")
	}
}

func TestLoad_InvalidBcryptCost(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("BCRYPT_COST", "40")

	if _, err := Load(); err == nil {
		t.Fatal("Load should reject BCRYPT_COST out of range")
	}
}

func TestDurationAccessors(t *testing.T) {
	cfg := &Config{JWTTTL: "2h", SessionRetention: "48h", SessionSweepInterval: "30m"}
	if got := cfg.TokenTTL(); got != 2*time.Hour {
		t.Errorf("TokenTTL = %v, want 2h", got)
	}
	if got := cfg.Retention(); got != 48*time.Hour {
		t.Errorf("Retention = %v, want 48h", got)
	}
	if got := cfg.SweepInterval(); got != 30*time.Minute {
		t.Errorf("SweepInterval = %v, want 30m", got)
	}

	// Invalid values fall back to defaults.
	bad := &Config{JWTTTL: "soon", SessionRetention: "-1h", SessionSweepInterval: ""}
	if got := bad.TokenTTL(); got != 24*time.Hour {
		t.Errorf("TokenTTL fallback = %v, want 24h", got)
	}
	if got := bad.Retention(); got != 24*time.Hour {
		t.Errorf("Retention fallback = %v, want 24h", got)
	}
	if got := bad.SweepInterval(); got != time.Hour {
		t.Errorf("SweepInterval fallback = %v, want 1h", got)
	}
}

func TestTelemetryKafkaBrokersList(t *testing.T) {
	cfg := &Config{TelemetryKafkaBrokers: "localhost:9092, broker2:9092 ,"}
	got := cfg.TelemetryKafkaBrokersList()
	if len(got) != 2 || got[0] != "localhost:9092" || got[1] != "broker2:9092" {
		t.Errorf("TelemetryKafkaBrokersList = %v", got)
	}
	empty := &Config{}
	if got := empty.TelemetryKafkaBrokersList(); got != nil {
		t.Errorf("empty brokers should return nil, got %v", got)
	}
}
