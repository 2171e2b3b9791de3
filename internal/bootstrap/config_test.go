package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSetupDefaultsWithoutFile(t *testing.T) {
	cfg, err := Setup(filepath.Join(t.TempDir(), ".env"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerPort != "8080" || cfg.BoardSize != 7 || cfg.MongoDb != "margo" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.CacheTTL() != 10*time.Minute {
		t.Fatalf("unexpected ttl %v", cfg.CacheTTL())
	}
	if cfg.MatchTTL() != time.Hour {
		t.Fatalf("unexpected match ttl %v", cfg.MatchTTL())
	}
}

func TestSetupReadsFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "SERVER_PORT=9090\nBOARD_SIZE=5\nLOCAL_CORS=true\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MONGO_DB", "margo_test")

	cfg, err := Setup(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerPort != "9090" || cfg.BoardSize != 5 || !cfg.IsLocalCors {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.MongoDb != "margo_test" {
		t.Fatalf("env override not applied: %q", cfg.MongoDb)
	}
}

func TestSetupRejectsBadBoardSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("BOARD_SIZE=40\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Setup(path); err == nil {
		t.Fatal("expected an error for an oversized board")
	}
}
