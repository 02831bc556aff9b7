package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TELEGRAM_TOKEN", "STORE_DRIVER", "STORE_PATH", "DATABASE_URL", "GOOGLE_CREDENTIALS_FILE",
		"TRELLO_API_KEY", "TRELLO_TOKEN", "TRELLO_LIST_ID", "OPENAI_API_KEY", "OPENAI_BASE_URL",
		"TRANSCRIPTION_MODEL", "TRANSCRIPTION_LANGUAGE", "TEMP_DIR", "SWEEP_INTERVAL", "DIGEST_TIME",
		"REQUEST_TIMEOUT", "ACCESS_FILE", "AUTHORIZED_USERS", "ADMIN_ID", "ADMIN_USERNAME",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("ACCESS_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
}

func TestLoadRequiresToken(t *testing.T) {
	clearEnv(t)
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without TELEGRAM_TOKEN")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", " token ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TelegramToken != "token" {
		t.Fatalf("token not trimmed: %q", cfg.TelegramToken)
	}
	if cfg.StoreDriver != StoreDriverFile || cfg.StorePath != "user_sheets.json" {
		t.Fatalf("unexpected store defaults: %s %s", cfg.StoreDriver, cfg.StorePath)
	}
	if cfg.TranscriptionModel != "whisper-1" || cfg.TranscriptionLocale != "ru" {
		t.Fatalf("unexpected speech defaults: %s %s", cfg.TranscriptionModel, cfg.TranscriptionLocale)
	}
	if cfg.SweepInterval != time.Hour || cfg.RequestTimeout != time.Minute {
		t.Fatalf("unexpected durations: %s %s", cfg.SweepInterval, cfg.RequestTimeout)
	}
	if cfg.TrelloEnabled() {
		t.Fatalf("trello should be disabled without credentials")
	}
	if strings.Contains(cfg.String(), "token") {
		t.Fatalf("String leaks the token: %s", cfg.String())
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("STORE_DRIVER", "mongo")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown store driver")
	}
}

func TestLoadRejectsBadDigestTime(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("DIGEST_TIME", "25:00")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid DIGEST_TIME")
	}
}

func TestLoadAccessFileWithEnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "access.yaml")
	content := strings.TrimSpace(`
authorized_users:
  - 1
  - 2
admins:
  - 2
admin_username: "@owner"
`)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("ACCESS_FILE", path)
	t.Setenv("ADMIN_ID", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Access.AuthorizedUsers) != 2 || cfg.Access.AuthorizedUsers[1] != 2 {
		t.Fatalf("unexpected users: %v", cfg.Access.AuthorizedUsers)
	}
	if len(cfg.Access.AdminIDs) != 1 || cfg.Access.AdminIDs[0] != 7 {
		t.Fatalf("env should override admins, got %v", cfg.Access.AdminIDs)
	}
	if cfg.Access.AdminUsername != "owner" {
		t.Fatalf("admin username not normalised: %q", cfg.Access.AdminUsername)
	}
}

func TestLoadRejectsMalformedUserList(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("AUTHORIZED_USERS", "1, two")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for malformed AUTHORIZED_USERS")
	}
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("09:30")
	if err != nil || h != 9 || m != 30 {
		t.Fatalf("ParseClock(09:30) = %d %d %v", h, m, err)
	}
	for _, bad := range []string{"", "9", "24:00", "10:61", "aa:bb"} {
		if _, _, err := ParseClock(bad); err == nil {
			t.Fatalf("ParseClock(%q) should fail", bad)
		}
	}
}
