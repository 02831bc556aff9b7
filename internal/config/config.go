package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreDriverFile   = "file"
	StoreDriverSQLite = "sqlite"
)

// Config keeps runtime settings for the bot.
type Config struct {
	TelegramToken string

	// Destination store.
	StoreDriver string
	StorePath   string
	DatabaseURL string

	// Google service account used for the spreadsheets.
	GoogleCredentialsFile string

	// Trello board for the administrator's notes. Empty values disable mirroring.
	TrelloAPIKey string
	TrelloToken  string
	TrelloListID string

	// Speech-to-text.
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	TranscriptionModel  string
	TranscriptionLocale string

	TempDir        string
	SweepInterval  time.Duration
	DigestTime     string
	RequestTimeout time.Duration

	AccessFile string
	Access     Access
}

// Access lists who may talk to the bot.
type Access struct {
	AuthorizedUsers []int64 `yaml:"authorized_users"`
	AdminIDs        []int64 `yaml:"admins"`
	AdminUsername   string  `yaml:"admin_username"`
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		TelegramToken:         strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		StoreDriver:           strings.ToLower(strings.TrimSpace(os.Getenv("STORE_DRIVER"))),
		StorePath:             strings.TrimSpace(os.Getenv("STORE_PATH")),
		DatabaseURL:           strings.TrimSpace(os.Getenv("DATABASE_URL")),
		GoogleCredentialsFile: strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_FILE")),
		TrelloAPIKey:          strings.TrimSpace(os.Getenv("TRELLO_API_KEY")),
		TrelloToken:           strings.TrimSpace(os.Getenv("TRELLO_TOKEN")),
		TrelloListID:          strings.TrimSpace(os.Getenv("TRELLO_LIST_ID")),
		OpenAIAPIKey:          strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:         strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		TranscriptionModel:    strings.TrimSpace(os.Getenv("TRANSCRIPTION_MODEL")),
		TranscriptionLocale:   strings.TrimSpace(os.Getenv("TRANSCRIPTION_LANGUAGE")),
		TempDir:               strings.TrimSpace(os.Getenv("TEMP_DIR")),
		SweepInterval:         parseDuration(strings.TrimSpace(os.Getenv("SWEEP_INTERVAL"))),
		DigestTime:            strings.TrimSpace(os.Getenv("DIGEST_TIME")),
		RequestTimeout:        parseDuration(strings.TrimSpace(os.Getenv("REQUEST_TIMEOUT"))),
		AccessFile:            strings.TrimSpace(os.Getenv("ACCESS_FILE")),
	}

	if cfg.StoreDriver == "" {
		cfg.StoreDriver = StoreDriverFile
	}
	if cfg.StorePath == "" {
		cfg.StorePath = "user_sheets.json"
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "notes_bot.db"
	}
	if cfg.GoogleCredentialsFile == "" {
		cfg.GoogleCredentialsFile = "credentials.json"
	}
	if cfg.TranscriptionModel == "" {
		cfg.TranscriptionModel = "whisper-1"
	}
	if cfg.TranscriptionLocale == "" {
		cfg.TranscriptionLocale = "ru"
	}
	if cfg.TempDir == "" {
		cfg.TempDir = filepath.Join(os.TempDir(), "notes-bot")
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = time.Hour
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = time.Minute
	}
	if cfg.AccessFile == "" {
		cfg.AccessFile = "access.yaml"
	}

	access, err := LoadAccess(cfg.AccessFile)
	if err != nil {
		return cfg, err
	}
	if err := access.applyEnv(); err != nil {
		return cfg, err
	}
	cfg.Access = access

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if cfg.StoreDriver != StoreDriverFile && cfg.StoreDriver != StoreDriverSQLite {
		return cfg, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverFile, StoreDriverSQLite, cfg.StoreDriver)
	}
	if cfg.DigestTime != "" {
		if _, _, err := ParseClock(cfg.DigestTime); err != nil {
			return cfg, fmt.Errorf("DIGEST_TIME: %w", err)
		}
	}

	return cfg, nil
}

// TrelloEnabled reports whether all board credentials are present.
func (c Config) TrelloEnabled() bool {
	return c.TrelloAPIKey != "" && c.TrelloToken != "" && c.TrelloListID != ""
}

// String masks secrets so the config can be logged at startup.
func (c Config) String() string {
	return fmt.Sprintf("Config{store: %s, users: %d, admins: %d, trello: %t, speech: %s, telegram: *** (masked) ***}",
		c.StoreDriver, len(c.Access.AuthorizedUsers), len(c.Access.AdminIDs), c.TrelloEnabled(), c.TranscriptionModel)
}

// LoadAccess reads the access YAML file. A missing file yields an empty Access.
func LoadAccess(path string) (Access, error) {
	var access Access
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return access, nil
		}
		return access, fmt.Errorf("read access file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &access); err != nil {
		return access, fmt.Errorf("parse access file %q: %w", path, err)
	}
	access.AdminUsername = strings.TrimPrefix(strings.TrimSpace(access.AdminUsername), "@")
	return access, nil
}

// applyEnv lets AUTHORIZED_USERS, ADMIN_ID and ADMIN_USERNAME override the file.
func (a *Access) applyEnv() error {
	if raw := strings.TrimSpace(os.Getenv("AUTHORIZED_USERS")); raw != "" {
		ids, err := parseIDs(raw)
		if err != nil {
			return fmt.Errorf("AUTHORIZED_USERS: %w", err)
		}
		a.AuthorizedUsers = ids
	}
	if raw := strings.TrimSpace(os.Getenv("ADMIN_ID")); raw != "" {
		ids, err := parseIDs(raw)
		if err != nil {
			return fmt.Errorf("ADMIN_ID: %w", err)
		}
		a.AdminIDs = ids
	}
	if raw := strings.TrimSpace(os.Getenv("ADMIN_USERNAME")); raw != "" {
		a.AdminUsername = strings.TrimPrefix(raw, "@")
	}
	return nil
}

func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseDuration(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

// ParseClock splits an HH:MM string.
func ParseClock(value string) (int, int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour, minute, nil
}
