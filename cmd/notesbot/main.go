package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"notes-bot/internal/bot"
	"notes-bot/internal/config"
	"notes-bot/internal/repository"
	"notes-bot/internal/service"
	"notes-bot/internal/sheets"
	"notes-bot/internal/speech"
	"notes-bot/internal/trello"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[warn] .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	log.Printf("[info] %s", cfg)

	persister, closeStore, err := repository.OpenPersister(cfg.StoreDriver, cfg.StorePath, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer closeStore()

	destinations := repository.NewDestinationStore(persister)
	if err := destinations.Load(ctx); err != nil {
		log.Fatalf("store: %v", err)
	}
	log.Printf("[info] loaded %d user sheets", destinations.Len())

	sheetClient := newSheetClient(ctx, cfg.GoogleCredentialsFile)

	var board service.SecondarySink
	if cfg.TrelloEnabled() {
		board = trello.NewClient(cfg.TrelloAPIKey, cfg.TrelloToken, cfg.TrelloListID)
	} else {
		log.Println("[warn] trello is not configured, admin notes go to the sheet only")
	}

	voices, err := speech.NewTempDir(cfg.TempDir)
	if err != nil {
		log.Fatalf("voice dir: %v", err)
	}
	transcriber := speech.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.TranscriptionModel, cfg.TranscriptionLocale)
	if cfg.OpenAIAPIKey == "" {
		log.Println("[warn] OPENAI_API_KEY is not set, voice notes will not be recognized")
	}

	access := service.NewAccessPolicy(cfg.Access.AuthorizedUsers, cfg.Access.AdminIDs, cfg.Access.AdminUsername)
	stats := service.NewStats()
	router := service.NewNoteRouter(destinations, sheetClient, board, access, stats)

	api, err := bot.Connect(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}
	telegramBot := bot.New(api, bot.Dependencies{
		Access:         access,
		Destinations:   destinations,
		Router:         router,
		Transcriber:    transcriber,
		Voices:         voices,
		Account:        sheetClient,
		Stats:          stats,
		RequestTimeout: cfg.RequestTimeout,
	})

	scheduler := service.NewSchedulerService(time.Local)
	if _, err := scheduler.ScheduleInterval(cfg.SweepInterval, func() {
		removed, err := voices.Sweep(cfg.SweepInterval, time.Now())
		if err != nil {
			log.Printf("[warn] sweep voice files: %v", err)
			return
		}
		if removed > 0 {
			log.Printf("[info] removed %d stale voice files", removed)
		}
	}); err != nil {
		log.Fatalf("schedule sweep: %v", err)
	}
	if cfg.DigestTime != "" {
		digest := service.NewDigestService(stats, destinations)
		if _, err := scheduler.ScheduleDaily(cfg.DigestTime, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			telegramBot.SendDigest(jobCtx, digest.DailySummary(time.Now()))
		}); err != nil {
			log.Fatalf("schedule digest: %v", err)
		}
	}
	scheduler.Start()
	log.Printf("[info] scheduler started with %d jobs", scheduler.Jobs())
	defer scheduler.Stop()

	log.Println("Notes bot started.")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}

// newSheetClient never fails: without credentials the bot still answers,
// and every sheet write reports an error to the user.
func newSheetClient(ctx context.Context, path string) *sheets.Client {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[error] google credentials %s: %v", path, err)
		return sheets.Unavailable()
	}
	client, err := sheets.New(ctx, data)
	if err != nil {
		log.Printf("[error] google credentials %s: %v", path, err)
		return sheets.Unavailable()
	}
	log.Printf("[info] google service account %s", client.ServiceEmail())
	return client
}
