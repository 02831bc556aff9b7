package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"notes-bot/internal/model"
	"notes-bot/internal/speech"
)

const replyUnrecognized = "🤷 Не удалось распознать речь. Попробуй ещё раз или напиши текстом."

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) error {
	return b.routeNote(ctx, msg, model.Note{UserID: msg.From.ID, Text: msg.Text, Source: model.SourceTyped})
}

func (b *Bot) handleVoice(ctx context.Context, msg *tgbotapi.Message) error {
	text, err := b.recognize(ctx, msg.Voice.FileID)
	if err != nil {
		if !errors.Is(err, speech.ErrUnrecognized) {
			log.Printf("[error] voice user=%d: %v", msg.From.ID, err)
		} else if b.stats != nil {
			b.stats.RecordUnrecognized()
		}
		return b.replyText(msg, replyUnrecognized)
	}

	if err := b.replyText(msg, fmt.Sprintf("🎙 Распознано: «%s»", escape(text))); err != nil {
		log.Printf("[warn] echo transcript user=%d: %v", msg.From.ID, err)
	}
	return b.routeNote(ctx, msg, model.Note{UserID: msg.From.ID, Text: text, Source: model.SourceVoice})
}

func (b *Bot) routeNote(ctx context.Context, msg *tgbotapi.Message, note model.Note) error {
	outcome := b.router.Route(ctx, note)
	return b.replyText(msg, outcome.Reply())
}

// recognize downloads the voice file, transcribes it and always removes the
// local copy. Blank transcripts are reported as speech.ErrUnrecognized.
func (b *Bot) recognize(ctx context.Context, fileID string) (string, error) {
	path, err := b.downloadVoice(ctx, fileID)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("[warn] remove voice file %s: %v", path, err)
		}
	}()

	text, err := b.transcriber.Transcribe(ctx, path)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", speech.ErrUnrecognized
	}
	return text, nil
}

func (b *Bot) downloadVoice(ctx context.Context, fileID string) (string, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("voice file url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("voice request: %w", err)
	}
	resp, err := b.http.Do(req)
	if err != nil {
		// The URL embeds the bot token.
		return "", errors.New("download voice: request failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download voice: %s", resp.Status)
	}

	f, err := b.voices.Create(".ogg")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("save voice: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("save voice: %w", err)
	}
	return f.Name(), nil
}
