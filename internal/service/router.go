package service

import (
	"context"
	"log"

	"notes-bot/internal/model"
)

// Outcome is the terminal state of routing one note.
type Outcome int

const (
	OutcomeNoDestination Outcome = iota
	OutcomePrimaryFailed
	OutcomeSaved
	OutcomeSavedWithCard
	// OutcomeCardFailed: the sheet accepted the note, the board did not.
	OutcomeCardFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoDestination:
		return "no_destination"
	case OutcomePrimaryFailed:
		return "primary_failed"
	case OutcomeSaved:
		return "saved"
	case OutcomeSavedWithCard:
		return "saved_with_card"
	case OutcomeCardFailed:
		return "card_failed"
	default:
		return "unknown"
	}
}

const (
	replySaved         = "✅ Записал в Google Sheets."
	replySavedWithCard = "✅ Записал в Google Sheets и создал карточку в Trello!"
	replyPrimaryFailed = "❌ <b>Ошибка при записи в Google Sheets!</b>\n\n" +
		"Проверь, что:\n" +
		"1. Ссылка на таблицу верная.\n" +
		"2. Ты дал права редактора моему сервисному email."
	replyNoDestination = "⚠️ <b>Сначала нужно настроить таблицу!</b>\n\n" +
		"Используй команду /help, чтобы увидеть инструкцию."
)

// Reply is the HTML message shown to the user. A failed card keeps the plain
// success wording: the note is already safe in the sheet.
func (o Outcome) Reply() string {
	switch o {
	case OutcomeNoDestination:
		return replyNoDestination
	case OutcomePrimaryFailed:
		return replyPrimaryFailed
	case OutcomeSavedWithCard:
		return replySavedWithCard
	default:
		return replySaved
	}
}

// Destinations resolves the spreadsheet configured by a user.
type Destinations interface {
	Get(userID int64) (string, bool)
}

// PrimarySink is the authoritative note store.
type PrimarySink interface {
	AppendRow(ctx context.Context, url, text string) (int, error)
}

// SecondarySink mirrors privileged users' notes on a best-effort basis.
type SecondarySink interface {
	CreateCard(ctx context.Context, text string) (string, error)
}

// Privileges tells which users get their notes mirrored.
type Privileges interface {
	IsPrivileged(userID int64) bool
}

// NoteRouter writes a note to the user's sheet and, for administrators, to
// the task board once the sheet has accepted it.
type NoteRouter struct {
	destinations Destinations
	primary      PrimarySink
	secondary    SecondarySink
	privileges   Privileges
	stats        *Stats
}

// NewNoteRouter wires the router. secondary may be nil when no board is configured.
func NewNoteRouter(destinations Destinations, primary PrimarySink, secondary SecondarySink, privileges Privileges, stats *Stats) *NoteRouter {
	return &NoteRouter{
		destinations: destinations,
		primary:      primary,
		secondary:    secondary,
		privileges:   privileges,
		stats:        stats,
	}
}

// Route stores note.Text verbatim and reports which outcome was reached.
func (r *NoteRouter) Route(ctx context.Context, note model.Note) Outcome {
	outcome := r.route(ctx, note)
	if r.stats != nil {
		r.stats.Record(outcome)
	}
	return outcome
}

func (r *NoteRouter) route(ctx context.Context, note model.Note) Outcome {
	url, ok := r.destinations.Get(note.UserID)
	if !ok {
		log.Printf("[info] note skipped user=%d: no sheet configured", note.UserID)
		return OutcomeNoDestination
	}

	row, err := r.primary.AppendRow(ctx, url, note.Text)
	if err != nil {
		log.Printf("[error] sheet write user=%d source=%s: %v", note.UserID, note.Source, err)
		return OutcomePrimaryFailed
	}
	log.Printf("[info] note saved user=%d source=%s row=%d", note.UserID, note.Source, row)

	if r.secondary == nil || !r.privileges.IsPrivileged(note.UserID) {
		return OutcomeSaved
	}

	cardID, err := r.secondary.CreateCard(ctx, note.Text)
	if err != nil {
		log.Printf("[warn] trello card user=%d: %v", note.UserID, err)
		return OutcomeCardFailed
	}
	log.Printf("[info] trello card created user=%d card=%s", note.UserID, cardID)
	return OutcomeSavedWithCard
}
