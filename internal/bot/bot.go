package bot

import (
	"context"
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"notes-bot/internal/model"
	"notes-bot/internal/service"
	"notes-bot/internal/speech"
)

const (
	menuLabelSheet = "📄 Моя таблица"
	menuLabelHelp  = "ℹ️ Помощь"
)

// telegramAPI is the subset of *tgbotapi.BotAPI the bot uses.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	GetFileDirectURL(fileID string) (string, error)
}

// Router stores a note and reports the outcome.
type Router interface {
	Route(ctx context.Context, note model.Note) service.Outcome
}

// Destinations is the per-user sheet store.
type Destinations interface {
	Get(userID int64) (string, bool)
	Set(ctx context.Context, userID int64, url string) error
}

// Transcriber turns a downloaded voice file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Account exposes the spreadsheet service identity for onboarding text.
type Account interface {
	ServiceEmail() string
}

// Dependencies groups the collaborators of the bot.
type Dependencies struct {
	Access       *service.AccessPolicy
	Destinations Destinations
	Router       Router
	Transcriber  Transcriber
	Voices       *speech.TempDir
	Account      Account
	Stats        *service.Stats
	// RequestTimeout bounds the handling of one update. Zero means one minute.
	RequestTimeout time.Duration
}

type handlerFunc func(ctx context.Context, msg *tgbotapi.Message) error

// Bot aggregates Telegram API with services.
type Bot struct {
	api          telegramAPI
	access       *service.AccessPolicy
	destinations Destinations
	router       Router
	transcriber  Transcriber
	voices       *speech.TempDir
	account      Account
	stats        *service.Stats
	timeout      time.Duration
	http         *http.Client
}

// Connect authorizes against the Bot API. A bad token fails here.
func Connect(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	log.Printf("[info] bot authorized on account %s", api.Self.UserName)
	return api, nil
}

func New(api telegramAPI, deps Dependencies) *Bot {
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Bot{
		api:          api,
		access:       deps.Access,
		destinations: deps.Destinations,
		router:       deps.Router,
		transcriber:  deps.Transcriber,
		voices:       deps.Voices,
		account:      deps.Account,
		stats:        deps.Stats,
		timeout:      timeout,
		http:         &http.Client{Timeout: timeout},
	}
}

// Start begins polling updates until ctx is cancelled. Each user's updates are
// handled in order, users run concurrently. Start returns once the in-flight
// ones are done.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	queues := newDispatcher(func(update tgbotapi.Update) {
		b.handleUpdate(ctx, update)
	})
	for update := range updates {
		queues.dispatch(update)
	}

	queues.wait()
	return ctx.Err()
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil || !msg.Chat.IsPrivate() {
		return
	}

	// Shutdown must not abort a note halfway through.
	reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.timeout)
	defer cancel()

	if err := b.authorized(b.handleMessage)(reqCtx, msg); err != nil {
		log.Printf("[error] handle message user=%d: %v", msg.From.ID, err)
	}
}

// authorized lets only allow-listed users reach next.
func (b *Bot) authorized(next handlerFunc) handlerFunc {
	return func(ctx context.Context, msg *tgbotapi.Message) error {
		if !b.access.Admit(msg.From.ID) {
			log.Printf("[warn] access denied user=%d username=%q", msg.From.ID, msg.From.UserName)
			return b.sendText(msg.Chat.ID, b.deniedText())
		}
		return next(ctx, msg)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s", msg.From.ID, msg.Command())
		return b.handleCommand(ctx, msg)
	}

	if handled, err := b.handleMenuAlias(msg); handled {
		return err
	}

	switch {
	case msg.Voice != nil:
		return b.handleVoice(ctx, msg)
	case msg.Text != "":
		return b.handleText(ctx, msg)
	default:
		return b.replyText(msg, "Я понимаю только текст и голосовые сообщения.")
	}
}

func (b *Bot) handleMenuAlias(msg *tgbotapi.Message) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(msg.Text)) {
	case strings.ToLower(menuLabelSheet):
		return true, b.handleMySheet(msg)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

func (b *Bot) deniedText() string {
	contact := b.access.Contact()
	if contact == "" {
		return "⛔️ У вас нет доступа к этому боту.\nДля получения доступа обратитесь к администратору."
	}
	return fmt.Sprintf("⛔️ У вас нет доступа к этому боту.\nДля получения доступа напишите @%s.", escape(contact))
}

// SendDigest delivers text to every administrator.
func (b *Bot) SendDigest(ctx context.Context, text string) {
	for _, id := range b.access.Admins() {
		if ctx.Err() != nil {
			return
		}
		if err := b.sendText(id, text); err != nil {
			log.Printf("[error] send digest to %d: %v", id, err)
		}
	}
}

func (b *Bot) newMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = mainMenuKeyboard()
	return msg
}

func (b *Bot) sendText(chatID int64, text string) error {
	_, err := b.api.Send(b.newMessage(chatID, text))
	return err
}

func (b *Bot) replyText(to *tgbotapi.Message, text string) error {
	msg := b.newMessage(to.Chat.ID, text)
	msg.ReplyToMessageID = to.MessageID
	_, err := b.api.Send(msg)
	return err
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelSheet),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func escape(s string) string {
	return html.EscapeString(s)
}
