package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"notes-bot/internal/repository"
)

const sheetExample = "https://docs.google.com/spreadsheets/d/1AbC.../edit"

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(msg)
	case "help":
		return b.handleHelp(msg)
	case "set_sheet":
		return b.handleSetSheet(ctx, msg)
	case "my_sheet":
		return b.handleMySheet(msg)
	default:
		return b.sendText(msg.Chat.ID, "Команда не поддерживается. Загляни в /help.")
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "друг"
	}

	text := fmt.Sprintf(
		"👋 Привет, %s!\n<b>Я сохраняю твои заметки в Google Таблицу.</b>\n"+
			"Пиши мне текстом или отправляй голосовые — каждая заметка станет новой строкой.\n\n%s",
		escape(name), b.instructions(msg.From.ID),
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Подсказки</b>\n" +
		"• /set_sheet &lt;ссылка&gt; — подключить таблицу\n" +
		"• /my_sheet — показать подключённую таблицу\n" +
		"• /help — эта инструкция\n\n" +
		b.instructions(msg.From.ID)
	return b.sendText(msg.Chat.ID, text)
}

// instructions explains the sheet setup and shows the user's current status.
func (b *Bot) instructions(userID int64) string {
	var builder strings.Builder
	builder.WriteString("📋 <b>Как подключить таблицу</b>\n")
	builder.WriteString("1. Создай новую Google Таблицу.\n")

	email := ""
	if b.account != nil {
		email = b.account.ServiceEmail()
	}
	if email != "" {
		builder.WriteString("2. Нажми «Настройки доступа» и дай права <b>редактора</b> адресу:\n")
		builder.WriteString(fmt.Sprintf("<code>%s</code>\n", escape(email)))
	} else {
		builder.WriteString("2. Дай права <b>редактора</b> сервисному аккаунту бота. ")
		if contact := b.access.Contact(); contact != "" {
			builder.WriteString(fmt.Sprintf("Адрес сейчас недоступен, обратитесь к администратору: @%s\n", escape(contact)))
		} else {
			builder.WriteString("Адрес сейчас недоступен, обратитесь к администратору.\n")
		}
	}
	builder.WriteString("3. Отправь ссылку на таблицу командой:\n")
	builder.WriteString(fmt.Sprintf("<code>/set_sheet %s</code>\n\n", sheetExample))

	if url, ok := b.destinations.Get(userID); ok {
		builder.WriteString(fmt.Sprintf("✅ <b>Таблица подключена:</b> <a href=\"%s\">открыть</a>", escape(url)))
	} else {
		builder.WriteString("❌ <b>Таблица пока не подключена.</b>")
	}
	return builder.String()
}

func (b *Bot) handleSetSheet(ctx context.Context, msg *tgbotapi.Message) error {
	url := strings.TrimSpace(msg.CommandArguments())
	if url == "" {
		return b.replyText(msg, fmt.Sprintf("Укажи ссылку на таблицу:\n<code>/set_sheet %s</code>", sheetExample))
	}

	err := b.destinations.Set(ctx, msg.From.ID, url)
	switch {
	case err == nil:
		log.Printf("[info] sheet configured user=%d", msg.From.ID)
		return b.replyText(msg, "✅ <b>Таблица сохранена!</b>\nТеперь просто присылай мне заметки.")
	case errors.Is(err, repository.ErrInvalidDestination):
		return b.replyText(msg, fmt.Sprintf(
			"❌ Это не похоже на ссылку на Google Таблицу.\nСсылка должна начинаться с <code>%s</code>, например:\n<code>/set_sheet %s</code>",
			repository.SheetURLPrefix, sheetExample,
		))
	default:
		log.Printf("[error] save sheet user=%d: %v", msg.From.ID, err)
		return b.replyText(msg, "❌ Не удалось сохранить ссылку. Попробуй ещё раз позже.")
	}
}

func (b *Bot) handleMySheet(msg *tgbotapi.Message) error {
	url, ok := b.destinations.Get(msg.From.ID)
	if !ok {
		return b.replyText(msg, "Таблица ещё не настроена.\nИспользуй <code>/set_sheet &lt;ссылка&gt;</code>, инструкция в /help.")
	}
	return b.replyText(msg, fmt.Sprintf("📄 Твоя таблица: <a href=\"%s\">открыть</a>\n<code>%s</code>", escape(url), escape(url)))
}
