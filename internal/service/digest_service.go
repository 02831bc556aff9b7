package service

import (
	"fmt"
	"strings"
	"time"
)

// DestinationCounter reports how many users have configured a sheet.
type DestinationCounter interface {
	Len() int
}

// DigestService builds the administrator's daily activity report.
type DigestService struct {
	stats        *Stats
	destinations DestinationCounter
}

func NewDigestService(stats *Stats, destinations DestinationCounter) *DigestService {
	return &DigestService{stats: stats, destinations: destinations}
}

// DailySummary renders the counters collected since the previous summary and resets them.
func (s *DigestService) DailySummary(now time.Time) string {
	snap := s.stats.Take()

	var builder strings.Builder
	builder.WriteString("📊 <b>Сводка за день</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("02.01.2006")))

	if snap.Total() == 0 && snap.Unrecognized == 0 {
		builder.WriteString("— заметок не было\n")
	} else {
		builder.WriteString(fmt.Sprintf("📝 Заметок получено: %d\n", snap.Total()))
		builder.WriteString(fmt.Sprintf("✅ Записано в таблицы: %d\n", snap.Saved+snap.Cards+snap.CardFailures))
		if snap.Cards > 0 || snap.CardFailures > 0 {
			builder.WriteString(fmt.Sprintf("📌 Карточек в Trello: %d", snap.Cards))
			if snap.CardFailures > 0 {
				builder.WriteString(fmt.Sprintf(" (не создано: %d)", snap.CardFailures))
			}
			builder.WriteByte('\n')
		}
		if snap.SheetFailures > 0 {
			builder.WriteString(fmt.Sprintf("❌ Ошибок записи: %d\n", snap.SheetFailures))
		}
		if snap.Unconfigured > 0 {
			builder.WriteString(fmt.Sprintf("⚠️ Без настроенной таблицы: %d\n", snap.Unconfigured))
		}
		if snap.Unrecognized > 0 {
			builder.WriteString(fmt.Sprintf("🤷 Нераспознанных голосовых: %d\n", snap.Unrecognized))
		}
	}

	builder.WriteString(fmt.Sprintf("\n👥 Пользователей с таблицей: %d", s.destinations.Len()))
	return strings.TrimSpace(builder.String())
}
