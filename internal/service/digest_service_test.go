package service

import (
	"strings"
	"testing"
	"time"
)

type fixedCounter int

func (c fixedCounter) Len() int { return int(c) }

func TestDailySummaryEmpty(t *testing.T) {
	d := NewDigestService(NewStats(), fixedCounter(3))
	text := d.DailySummary(time.Date(2025, 3, 1, 21, 0, 0, 0, time.UTC))
	if !strings.Contains(text, "01.03.2025") || !strings.Contains(text, "заметок не было") {
		t.Fatalf("unexpected summary:\n%s", text)
	}
	if !strings.Contains(text, "Пользователей с таблицей: 3") {
		t.Fatalf("destination count missing:\n%s", text)
	}
}

func TestDailySummaryCountsAndResets(t *testing.T) {
	stats := NewStats()
	stats.Record(OutcomeSaved)
	stats.Record(OutcomeSaved)
	stats.Record(OutcomeSavedWithCard)
	stats.Record(OutcomeCardFailed)
	stats.Record(OutcomePrimaryFailed)
	stats.RecordUnrecognized()

	d := NewDigestService(stats, fixedCounter(1))
	text := d.DailySummary(time.Now())
	for _, want := range []string{
		"Заметок получено: 5",
		"Записано в таблицы: 4",
		"Карточек в Trello: 1 (не создано: 1)",
		"Ошибок записи: 1",
		"Нераспознанных голосовых: 1",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("summary missing %q:\n%s", want, text)
		}
	}

	if again := d.DailySummary(time.Now()); !strings.Contains(again, "заметок не было") {
		t.Fatalf("counters not reset:\n%s", again)
	}
}
