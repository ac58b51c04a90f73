package services

import (
	"fmt"
	"strings"
	"time"
)

// InvalidTimeLabel показывается вместо времени, если метку не удалось разобрать.
const InvalidTimeLabel = "Invalid time"

const (
	labelToday     = "TODAY"
	labelYesterday = "YESTERDAY"
)

// timestampLayouts - поддерживаемые форматы временных меток. Форматы без смещения
// интерпретируются в локации рендерера, метки со смещением переводятся в нее.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp разбирает временную метку сообщения в заданной локации.
func ParseTimestamp(timestamp string, loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(timestamp)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}

// FormatTime возвращает время в 12-часовом формате: "12:05 AM", "1:30 PM".
func FormatTime(t time.Time) string {
	hours := t.Hour()
	ampm := "AM"
	if hours >= 12 {
		ampm = "PM"
	}
	hours %= 12
	if hours == 0 {
		hours = 12
	}
	return fmt.Sprintf("%d:%02d %s", hours, t.Minute(), ampm)
}

// FormatTimestamp разбирает метку и форматирует время; при ошибке разбора
// возвращает InvalidTimeLabel.
func FormatTimestamp(timestamp string, loc *time.Location) string {
	t, ok := ParseTimestamp(timestamp, loc)
	if !ok {
		return InvalidTimeLabel
	}
	return FormatTime(t)
}

// civilDate - календарная дата без времени.
type civilDate struct {
	year  int
	month time.Month
	day   int
}

func dateOf(t time.Time) civilDate {
	y, m, d := t.Date()
	return civilDate{year: y, month: m, day: d}
}

// DateLabel возвращает подпись разделителя дат: "TODAY", "YESTERDAY"
// или "JANUARY 5, 2024". now задает текущий момент в той же локации, что и date.
func DateLabel(date, now time.Time) string {
	switch dateOf(date) {
	case dateOf(now):
		return labelToday
	case dateOf(now.AddDate(0, 0, -1)):
		return labelYesterday
	}
	return strings.ToUpper(fmt.Sprintf("%s %d, %d", date.Month(), date.Day(), date.Year()))
}
