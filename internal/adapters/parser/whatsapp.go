package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"

	"whatsapp-chat-viewer/internal/domain"
	"whatsapp-chat-viewer/internal/ports"
)

// Строка экспорта: "D/M/YYYY, H:MM am - остаток".
var timestampPattern = regexp.MustCompile(`(?i)^(\d{1,2}/\d{1,2}/\d{4}),\s+(\d{1,2}:\d{2})\s*([ap]m)\s*-\s*(.*)$`)

// Вложение: "IMG-20240105-WA0001.jpg (file attached)".
var mediaPattern = regexp.MustCompile(`(?i)^(.*?)\s*\(file attached\)\s*$`)

var attachmentExtensions = []string{
	".jpg", ".jpeg", ".png", ".webp", ".gif",
	".mp4", ".avi", ".mov",
	".opus", ".mp3", ".m4a",
	".pdf", ".doc", ".docx",
}

// Фразы служебных сообщений WhatsApp. Проверяются по части строки до первого двоеточия,
// чтобы обычный текст вроде "Bob: I left early" не считался системным.
var systemPhrases = []string{
	"messages and calls are end-to-end encrypted",
	"created group",
	"added",
	"removed",
	"left",
	"changed the subject",
	"changed this group's icon",
	"you deleted this message",
	"this message was deleted",
}

// isoLayout совпадает с форматом, который ожидает рендерер для временных меток без смещения.
const isoLayout = "2006-01-02T15:04:05"

// messageTypeEmpty помечает сообщение без текста и вложения; такие сообщения отбрасываются.
const messageTypeEmpty domain.MessageType = "empty"

// WhatsAppTextParser разбирает текстовый экспорт чата WhatsApp для Android.
type WhatsAppTextParser struct{}

// NewWhatsAppTextParser создает новый экземпляр WhatsAppTextParser.
func NewWhatsAppTextParser() ports.Parser {
	return &WhatsAppTextParser{}
}

// Parse превращает экспорт в транскрипт. Многострочные сообщения склеиваются через "\n",
// строки до первой временной метки игнорируются.
func (p *WhatsAppTextParser) Parse(data []byte) (domain.Transcript, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty chat export")
	}

	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode chat export as latin-1: %w", err)
		}
		data = decoded
	}

	transcript := domain.Transcript{}
	var current *domain.Message

	flush := func() {
		if current != nil && current.Type != messageTypeEmpty {
			transcript = append(transcript, *current)
		}
		current = nil
	}

	for _, raw := range strings.Split(string(data), "\n") {
		line := normalizeLine(raw)
		if line == "" {
			continue
		}

		match := timestampPattern.FindStringSubmatch(line)
		if match == nil {
			if current != nil {
				appendContinuation(current, line)
			}
			continue
		}

		flush()
		msg := parseMessageLine(match[4])
		msg.Timestamp = parseTimestamp(match[1], match[2], match[3])
		current = &msg
	}
	flush()

	return transcript, nil
}

// normalizeLine заменяет неразрывные пробелы обычными, приводит строку к NFC и обрезает пробелы.
func normalizeLine(s string) string {
	s = strings.ReplaceAll(s, "\u202f", " ")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(norm.NFC.String(s))
}

func appendContinuation(msg *domain.Message, line string) {
	if msg.Text != "" {
		msg.Text += "\n" + line
	} else {
		msg.Text = line
	}
	if msg.Type == messageTypeEmpty {
		msg.Type = domain.MessageTypeText
	}
}

// parseTimestamp переводит "D/M/YYYY", "H:MM", "am|pm" в ISO-8601 без смещения.
// Некорректная дата сохраняется как есть с префиксом, рендерер покажет "Invalid time".
func parseTimestamp(dateStr, timeStr, period string) string {
	invalid := fmt.Sprintf("Invalid timestamp: %s %s %s", dateStr, timeStr, period)

	dateParts := strings.Split(dateStr, "/")
	timeParts := strings.Split(timeStr, ":")
	if len(dateParts) != 3 || len(timeParts) != 2 {
		return invalid
	}

	nums := make([]int, 0, 5)
	for _, part := range append(dateParts, timeParts...) {
		n, err := strconv.Atoi(part)
		if err != nil {
			return invalid
		}
		nums = append(nums, n)
	}
	day, month, year, hour, minute := nums[0], nums[1], nums[2], nums[3], nums[4]

	switch strings.ToLower(period) {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}

	if month < 1 || month > 12 || hour > 23 || minute > 59 {
		return invalid
	}
	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	if t.Day() != day {
		return invalid
	}
	return t.Format(isoLayout)
}

// parseMessageLine разбирает часть строки после " - ": отправителя, текст и вложение.
func parseMessageLine(senderAndText string) domain.Message {
	senderPart, text, hasColon := strings.Cut(senderAndText, ":")
	if !hasColon || isSystemPhrase(senderPart) {
		return domain.Message{Type: domain.MessageTypeSystem, Text: strings.TrimSpace(senderAndText)}
	}

	msg := domain.Message{Sender: strings.TrimSpace(senderPart)}
	text = strings.TrimSpace(text)

	if media, ok := extractMedia(text); ok {
		msg.Type = domain.MessageTypeMedia
		msg.Media = media
		return msg
	}

	if text == "" {
		msg.Type = messageTypeEmpty
		return msg
	}

	msg.Type = domain.MessageTypeText
	msg.Text = text
	return msg
}

func isSystemPhrase(s string) bool {
	lower := strings.ToLower(s)
	for _, phrase := range systemPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// extractMedia возвращает имя файла, если текст - это отметка о вложении известного типа.
func extractMedia(text string) (string, bool) {
	match := mediaPattern.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	filename := strings.TrimSpace(match[1])
	lower := strings.ToLower(filename)
	for _, ext := range attachmentExtensions {
		if strings.HasSuffix(lower, ext) {
			return filename, true
		}
	}
	return "", false
}
