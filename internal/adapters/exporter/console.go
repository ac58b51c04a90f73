package exporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"whatsapp-chat-viewer/internal/domain"
	"whatsapp-chat-viewer/internal/ports"
)

const (
	defaultConsoleWidth = 80
	minConsoleWidth     = 24
)

// ConsoleOption настраивает ConsoleExporter.
type ConsoleOption func(*ConsoleExporter)

// WithWidth задает ширину вывода в колонках. По умолчанию берется ширина терминала.
func WithWidth(width int) ConsoleOption {
	return func(e *ConsoleExporter) {
		e.width = width
	}
}

// ConsoleExporter реализует интерфейс Exporter для вывода чата в терминал.
// Входящие сообщения прижаты к левому краю, исходящие к правому.
type ConsoleExporter struct {
	width int
}

// NewConsoleExporter создает новый экземпляр ConsoleExporter.
func NewConsoleExporter(opts ...ConsoleOption) ports.Exporter {
	e := &ConsoleExporter{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export выводит блоки страницы в w.
func (e *ConsoleExporter) Export(w io.Writer, page domain.Page) error {
	width := e.width
	if width <= 0 {
		width = terminalWidth(w)
	}
	width = max(width, minConsoleWidth)

	var sb strings.Builder
	sb.WriteString(center("--- "+printable(page.Title)+" ---", width))

	if page.Error != "" {
		sb.WriteString(center("⚠️ "+printable(page.Error), width))
	} else {
		for _, b := range page.Blocks {
			writeBlock(&sb, b, width)
		}
	}

	sb.WriteString("\n")
	sb.WriteString(center("This is an offline viewer. No messages can be sent.", width))

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("failed to write terminal view: %w", err)
	}
	return nil
}

func writeBlock(sb *strings.Builder, b domain.Block, width int) {
	switch b.Kind {
	case domain.BlockDateSeparator:
		sb.WriteString("\n")
		sb.WriteString(center("── "+printable(b.Label)+" ──", width))
	case domain.BlockSystemNotice:
		for _, line := range wrapText(printable(b.Text), width*4/5) {
			sb.WriteString(center(line, width))
		}
	case domain.BlockChatBubble:
		bubbleWidth := width * 65 / 100
		var lines []string
		if b.Sender != "" {
			lines = append(lines, "~ "+printable(b.Sender))
		}
		if b.Media != nil {
			lines = append(lines, wrapText(printable(mediaLine(*b.Media)), bubbleWidth)...)
		}
		if b.Text != "" {
			lines = append(lines, wrapText(printable(b.Text), bubbleWidth)...)
		}
		lines = append(lines, "["+printable(b.Time)+"]")

		for _, line := range lines {
			if b.IsOutgoing() {
				sb.WriteString(alignRight(line, width))
			} else {
				sb.WriteString(line + "\n")
			}
		}
	}
}

// printable убирает из текста чата управляющие символы (ESC-последовательности, C1,
// переключатели направления письма), чтобы содержимое не могло управлять терминалом.
// Перевод строки сохраняется, табуляция заменяется пробелом.
func printable(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r == '\t':
			return ' '
		case unicode.IsControl(r), unicode.Is(unicode.Bidi_Control, r):
			return -1
		default:
			return r
		}
	}, s)
}

func mediaLine(m domain.MediaBlock) string {
	switch m.Kind {
	case domain.MediaImage, domain.MediaVideo, domain.MediaAudio:
		return fmt.Sprintf("[%s] %s", m.Kind, m.URL)
	default:
		return m.NotFoundNotice()
	}
}

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultConsoleWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultConsoleWidth
	}
	return width
}

func center(s string, width int) string {
	pad := (width - runewidth.StringWidth(s)) / 2
	if pad <= 0 {
		return s + "\n"
	}
	return strings.Repeat(" ", pad) + s + "\n"
}

func alignRight(s string, width int) string {
	pad := width - runewidth.StringWidth(s)
	if pad <= 0 {
		return s + "\n"
	}
	return strings.Repeat(" ", pad) + s + "\n"
}

// wrapText переносит текст по словам с учетом ширины символов в терминале.
// Переводы строк в исходном тексте сохраняются, слишком длинные слова разрываются.
func wrapText(s string, width int) []string {
	var lines []string
	for _, paragraph := range strings.Split(s, "\n") {
		lines = append(lines, wrapParagraph(paragraph, width)...)
	}
	return lines
}

func wrapParagraph(s string, width int) []string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return []string{s}
	}

	var lines []string
	var current strings.Builder
	currentWidth := 0

	flush := func() {
		lines = append(lines, current.String())
		current.Reset()
		currentWidth = 0
	}

	for _, word := range strings.Fields(s) {
		wordWidth := runewidth.StringWidth(word)

		if wordWidth > width {
			if currentWidth > 0 {
				flush()
			}
			lines = append(lines, splitByWidth(word, width)...)
			continue
		}

		if currentWidth > 0 && currentWidth+1+wordWidth > width {
			flush()
		}
		if currentWidth > 0 {
			current.WriteString(" ")
			currentWidth++
		}
		current.WriteString(word)
		currentWidth += wordWidth
	}

	if currentWidth > 0 {
		flush()
	}
	return lines
}

func splitByWidth(word string, width int) []string {
	var parts []string
	runes := []rune(word)
	for len(runes) > 0 {
		i, w := 0, 0
		for i < len(runes) {
			rw := runewidth.RuneWidth(runes[i])
			if w+rw > width && i > 0 {
				break
			}
			w += rw
			i++
		}
		parts = append(parts, string(runes[:i]))
		runes = runes[i:]
	}
	return parts
}
