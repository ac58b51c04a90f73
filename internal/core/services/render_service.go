package services

import (
	"log/slog"
	"time"

	"whatsapp-chat-viewer/internal/domain"
	"whatsapp-chat-viewer/internal/ports"
)

// Option — функциональная опция для настройки TranscriptRenderer.
type Option func(*TranscriptRenderer)

// WithClock задает источник текущего времени для подписей "TODAY"/"YESTERDAY".
func WithClock(now func() time.Time) Option {
	return func(r *TranscriptRenderer) {
		r.now = now
	}
}

// WithLocation задает часовой пояс, в котором определяются календарные даты и время.
func WithLocation(loc *time.Location) Option {
	return func(r *TranscriptRenderer) {
		r.loc = loc
	}
}

// WithLogger задает логгер для пропущенных сообщений.
func WithLogger(logger *slog.Logger) Option {
	return func(r *TranscriptRenderer) {
		r.logger = logger
	}
}

// TranscriptRenderer превращает транскрипт в визуальные блоки за один проход.
// Рендерер не хранит состояния между вызовами Render и безопасен для параллельного использования.
type TranscriptRenderer struct {
	now    func() time.Time
	loc    *time.Location
	logger *slog.Logger
}

// NewTranscriptRenderer создает новый экземпляр TranscriptRenderer.
func NewTranscriptRenderer(opts ...Option) ports.Renderer {
	r := &TranscriptRenderer{
		now:    time.Now,
		loc:    time.Local,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// renderCursor хранит последнюю отрисованную дату в пределах одного прохода.
type renderCursor struct {
	lastDate civilDate
	set      bool
}

// advance сообщает, нужен ли разделитель перед сообщением с датой d, и сдвигает курсор.
func (c *renderCursor) advance(d civilDate) bool {
	if c.set && c.lastDate == d {
		return false
	}
	c.lastDate = d
	c.set = true
	return true
}

// Render выполняет проход по транскрипту. Порядок входа не меняется: при нарушенной
// хронологии появятся повторные разделители. Сообщения неизвестного типа пропускаются.
func (r *TranscriptRenderer) Render(transcript domain.Transcript, currentUser, mediaBasePath string) []domain.Block {
	now := r.now().In(r.loc)
	blocks := make([]domain.Block, 0, len(transcript)+1)
	var cursor renderCursor

	for i, msg := range transcript {
		ts, ok := ParseTimestamp(msg.Timestamp, r.loc)

		// Сообщение без разбираемой даты не открывает новый день и не сдвигает курсор.
		if ok && cursor.advance(dateOf(ts)) {
			blocks = append(blocks, domain.NewDateSeparator(DateLabel(ts, now)))
		}

		switch msg.Type {
		case domain.MessageTypeSystem:
			blocks = append(blocks, domain.NewSystemNotice(msg.Text))
		case domain.MessageTypeText, domain.MessageTypeMedia:
			blocks = append(blocks, r.renderBubble(msg, ts, ok, currentUser, mediaBasePath))
		default:
			r.logger.Warn("Unknown message type", "type", string(msg.Type), "index", i)
		}
	}

	return blocks
}

func (r *TranscriptRenderer) renderBubble(msg domain.Message, ts time.Time, parsed bool, currentUser, mediaBasePath string) domain.Block {
	block := domain.Block{
		Kind:      domain.BlockChatBubble,
		Direction: domain.DirectionIncoming,
		Text:      msg.Text,
		Time:      InvalidTimeLabel,
	}

	if msg.Sender == currentUser {
		block.Direction = domain.DirectionOutgoing
	} else if msg.Sender != "" {
		block.Sender = msg.Sender
	}

	if msg.Media != "" {
		media := ResolveMedia(msg.Media, mediaBasePath)
		block.Media = &media
	}

	if parsed {
		block.Time = FormatTime(ts)
	}
	return block
}
