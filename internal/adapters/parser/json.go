package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"whatsapp-chat-viewer/internal/domain"
	"whatsapp-chat-viewer/internal/ports"
)

// ErrNotArray возвращается, если верхний уровень документа не является JSON-массивом.
var ErrNotArray = errors.New("transcript is not a json array")

// JsonParser реализует интерфейс Parser для разбора chat.json (JSON-массив сообщений).
type JsonParser struct{}

// NewJsonParser создает новый экземпляр JsonParser.
func NewJsonParser() ports.Parser {
	return &JsonParser{}
}

// Parse преобразует срез байт с JSON-массивом в транскрипт.
func (p *JsonParser) Parse(data []byte) (domain.Transcript, error) {
	var transcript domain.Transcript
	if err := json.Unmarshal(data, &transcript); err != nil {
		return nil, fmt.Errorf("failed to unmarshal json: %w", err)
	}
	// null разбирается без ошибки, но транскриптом не является.
	if transcript == nil {
		return nil, ErrNotArray
	}
	return transcript, nil
}

// ForPath выбирает парсер по расширению файла транскрипта:
// .txt разбирается как текстовый экспорт WhatsApp, все остальное как JSON.
func ForPath(p string) ports.Parser {
	// URL может содержать query, поэтому отрезаем его перед проверкой расширения.
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if strings.EqualFold(path.Ext(p), ".txt") {
		return NewWhatsAppTextParser()
	}
	return NewJsonParser()
}
