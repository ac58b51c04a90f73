package domain

// MessageType определяет тип записи в транскрипте.
type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeMedia  MessageType = "media"
	MessageTypeSystem MessageType = "system"
)

// Known сообщает, умеет ли рендерер отображать сообщения этого типа.
func (t MessageType) Known() bool {
	switch t {
	case MessageTypeText, MessageTypeMedia, MessageTypeSystem:
		return true
	default:
		return false
	}
}

// Message представляет одну запись транскрипта (элемент массива chat.json).
// Необязательные поля могут отсутствовать или быть null в JSON.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp"`
	Sender    string      `json:"sender,omitempty"`
	Text      string      `json:"text,omitempty"`
	Media     string      `json:"media,omitempty"`
}

// Transcript - упорядоченная последовательность сообщений.
// Порядок элементов совпадает с порядком отображения, сортировка не выполняется.
type Transcript []Message

// CountByType возвращает количество сообщений каждого типа.
func (t Transcript) CountByType() map[MessageType]int {
	counts := make(map[MessageType]int)
	for _, m := range t {
		counts[m.Type]++
	}
	return counts
}
