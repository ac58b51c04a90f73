package domain

// BlockKind определяет вид визуального блока.
type BlockKind string

const (
	BlockDateSeparator BlockKind = "date_separator"
	BlockSystemNotice  BlockKind = "system_notice"
	BlockChatBubble    BlockKind = "chat_bubble"
)

// Direction - направление пузыря сообщения.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// MediaKind - категория вложения, определяемая по расширению файла.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
	MediaFile  MediaKind = "file"
)

// Viewable сообщает, может ли вложение открываться в полноэкранном просмотрщике.
func (k MediaKind) Viewable() bool {
	return k == MediaImage || k == MediaVideo
}

// MediaBlock описывает вложение внутри пузыря.
type MediaBlock struct {
	Kind      MediaKind `json:"kind"`
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	Clickable bool      `json:"clickable"`
}

// NotFoundNotice возвращает текст, который подставляется вместо вложения,
// если оно не загрузилось при отображении. Для обычных файлов это сама ссылка.
func (m MediaBlock) NotFoundNotice() string {
	switch m.Kind {
	case MediaImage:
		return "📷 Image not found: " + m.Filename
	case MediaVideo:
		return "🎥 Video not found: " + m.Filename
	case MediaAudio:
		return "🔊 Audio not found: " + m.Filename
	default:
		return "📎 File: " + m.Filename
	}
}

// Block - визуальный блок, полученный из транскрипта за один проход рендеринга.
// Набор заполненных полей зависит от Kind; после создания блок не изменяется.
type Block struct {
	Kind      BlockKind   `json:"kind"`
	Label     string      `json:"label,omitempty"`
	Text      string      `json:"text,omitempty"`
	Direction Direction   `json:"direction,omitempty"`
	Sender    string      `json:"sender,omitempty"`
	Media     *MediaBlock `json:"media,omitempty"`
	Time      string      `json:"time,omitempty"`
}

// NewDateSeparator создает разделитель дат.
func NewDateSeparator(label string) Block {
	return Block{Kind: BlockDateSeparator, Label: label}
}

// NewSystemNotice создает системное уведомление.
func NewSystemNotice(text string) Block {
	return Block{Kind: BlockSystemNotice, Text: text}
}

// IsOutgoing сообщает, является ли блок исходящим пузырем.
func (b Block) IsOutgoing() bool {
	return b.Kind == BlockChatBubble && b.Direction == DirectionOutgoing
}

// MediaRef - элемент каталога медиа: то, что можно открыть в просмотрщике.
type MediaRef struct {
	URL  string    `json:"url"`
	Kind MediaKind `json:"kind"`
}

// MediaCatalog - упорядоченный список кликабельных вложений одного прохода рендеринга.
type MediaCatalog []MediaRef

// BuildMediaCatalog собирает каталог из блоков в порядке их следования.
func BuildMediaCatalog(blocks []Block) MediaCatalog {
	var catalog MediaCatalog
	for _, b := range blocks {
		if b.Media != nil && b.Media.Clickable {
			catalog = append(catalog, MediaRef{URL: b.Media.URL, Kind: b.Media.Kind})
		}
	}
	return catalog
}

// Lookup ищет вложение по URL.
func (c MediaCatalog) Lookup(url string) (MediaRef, bool) {
	for _, ref := range c {
		if ref.URL == url {
			return ref, true
		}
	}
	return MediaRef{}, false
}

// Page - все, что нужно экспортеру для вывода одного представления чата.
// Непустой Error выводится вместо содержимого, блоки при этом не отображаются.
// Version идентифицирует содержимое транскрипта, по которому построены блоки.
type Page struct {
	Title   string
	Version string
	Blocks  []Block
	Catalog MediaCatalog
	Error   string
}
