package ports

import (
	"context"
	"io"

	"whatsapp-chat-viewer/internal/domain"
)

// DataSource определяет интерфейс для получения исходных данных транскрипта.
type DataSource interface {
	// Fetch загружает данные из источника и возвращает их в виде байтового среза.
	Fetch(ctx context.Context) ([]byte, error)
}

// Parser определяет интерфейс для разбора транскрипта.
type Parser interface {
	// Parse преобразует сырые данные в упорядоченный список сообщений.
	Parse(data []byte) (domain.Transcript, error)
}

// Renderer превращает транскрипт в последовательность визуальных блоков.
type Renderer interface {
	Render(transcript domain.Transcript, currentUser, mediaBasePath string) []domain.Block
}

// Exporter определяет интерфейс для вывода готового представления чата.
type Exporter interface {
	// Export записывает страницу в w.
	Export(w io.Writer, page domain.Page) error
}
