package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"whatsapp-chat-viewer/internal/ports"
)

// maxTranscriptSize ограничивает размер загружаемого по сети транскрипта.
const maxTranscriptSize = 64 << 20

// HTTPSource реализует интерфейс DataSource для загрузки транскрипта по URL.
// Повторные попытки не выполняются: любая ошибка считается фатальной для представления.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource создает новый экземпляр HTTPSource. Если client равен nil,
// используется http.DefaultClient.
func NewHTTPSource(url string, client *http.Client) ports.DataSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{url: url, client: client}
}

// Fetch выполняет GET-запрос и возвращает тело ответа.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	if s.url == "" {
		return nil, ErrEmptyPath
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", s.url, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error! status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTranscriptSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from %s: %w", s.url, err)
	}
	return data, nil
}

// IsRemote сообщает, указывает ли путь на http(s)-ресурс.
func IsRemote(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// ForPath выбирает источник по виду пути: URL загружается по HTTP, остальное читается с диска.
func ForPath(path string, client *http.Client) ports.DataSource {
	if IsRemote(path) {
		return NewHTTPSource(path, client)
	}
	return NewFileSource(path)
}
