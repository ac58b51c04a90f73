package source

import (
	"context"
	"errors"
	"fmt"
	"os"

	"whatsapp-chat-viewer/internal/ports"
)

// ErrEmptyPath возвращается, если путь к транскрипту не задан.
var ErrEmptyPath = errors.New("не указан путь к файлу")

// FileSource реализует интерфейс DataSource для чтения транскрипта с диска.
type FileSource struct {
	filePath string
}

// NewFileSource создает новый экземпляр FileSource.
func NewFileSource(filePath string) ports.DataSource {
	return &FileSource{filePath: filePath}
}

// Fetch читает файл по указанному пути и возвращает его содержимое.
func (s *FileSource) Fetch(_ context.Context) ([]byte, error) {
	if s.filePath == "" {
		return nil, ErrEmptyPath
	}

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", s.filePath, err)
	}

	return data, nil
}
