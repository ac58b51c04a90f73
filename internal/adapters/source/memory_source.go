package source

import (
	"context"
	"errors"

	"whatsapp-chat-viewer/internal/ports"
)

// ErrDataNotSet возвращается MemorySource без данных.
var ErrDataNotSet = errors.New("data not set")

// MemorySource реализует интерфейс DataSource для чтения данных из памяти.
// Используется для транскрипта, прочитанного из stdin.
type MemorySource struct {
	data []byte
}

// NewMemorySource создает новый экземпляр MemorySource.
func NewMemorySource(data []byte) ports.DataSource {
	return &MemorySource{data: data}
}

// Fetch возвращает данные из памяти.
func (s *MemorySource) Fetch(_ context.Context) ([]byte, error) {
	if s.data == nil {
		return nil, ErrDataNotSet
	}

	// Возвращаем копию данных, чтобы избежать изменений оригинальных данных
	dataCopy := make([]byte, len(s.data))
	copy(dataCopy, s.data)

	return dataCopy, nil
}
