package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSource(t *testing.T) {
	ctx := context.Background()

	t.Run("NewFileSource создает корректный экземпляр", func(t *testing.T) {
		source := NewFileSource("chat.json")
		assert.NotNil(t, source)
	})

	t.Run("Fetch возвращает ошибку для пустого пути к файлу", func(t *testing.T) {
		source := &FileSource{filePath: ""}

		data, err := source.Fetch(ctx)

		assert.ErrorIs(t, err, ErrEmptyPath)
		assert.Nil(t, data)
		assert.Equal(t, "не указан путь к файлу", err.Error())
	})

	t.Run("Fetch возвращает ошибку для несуществующего файла", func(t *testing.T) {
		source := &FileSource{filePath: filepath.Join(t.TempDir(), "missing.json")}

		data, err := source.Fetch(ctx)

		assert.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Nil(t, data)
	})

	t.Run("Fetch возвращает данные для существующего файла", func(t *testing.T) {
		testData := []byte(`[{"type": "text", "timestamp": "2024-01-05T08:01:00", "sender": "Alice", "text": "Hi"}]`)
		path := filepath.Join(t.TempDir(), "chat.json")
		require.NoError(t, os.WriteFile(path, testData, 0644))

		source := &FileSource{filePath: path}

		data, err := source.Fetch(ctx)

		require.NoError(t, err)
		assert.Equal(t, testData, data)
	})
}
