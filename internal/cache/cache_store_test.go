package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-chat-viewer/internal/domain"
)

func sampleTranscript(text string) domain.Transcript {
	return domain.Transcript{{Type: domain.MessageTypeText, Timestamp: "2024-01-05T08:00:00", Text: text}}
}

func TestCacheStore(t *testing.T) {
	t.Run("Создание нового хранилища кэша", func(t *testing.T) {
		cs := NewCacheStore()
		assert.NotNil(t, cs)
		assert.Equal(t, 0, cs.Len())
	})

	t.Run("Запись и чтение из кэша", func(t *testing.T) {
		cs := NewCacheStore()
		key := "test_key"
		data := sampleTranscript("hi")
		ttl := 1 * time.Minute

		cs.Put(key, data, ttl)

		item, found := cs.Get(key)
		require.True(t, found)
		require.NotNil(t, item)
		assert.Equal(t, data, item.Data)
		assert.WithinDuration(t, time.Now().Add(ttl), item.ExpiresAt, 1*time.Second)
	})

	t.Run("Чтение несуществующего ключа", func(t *testing.T) {
		cs := NewCacheStore()
		_, found := cs.Get("non_existent_key")
		assert.False(t, found)
	})

	t.Run("Чтение просроченного ключа", func(t *testing.T) {
		cs := NewCacheStore()
		base := time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)
		cs.now = func() time.Time { return base }
		cs.Put("key", sampleTranscript("x"), time.Minute)

		cs.now = func() time.Time { return base.Add(2 * time.Minute) }

		_, found := cs.Get("key")
		assert.False(t, found)
	})

	t.Run("Очистка просроченных ключей", func(t *testing.T) {
		cs := NewCacheStore()
		cs.Put("expired", sampleTranscript("a"), -1*time.Minute)
		cs.Put("valid", sampleTranscript("b"), 1*time.Minute)

		cs.CleanupExpired()

		assert.Equal(t, 1, cs.Len())
		_, foundValid := cs.Get("valid")
		assert.True(t, foundValid, "Действительный элемент не должен быть удален")
	})
}

func TestStartCleanupTicker(t *testing.T) {
	cs := NewCacheStore()
	cs.Put("expired", sampleTranscript("a"), 50*time.Millisecond)
	cs.Put("valid", sampleTranscript("b"), 1*time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cs.StartCleanupTicker(ctx, 100*time.Millisecond)

	assert.Eventually(t, func() bool { return cs.Len() == 1 }, 2*time.Second, 20*time.Millisecond,
		"Просроченный элемент должен быть удален таймером")

	_, foundValid := cs.Get("valid")
	assert.True(t, foundValid, "Действительный элемент должен остаться")
}

func TestCalculateHash(t *testing.T) {
	// SHA256 для "hello world"
	expectedHash := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	assert.Equal(t, expectedHash, CalculateHash([]byte("hello world")))
	assert.NotEqual(t, CalculateHash([]byte("[]")), CalculateHash([]byte("[ ]")))
}
