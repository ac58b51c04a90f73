package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSource(t *testing.T) {
	ctx := context.Background()

	t.Run("Fetch возвращает тело успешного ответа", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat.json", r.URL.Path)
			w.Write([]byte(`[]`))
		}))
		defer srv.Close()

		data, err := NewHTTPSource(srv.URL+"/chat.json", srv.Client()).Fetch(ctx)

		require.NoError(t, err)
		assert.Equal(t, []byte(`[]`), data)
	})

	t.Run("Fetch возвращает ошибку для статуса не 2xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer srv.Close()

		data, err := NewHTTPSource(srv.URL+"/chat.json", nil).Fetch(ctx)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "status: 404")
		assert.Nil(t, data)
	})

	t.Run("Fetch учитывает отмену контекста", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		}))
		defer srv.Close()

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := NewHTTPSource(srv.URL, nil).Fetch(cancelled)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Fetch с пустым URL", func(t *testing.T) {
		_, err := NewHTTPSource("", nil).Fetch(ctx)
		assert.ErrorIs(t, err, ErrEmptyPath)
	})
}

func TestForPath(t *testing.T) {
	assert.IsType(t, &HTTPSource{}, ForPath("https://example.com/chat.json", nil))
	assert.IsType(t, &HTTPSource{}, ForPath("HTTP://example.com/chat.json", nil))
	assert.IsType(t, &FileSource{}, ForPath("chat.json", nil))
	assert.IsType(t, &FileSource{}, ForPath("/var/data/chat.txt", nil))
}
