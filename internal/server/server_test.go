package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"whatsapp-chat-viewer/internal/adapters/exporter"
	"whatsapp-chat-viewer/internal/core/viewer"
	"whatsapp-chat-viewer/internal/domain"
	"whatsapp-chat-viewer/internal/pkg/config"
)

type mockPageBuilder struct {
	mock.Mock
}

func (m *mockPageBuilder) BuildPage(ctx context.Context) (domain.Page, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Page), args.Error(1)
}

func (m *mockPageBuilder) PageForVersion(ctx context.Context, version string) (domain.Page, error) {
	args := m.Called(ctx, version)
	return args.Get(0).(domain.Page), args.Error(1)
}

func testConfig(mediaDir string) *config.Config {
	return &config.Config{
		Server: config.Server{Host: "localhost", Port: 8080, ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second},
		Viewer: config.Viewer{Title: "Chat", MediaBasePath: "media/", MediaDir: mediaDir},
	}
}

func testPage() domain.Page {
	blocks := []domain.Block{
		domain.NewDateSeparator("JANUARY 5, 2024"),
		{Kind: domain.BlockChatBubble, Direction: domain.DirectionIncoming, Sender: "Alice", Text: "<script>alert(1)</script>", Time: "8:01 AM"},
		{
			Kind:      domain.BlockChatBubble,
			Direction: domain.DirectionOutgoing,
			Media:     &domain.MediaBlock{Kind: domain.MediaImage, Filename: "a.jpg", URL: "media/a.jpg", Clickable: true},
			Time:      "9:00 AM",
		},
	}
	return domain.Page{Title: "Chat", Blocks: blocks, Catalog: domain.BuildMediaCatalog(blocks)}
}

func newTestServer(t *testing.T, pages PageBuilder, opts ...Option) *Server {
	t.Helper()
	mediaDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(mediaDir, "a.jpg"), []byte("jpeg-bytes"), 0644))

	html := exporter.NewHTMLExporter(exporter.WithViewerEndpoint(ViewerEndpoint))
	srv, err := New(testConfig(mediaDir), pages, html, opts...)
	require.NoError(t, err)
	return srv
}

func TestServer(t *testing.T) {
	pages := new(mockPageBuilder)
	pages.On("BuildPage", mock.Anything).Return(testPage(), nil)
	srv := newTestServer(t, pages)

	t.Run("Health Check", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/health", nil)
		rr := httptest.NewRecorder()
		srv.HTTPServer.Handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp map[string]string
		err := json.NewDecoder(rr.Body).Decode(&resp)
		require.NoError(t, err)
		assert.Equal(t, "ok", resp["status"])
	})

	t.Run("Страница чата", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		rr := httptest.NewRecorder()
		srv.HTTPServer.Handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
		body := rr.Body.String()
		assert.Contains(t, body, "JANUARY 5, 2024")
		assert.Contains(t, body, "&lt;script&gt;alert(1)&lt;/script&gt;")
		assert.Contains(t, body, `data-viewer-endpoint="/api/v1/viewer/ws"`)
	})

	t.Run("Блоки в JSON", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/transcript/blocks", nil)
		rr := httptest.NewRecorder()
		srv.HTTPServer.Handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp blocksResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, "Chat", resp.Title)
		assert.Equal(t, testPage().Blocks, resp.Blocks)
		assert.Equal(t, testPage().Catalog, resp.Catalog)
	})

	t.Run("Раздача вложений", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/media/a.jpg", nil)
		rr := httptest.NewRecorder()
		srv.HTTPServer.Handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "jpeg-bytes", rr.Body.String())
	})

	t.Run("Отсутствующее вложение", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/media/missing.jpg", nil)
		rr := httptest.NewRecorder()
		srv.HTTPServer.Handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestServerLoadFailure(t *testing.T) {
	loadErr := errors.New("open chat.json: no such file or directory")
	pages := new(mockPageBuilder)
	pages.On("BuildPage", mock.Anything).Return(domain.Page{}, loadErr)

	var reported []error
	srv := newTestServer(t, pages, WithLoadErrorHook(func(err error) { reported = append(reported, err) }))

	t.Run("страница с сообщением об ошибке", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		rr := httptest.NewRecorder()
		srv.HTTPServer.Handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), LoadFailedMessage)
		assert.NotContains(t, rr.Body.String(), "no such file")
	})

	t.Run("API возвращает ошибку", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/transcript/blocks", nil)
		rr := httptest.NewRecorder()
		srv.HTTPServer.Handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		var resp map[string]string
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, LoadFailedMessage, resp["error"])
	})

	require.Len(t, reported, 2)
	assert.ErrorIs(t, reported[0], loadErr)
}

func TestViewerWebsocket(t *testing.T) {
	pages := new(mockPageBuilder)
	pages.On("BuildPage", mock.Anything).Return(testPage(), nil)
	srv := newTestServer(t, pages)

	ts := httptest.NewServer(srv.HTTPServer.Handler)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + ViewerEndpoint
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	send := func(t *testing.T, payload any) map[string]any {
		t.Helper()
		require.NoError(t, conn.WriteJSON(payload))
		var reply map[string]any
		require.NoError(t, conn.ReadJSON(&reply))
		return reply
	}

	t.Run("открытие изображения из каталога", func(t *testing.T) {
		reply := send(t, viewer.Interaction{Kind: viewer.MediaActivated, URL: "media/a.jpg", Media: domain.MediaImage})

		assert.Equal(t, true, reply["open"])
		image := reply["image"].(map[string]any)
		assert.Equal(t, "media/a.jpg", image["src"])
		assert.Equal(t, true, image["visible"])
	})

	t.Run("URL вне каталога отклоняется", func(t *testing.T) {
		reply := send(t, viewer.Interaction{Kind: viewer.MediaActivated, URL: "media/other.jpg", Media: domain.MediaImage})

		assert.Contains(t, reply["error"], "not in catalog")
	})

	t.Run("некорректное сообщение", func(t *testing.T) {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
		var reply map[string]any
		require.NoError(t, conn.ReadJSON(&reply))

		assert.Equal(t, "malformed interaction", reply["error"])
	})

	t.Run("Escape закрывает просмотрщик", func(t *testing.T) {
		reply := send(t, viewer.Interaction{Kind: viewer.KeyPressed, Key: viewer.EscapeKey})

		assert.Equal(t, false, reply["open"])
		assert.Nil(t, reply["current"])
	})
}

func dialViewer(t *testing.T, srv *Server, query string) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(srv.HTTPServer.Handler)
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + ViewerEndpoint + query
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		resp.Body.Close()
		conn.Close()
	})
	return conn
}

func TestViewerWebsocketVersion(t *testing.T) {
	shown := testPage()
	shown.Version = "v1"

	blocks := []domain.Block{
		{Kind: domain.BlockChatBubble, Media: &domain.MediaBlock{Kind: domain.MediaImage, URL: "media/new.jpg", Clickable: true}},
	}
	current := domain.Page{Title: "Chat", Version: "v2", Blocks: blocks, Catalog: domain.BuildMediaCatalog(blocks)}

	pages := new(mockPageBuilder)
	pages.On("PageForVersion", mock.Anything, "v1").Return(shown, nil)
	pages.On("BuildPage", mock.Anything).Return(current, nil)
	srv := newTestServer(t, pages)

	conn := dialViewer(t, srv, "?"+ViewerVersionParam+"=v1")

	require.NoError(t, conn.WriteJSON(viewer.Interaction{Kind: viewer.MediaActivated, URL: "media/a.jpg", Media: domain.MediaImage}))
	var reply map[string]any
	require.NoError(t, conn.ReadJSON(&reply))

	assert.Equal(t, true, reply["open"], "вложение с показанной страницы открывается после изменения файла")
	pages.AssertNotCalled(t, "BuildPage", mock.Anything)
}

func TestViewerWebsocketIdle(t *testing.T) {
	pages := new(mockPageBuilder)
	pages.On("BuildPage", mock.Anything).Return(testPage(), nil)
	srv := newTestServer(t, pages, WithViewerPongWait(200*time.Millisecond))

	conn := dialViewer(t, srv, "")

	pings := make(chan struct{}, 16)
	// Клиент получает ping, но не отвечает pong.
	conn.SetPingHandler(func(string) error {
		pings <- struct{}{}
		return nil
	})
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	_, _, err := conn.ReadMessage()
	require.Error(t, err)

	var netErr net.Error
	if errors.As(err, &netErr) {
		assert.False(t, netErr.Timeout(), "сервер должен закрыть молчащее соединение раньше клиента")
	}
	assert.NotEmpty(t, pings, "сервер отправляет ping")
}

func TestMediaMountPrefix(t *testing.T) {
	testCases := []struct {
		basePath string
		want     string
		ok       bool
	}{
		{"media/", "/media/", true},
		{"/static/media", "/static/media/", true},
		{"", "", false},
		{"./", "", false},
		{"https://cdn.example.com/media/", "", false},
		{"//cdn.example.com/media/", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.basePath, func(t *testing.T) {
			got, ok := mediaMountPrefix(tc.basePath)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
