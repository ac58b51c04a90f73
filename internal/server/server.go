package server

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"whatsapp-chat-viewer/internal/adapters/source"
	"whatsapp-chat-viewer/internal/domain"
	"whatsapp-chat-viewer/internal/pkg/config"
	"whatsapp-chat-viewer/internal/ports"
)

const (
	// ViewerEndpoint - путь websocket полноэкранного просмотрщика.
	ViewerEndpoint = "/api/v1/viewer/ws"

	// LoadFailedMessage показывается пользователю вместо чата, если транскрипт не загрузился.
	LoadFailedMessage = "Failed to load chat. Please ensure chat.json exists."
)

// PageBuilder определяет интерфейс варианта использования, который строит страницу чата.
type PageBuilder interface {
	BuildPage(ctx context.Context) (domain.Page, error)
	// PageForVersion возвращает страницу для версии транскрипта, уже показанной клиенту.
	PageForVersion(ctx context.Context, version string) (domain.Page, error)
}

// Option - функциональная опция для настройки Server.
type Option func(*Server)

// WithLoadErrorHook задает функцию, которая получает ошибки загрузки транскрипта
// (например, для отправки в Sentry).
func WithLoadErrorHook(hook func(error)) Option {
	return func(s *Server) {
		s.onLoadError = hook
	}
}

// WithViewerPongWait задает, сколько соединение просмотрщика может молчать
// (без сообщений и pong), прежде чем сервер его закроет.
func WithViewerPongWait(d time.Duration) Option {
	return func(s *Server) {
		s.pongWait = d
	}
}

// Server представляет HTTP-сервер
type Server struct {
	HTTPServer  *http.Server
	cfg         *config.Config
	pages       PageBuilder
	exporter    ports.Exporter
	upgrader    websocket.Upgrader
	onLoadError func(error)
	pongWait    time.Duration
}

// New создает новый экземпляр Server
func New(cfg *config.Config, pages PageBuilder, exporter ports.Exporter, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:      cfg,
		pages:    pages,
		exporter: exporter,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		onLoadError: func(error) {},
		pongWait:    defaultPongWait,
	}
	for _, opt := range opts {
		opt(s)
	}

	chiRouter := chi.NewRouter()

	// Промежуточное ПО
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(middleware.Logger)
	chiRouter.Use(middleware.Recoverer)

	chiRouter.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	chiRouter.Get("/", s.handlePage)

	chiRouter.Route("/api/v1", func(r chi.Router) {
		r.Get("/transcript/blocks", s.handleBlocks)
		r.Get("/viewer/ws", s.handleViewer)
	})

	if prefix, ok := mediaMountPrefix(cfg.Viewer.MediaBasePath); ok && cfg.Viewer.MediaDir != "" {
		slog.Info("Раздача вложений", "prefix", prefix, "dir", cfg.Viewer.MediaDir)
		chiRouter.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.Viewer.MediaDir))))
	}

	s.HTTPServer = &http.Server{
		Addr:         cfg.Address(),
		Handler:      chiRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

// mediaMountPrefix возвращает путь, под которым сервер отдает каталог вложений.
// Внешние адреса вложений сервер не обслуживает.
func mediaMountPrefix(basePath string) (string, bool) {
	if source.IsRemote(basePath) || strings.HasPrefix(basePath, "//") {
		return "", false
	}
	trimmed := strings.Trim(basePath, "/")
	if trimmed == "" || trimmed == "." {
		return "", false
	}
	return "/" + trimmed + "/", true
}

// loadPage строит страницу и сообщает об ошибке загрузки.
// Непустая version запрашивает уже показанную клиенту версию транскрипта.
func (s *Server) loadPage(r *http.Request, version string) (domain.Page, bool) {
	var (
		page domain.Page
		err  error
	)
	if version == "" {
		page, err = s.pages.BuildPage(r.Context())
	} else {
		page, err = s.pages.PageForVersion(r.Context(), version)
	}
	if err != nil {
		slog.Error("Не удалось загрузить чат", "error", err, "request_id", middleware.GetReqID(r.Context()))
		s.onLoadError(err)
		return domain.Page{}, false
	}
	return page, true
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	page, ok := s.loadPage(r, "")
	if !ok {
		status = http.StatusInternalServerError
		page = domain.Page{Title: s.cfg.Viewer.Title, Error: LoadFailedMessage}
	}

	// Страница собирается целиком до отправки, частичный вывод невозможен.
	var buf bytes.Buffer
	if err := s.exporter.Export(&buf, page); err != nil {
		slog.Error("Не удалось сформировать страницу", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

type blocksResponse struct {
	Title   string              `json:"title"`
	Version string              `json:"version"`
	Blocks  []domain.Block      `json:"blocks"`
	Catalog domain.MediaCatalog `json:"catalog"`
}

func (s *Server) handleBlocks(w http.ResponseWriter, r *http.Request) {
	page, ok := s.loadPage(r, "")
	if !ok {
		RespondError(w, http.StatusInternalServerError, LoadFailedMessage)
		return
	}

	resp := blocksResponse{
		Title:   page.Title,
		Version: page.Version,
		Blocks:  page.Blocks,
		Catalog: page.Catalog,
	}
	if resp.Blocks == nil {
		resp.Blocks = []domain.Block{}
	}
	if resp.Catalog == nil {
		resp.Catalog = domain.MediaCatalog{}
	}
	RespondJSON(w, http.StatusOK, resp)
}

// ListenAndServe запускает HTTP-сервер
func (s *Server) ListenAndServe() error {
	return s.HTTPServer.ListenAndServe()
}

// Shutdown корректно завершает работу HTTP-сервера
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Завершение работы HTTP-сервера")
	return s.HTTPServer.Shutdown(ctx)
}
