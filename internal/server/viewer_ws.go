package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"whatsapp-chat-viewer/internal/core/viewer"
)

const (
	// Время на запись одного сообщения клиенту.
	writeWait = 10 * time.Second

	defaultPongWait = 60 * time.Second

	// Максимальный размер входящего взаимодействия.
	maxInteractionSize = 4096

	// ViewerVersionParam - параметр запроса с версией транскрипта, показанной на странице.
	ViewerVersionParam = "v"
)

type viewerError struct {
	Error string `json:"error"`
}

// handleViewer обслуживает одно соединение просмотрщика. Каталог берется из той версии
// транскрипта, которая показана на странице, поэтому открыть можно только показанные вложения.
func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	page, ok := s.loadPage(r, r.URL.Query().Get(ViewerVersionParam))
	if !ok {
		RespondError(w, http.StatusInternalServerError, LoadFailedMessage)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже записал ответ клиенту
		slog.Warn("Не удалось открыть websocket", "error", err)
		return
	}
	defer conn.Close()

	sessionID := uuid.NewString()
	logger := slog.With("viewer_session", sessionID)
	logger.Debug("Просмотрщик подключен", "catalog_size", len(page.Catalog), "version", page.Version)

	conn.SetReadLimit(maxInteractionSize)
	_ = conn.SetReadDeadline(time.Now().Add(s.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go s.pingViewer(conn, done, logger)

	v := viewer.NewViewer(page.Catalog)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("Соединение просмотрщика прервано", "error", err)
			}
			logger.Debug("Просмотрщик отключен")
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.pongWait))

		var reply any
		var in viewer.Interaction
		if err := json.Unmarshal(data, &in); err != nil {
			reply = viewerError{Error: "malformed interaction"}
		} else if state, err := v.Handle(in); err != nil {
			logger.Debug("Взаимодействие отклонено", "kind", in.Kind, "error", err)
			reply = viewerError{Error: err.Error()}
		} else {
			reply = state
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(reply); err != nil {
			if !errors.Is(err, websocket.ErrCloseSent) {
				logger.Warn("Не удалось отправить состояние просмотрщика", "error", err)
			}
			return
		}
	}
}

// pingViewer периодически отправляет ping, пока не закрыт done. WriteControl можно
// вызывать параллельно с WriteJSON цикла чтения.
func (s *Server) pingViewer(conn *websocket.Conn, done <-chan struct{}, logger *slog.Logger) {
	ticker := time.NewTicker(s.pongWait * 9 / 10)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				logger.Debug("Не удалось отправить ping", "error", err)
				return
			}
		}
	}
}
