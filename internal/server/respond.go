package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// RespondJSON пишет v в теле ответа в формате JSON.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Не удалось записать JSON-ответ", "error", err)
	}
}

// RespondError пишет ответ вида {"error": message}.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"error": message})
}
