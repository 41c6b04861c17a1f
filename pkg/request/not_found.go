package request

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
)

// NotFoundHandler returns a handler that returns a 404 response.
func NotFoundHandler(l *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeMessage(l, w, http.StatusNotFound, NewMessage("Not found"))
	}
}

// MethodNotAllowedHandler returns a handler that returns a 405 response.
func MethodNotAllowedHandler(l *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeMessage(l, w, http.StatusMethodNotAllowed, NewMessage("Method not allowed"))
	}
}

// InternalServerErrorHandler writes a 500 response.
func InternalServerErrorHandler(l *slog.Logger, w http.ResponseWriter) {
	writeMessage(l, w, http.StatusInternalServerError, NewMessage(ErrInternalServer.Error()))
}

func writeMessage(l *slog.Logger, w http.ResponseWriter, status int, msg any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		l.Error("Error encoding response", slog.String(logging.KeyError, err.Error()))
	}
}
