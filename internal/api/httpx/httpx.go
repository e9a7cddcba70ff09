package httpx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/baharkarakas/campus-registration/internal/apperr"
	"github.com/baharkarakas/campus-registration/internal/logger"
)

type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	WriteJSON(w, r, status, APIError{Status: status, Message: msg})
}

// WriteServiceError answers with the status err maps to. Unclassified errors are
// logged and reported as a bare 500.
func WriteServiceError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	if !apperr.Public(err) {
		log.Error("unexpected failure", logger.Err(err))
	}
	WriteError(w, r, apperr.HTTPStatus(err), apperr.Message(err))
}
