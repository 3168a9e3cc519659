package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"fresh/apperr"

	"github.com/rs/zerolog/log"
)

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, map[string]string{"error": msg})
}

// Sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

// RespondWithAppError maps err to a status code. Only internal errors are
// logged; their cause never reaches the client.
func RespondWithAppError(w http.ResponseWriter, err error) {
	if errors.Is(err, apperr.ErrCartContention) {
		w.Header().Set("Retry-After", "1")
	}
	switch apperr.KindOf(err) {
	case apperr.KindConflict:
		RespondWithError(w, http.StatusConflict, message(err))
	case apperr.KindBadRequest:
		RespondWithError(w, http.StatusBadRequest, message(err))
	case apperr.KindNotFound:
		RespondWithError(w, http.StatusNotFound, message(err))
	case apperr.KindUnauthorized:
		RespondWithError(w, http.StatusUnauthorized, message(err))
	default:
		log.Error().Err(err).Msg("internal error")
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
	}
}

func message(err error) string {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae.Msg
	}
	return err.Error()
}

// DecodeJSON reads a bounded JSON body into v.
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return apperr.BadRequest("Invalid JSON payload")
	}
	return nil
}
