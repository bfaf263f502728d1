package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/susu3304/taru/internal/barrel"
)

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		http.Error(w, `{"error":"Internal Server Error","message":"Failed to encode response"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// writeServiceError maps the accounting error taxonomy onto HTTP statuses.
func (a *API) writeServiceError(w http.ResponseWriter, err error) {
	switch barrel.ErrorKind(err) {
	case "validation":
		writeError(w, http.StatusBadRequest, err.Error())
	case "not_found":
		writeError(w, http.StatusNotFound, err.Error())
	case "conflict":
		writeError(w, http.StatusConflict, err.Error())
	default:
		a.logger.Error().Err(err).Msg("Unexpected service error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}
