package server

import (
	"encoding/json"
	"net/http"
	"strings"

	grapeserrors "github.com/matzehuels/grapes/pkg/errors"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeStatus(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

// statusOf maps an error code to an HTTP status.
func statusOf(code grapeserrors.Code) int {
	switch {
	case code == grapeserrors.ErrCodeNotFound:
		return http.StatusNotFound
	case strings.HasPrefix(string(code), "INVALID_"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := grapeserrors.GetCode(err)
	if code == "" {
		code = grapeserrors.ErrCodeInternal
	}
	status := statusOf(code)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err, "id", RequestID(r.Context()))
	}
	writeStatus(w, status, string(code), grapeserrors.UserMessage(err))
}
