package server

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/matzehuels/lineageview/pkg/errors"
	"github.com/matzehuels/lineageview/pkg/render"
)

var contentTypes = map[string]string{
	render.FormatJSON: "application/json",
	render.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	render.FormatSVG:  "image/svg+xml",
	render.FormatPNG:  "image/png",
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypes[render.FormatJSON])
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.cfg.Logger.Debug("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.cfg.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		if code == "" || code == errors.ErrCodeInternal {
			code, msg = errors.ErrCodeInternal, "internal error"
		}
	}
	s.writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}

// statusOf maps error codes onto HTTP statuses.
func statusOf(err error) int {
	switch errors.ClassOf(err) {
	case errors.ClassNotFound:
		return http.StatusNotFound
	case errors.ClassInvalid:
		return http.StatusBadRequest
	case errors.ClassUnsupported:
		return http.StatusNotImplemented
	case errors.ClassUnavailable:
		if errors.Is(err, errors.ErrCodeTimeout) {
			return http.StatusGatewayTimeout
		}
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
