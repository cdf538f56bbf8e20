package server

import (
	"encoding/json"
	"net/http"

	errs "github.com/matzehuels/selecttree/pkg/errors"
	"github.com/matzehuels/selecttree/pkg/observability"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	status := errs.HTTPStatus(code)

	msg := errs.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "request_id", requestIDFrom(r.Context()), "err", err)
		msg = "internal error"
	} else {
		s.logger.Warn("request rejected", "request_id", requestIDFrom(r.Context()), "code", code, "err", err)
	}
	observability.HTTP().OnError(r.Context(), r.Method, routePattern(r), err)

	writeJSON(w, status, ErrorResponse{
		Error:     msg,
		Code:      string(code),
		RequestID: requestIDFrom(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func notFound(r *http.Request) error {
	return errs.New(errs.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path)
}
