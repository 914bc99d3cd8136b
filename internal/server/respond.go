package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/na2kera/ai-rent-navi/internal/common"
	"github.com/na2kera/ai-rent-navi/internal/form"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the uniform failure payload. Field-level validation failures
// carry the error map; everything else carries a single message.
type errorBody struct {
	Error  string            `json:"error,omitempty"`
	Code   string            `json:"code,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

func fieldErrors(errs form.Errors) map[string]string {
	out := make(map[string]string, len(errs))
	for field, msg := range errs {
		out[string(field)] = msg
	}
	return out
}

// writeError maps domain errors onto HTTP statuses. The client always gets
// a JSON body it can render; nothing surfaces as a bare 500 page.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vf *form.ValidationFailed
	if errors.As(err, &vf) {
		writeJSON(w, http.StatusBadRequest, errorBody{Errors: fieldErrors(vf.Errors)})
		return
	}
	var region *form.RegionNotSupported
	if errors.As(err, &region) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: region.Error(), Code: "REGION_NOT_SUPPORTED"})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrTransport):
		status = http.StatusBadGateway
	case errors.Is(err, common.ErrFeatureOff):
		status = http.StatusServiceUnavailable
	}

	body := errorBody{Error: err.Error()}
	var app *common.AppError
	if errors.As(err, &app) {
		body.Error = app.Message
		body.Code = app.Code
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("http.internal_error", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, body)
}

// requestLogger tags each request with an id and logs method, path, status
// and elapsed time.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.New().String()
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info("http.request",
			"req_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
