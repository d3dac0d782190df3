package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nyashahama/exit-valuation-backend/internal/metrics"
	"github.com/nyashahama/exit-valuation-backend/internal/schema"
)

// ─── ADMIN AUTH ───────────────────────────────────────────────────────────────

// requireAdminToken guards the lead admin routes with the X-Admin-Token
// header. The routes are only mounted when an admin token is configured.
func (s *Server) requireAdminToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Admin-Token")
		if token == "" {
			respondErr(w, http.StatusUnauthorized, "missing X-Admin-Token header")
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AdminToken)) != 1 {
			respondErr(w, http.StatusForbidden, "invalid admin token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ─── LOGGER MIDDLEWARE ────────────────────────────────────────────────────────

// loggerMiddleware logs each request and records its latency under the chi
// route pattern, so ids in paths do not explode metric cardinality.
func (s *Server) loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			elapsed := time.Since(start)
			metrics.RequestDuration.
				WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).
				Observe(elapsed.Seconds())

			s.logger.Info("http",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", elapsed.Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// ─── RESPONSE HELPERS ─────────────────────────────────────────────────────────

// envelope is the response shape the frontend expects on every endpoint.
type envelope struct {
	Success bool                `json:"success"`
	Result  any                 `json:"result,omitempty"`
	Error   string              `json:"error,omitempty"`
	Fields  []schema.FieldError `json:"fields,omitempty"`
}

// respond writes a JSON body with the given status code.
func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// respondOK wraps result in a success envelope.
func respondOK(w http.ResponseWriter, result any) {
	respond(w, http.StatusOK, envelope{Success: true, Result: result})
}

// respondErr writes a failure envelope.
func respondErr(w http.ResponseWriter, status int, message string) {
	respond(w, status, envelope{Error: message})
}

// respondInvalid writes a 400 with the field-level failures of err, if any.
func respondInvalid(w http.ResponseWriter, message string, err error) {
	env := envelope{Error: message}
	var ve *schema.ValidationError
	if errors.As(err, &ve) {
		env.Fields = ve.Fields
	}
	respond(w, http.StatusBadRequest, env)
}

// respondInternalErr logs an unexpected error and returns a 500 with a human
// message that leaks no internal detail.
func (s *Server) respondInternalErr(w http.ResponseWriter, r *http.Request, message string, err error) {
	s.logger.Error("internal error",
		"error", err,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
	)
	respondErr(w, http.StatusInternalServerError, message)
}

// ─── REQUEST PARSING HELPERS ─────────────────────────────────────────────────

// decode JSON-decodes r.Body into dst. Returns false and writes 400 if the
// body is missing, malformed, or too large. Callers should return immediately
// on false.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB max
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// logField returns a slog.Attr using the request ID for correlation.
func logField(r *http.Request) slog.Attr {
	return slog.String("request_id", middleware.GetReqID(r.Context()))
}
