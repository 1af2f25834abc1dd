package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"

	gojson "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/reoring/govalid"
)

// DefaultMaxBodyBytes caps request bodies read by ValidateJSON.
const DefaultMaxBodyBytes int64 = 1 << 20

type ctxKeyValues struct{}

// ContextWithValues attaches validated values to the context.
func ContextWithValues(ctx context.Context, v govalid.Values) context.Context {
	return context.WithValue(ctx, ctxKeyValues{}, v)
}

// ValuesFromContext retrieves the values stored by ValidateJSON.
func ValuesFromContext(ctx context.Context) (govalid.Values, bool) {
	v, ok := ctx.Value(ctxKeyValues{}).(govalid.Values)
	return v, ok
}

// Config tunes ValidateJSON. The zero value is usable.
type Config struct {
	// Options are passed to every validation. Warnings are suppressed when nil.
	Options *govalid.Options
	// MaxBodyBytes limits the body size; DefaultMaxBodyBytes when zero.
	MaxBodyBytes int64
	Logger       logrus.FieldLogger
}

// ErrorPayload shapes a validation failure for JSON responses.
func ErrorPayload(f *govalid.ValidationFailure) map[string]any {
	return map[string]any{"errors": f.Errors, "fields": f.Fields}
}

// ValidateJSON validates JSON request bodies against s. Valid requests reach
// next with the decoded values in their context. Malformed bodies get 400,
// oversized bodies 413 and failed validation 422.
func ValidateJSON(s *govalid.Schema, cfg Config) func(http.Handler) http.Handler {
	opts := cfg.Options
	if opts == nil {
		opts = &govalid.Options{SuppressWarning: true}
	}
	limit := cfg.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					writeJSON(w, log, http.StatusRequestEntityTooLarge, map[string]any{"error": "request body too large"})
					return
				}
				writeJSON(w, log, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			v, err := s.ValidateJSON(r.Context(), data, opts)
			if err != nil {
				if f, ok := govalid.AsFailure(err); ok {
					writeJSON(w, log, http.StatusUnprocessableEntity, ErrorPayload(f))
					return
				}
				writeJSON(w, log, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithValues(r.Context(), v)))
		})
	}
}

func writeJSON(w http.ResponseWriter, log logrus.FieldLogger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := gojson.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("govalid: writing error response")
	}
}
