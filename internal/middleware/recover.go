package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// Recover returns middleware that converts panics into a JSON 500
// response. In production the underlying message is hidden behind a
// generic one; otherwise it is echoed to ease debugging.
func Recover(logger *slog.Logger, production bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				logger.Error("panic recovered",
					"method", r.Method,
					"path", r.URL.Path,
					"panic", rec,
				)

				message := "An unexpected error occurred"
				if !production {
					message = fmt.Sprint(rec)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]any{
					"error":      "Internal Server Error",
					"message":    message,
					"statusCode": http.StatusInternalServerError,
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
