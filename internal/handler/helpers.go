package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
)

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeValidationError surfaces the first violated rule as the primary
// message alongside the full list.
func writeValidationError(w http.ResponseWriter, msgs []string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":  msgs[0],
		"errors": msgs,
	})
}

// writeMalformed is the fixed response for unparsable request bodies,
// independent of route-level validation.
func writeMalformed(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":      "Bad Request",
		"message":    "Invalid JSON format",
		"statusCode": http.StatusBadRequest,
	})
}
