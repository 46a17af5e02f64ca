package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/goesarchive/goescat/pkg/log"
)

// errorEnvelope is the wire shape for every non-2xx response (§6).
type errorEnvelope struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithComponent("httpapi").Debug().Err(err).Msg("encode response failed")
	}
}

func writeError(w http.ResponseWriter, status int, kind, detail string) {
	writeJSON(w, status, errorEnvelope{Error: kind, Detail: detail})
}

func writeValidationError(w http.ResponseWriter, detail string) {
	writeError(w, http.StatusUnprocessableEntity, "validation", detail)
}

func writeNotFound(w http.ResponseWriter, detail string) {
	writeError(w, http.StatusNotFound, "not_found", detail)
}

func writeConflict(w http.ResponseWriter, detail string) {
	writeError(w, http.StatusConflict, "conflict", detail)
}

func writeForbidden(w http.ResponseWriter, detail string) {
	writeError(w, http.StatusForbidden, "forbidden", detail)
}

func writeInternal(w http.ResponseWriter, err error) {
	log.WithComponent("httpapi").Error().Err(err).Msg("internal error")
	writeError(w, http.StatusInternalServerError, "internal", "an internal error occurred")
}

// decodeJSON reads and decodes the request body into dst, writing a
// validation error response and returning false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeValidationError(w, "malformed JSON body: "+err.Error())
		return false
	}
	return true
}

// queryInt parses an integer query parameter, returning def if absent or
// unparsable.
func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
