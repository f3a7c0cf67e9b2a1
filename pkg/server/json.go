package server

import (
	"encoding/json"
	"net/http"

	"github.com/sage-x-project/sage-attest/pkg/protocol"
)

// maxRequestBody bounds POST /attest bodies. Presentations are a few KB.
const maxRequestBody = 4 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, protocol.ErrorResponse{Error: message, Code: status})
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	return dec.Decode(dst)
}
