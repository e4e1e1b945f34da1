package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// envelope carries the common success/message pair. Response payload structs
// embed it so their fields marshal as top-level siblings of success and
// message, never under a nested wrapper key.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func ok(message string) envelope { return envelope{Success: true, Message: message} }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

// decodeJSON reads a bounded, strict JSON body into dst. Unknown fields and
// trailing garbage are rejected so typos fail loudly instead of silently.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return errors.New("request body is not valid JSON")
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
