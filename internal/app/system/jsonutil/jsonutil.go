// Package jsonutil holds the small helpers every JSON handler shares:
// bounded request decoding and response writing.
package jsonutil

import (
	"encoding/json"
	"errors"
	"net/http"
)

// maxBodyBytes caps request bodies; nothing in this API legitimately
// sends more than a few KB.
const maxBodyBytes = 1 << 20

// ErrBadBody is returned for bodies that are absent, malformed, or
// over the size cap.
var ErrBadBody = errors.New("invalid JSON request body")

// Decode reads the request body into dst. Unknown fields are rejected
// so client typos surface as 400s instead of silently-ignored input.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return ErrBadBody
	}
	return nil
}

// Respond writes v as JSON with the given status.
func Respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
