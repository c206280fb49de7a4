// Package httpjson writes JSON responses with consistent headers and error
// shapes. Every API response in the portal goes through these helpers so
// clients always see `{"error": "..."}` on failure.
package httpjson

import (
	"encoding/json"
	"net/http"
)

// Write encodes v as JSON with the given status code.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes v with a 200 status.
func OK(w http.ResponseWriter, v any) {
	Write(w, http.StatusOK, v)
}

// Created writes v with a 201 status.
func Created(w http.ResponseWriter, v any) {
	Write(w, http.StatusCreated, v)
}

// Error writes `{"error": msg}` with the given status code.
func Error(w http.ResponseWriter, status int, msg string) {
	Write(w, status, map[string]string{"error": msg})
}

// Decode reads the request body as JSON into dst. Unknown fields are
// rejected so typos in client payloads surface as 400s instead of silently
// dropped data.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
