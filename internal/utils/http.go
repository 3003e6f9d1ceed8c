package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-field-keeper/models"
)

// maxBodyBytes bounds request bodies decoded by [ReadJSON].
const maxBodyBytes = 1 << 20

var ErrEmptyBody = errors.New("request body is empty")

// WriteJSON serializes data to JSON and writes it with statusCode.
//
// If marshaling fails, it responds with 500 Internal Server Error and returns
// a wrapped error.
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return w.Write(jsonData)
}

// WriteError writes the uniform error body. A positive retryAfterSeconds
// also sets the Retry-After header.
func WriteError(w http.ResponseWriter, statusCode int, message string, retryAfterSeconds int) {
	if retryAfterSeconds > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	}
	_, _ = WriteJSON(w, models.ErrorResponse{Error: message, RetryAfterSeconds: retryAfterSeconds}, statusCode)
}

// ReadJSON decodes a single JSON document from the request body into dst.
func ReadJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return ErrEmptyBody
	}

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("error decoding request body: %w", err)
	}
	return nil
}

// ClientIP returns the caller address without the port, or nil when the
// request carries none. Proxy headers are only honoured when chi's RealIP
// middleware rewrote RemoteAddr beforehand.
func ClientIP(r *http.Request) *string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if addr == "" {
		return nil
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	if addr == "" {
		return nil
	}
	return &addr
}

// OptionalHeader returns a pointer to the header value, or nil when empty.
func OptionalHeader(r *http.Request, name string) *string {
	value := strings.TrimSpace(r.Header.Get(name))
	if value == "" {
		return nil
	}
	return &value
}
