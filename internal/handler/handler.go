// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/keydesk/keydesk/internal/handler/dto"
)

const (
	notFoundPage         = "<h1>404 - Page Not Found</h1>"
	methodNotAllowedPage = "<h1>405 - Method Not Allowed</h1>"
)

// errBodyTooLarge is returned by decodeBody once MaxBodySize trips.
var errBodyTooLarge = errors.New("request body too large")

// NotFound handles 404 responses.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, http.StatusNotFound, []byte(notFoundPage))
}

// MethodNotAllowed handles 405 responses.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, http.StatusMethodNotAllowed, []byte(methodNotAllowedPage))
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.ErrorResponse{Success: false, Message: message})
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true})
}

// decodeBody fills dst from a JSON or urlencoded form body. Form fields
// are matched to dst by JSON tag. An empty body leaves dst untouched.
func decodeBody(r *http.Request, dst any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/x-www-form-urlencoded":
		return decodeForm(r, dst, false)
	case "multipart/form-data":
		return decodeForm(r, dst, true)
	default:
		err := json.NewDecoder(r.Body).Decode(dst)
		if err == nil || errors.Is(err, io.EOF) {
			return nil
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge
		}
		return err
	}
}

func decodeForm(r *http.Request, dst any, multipart bool) error {
	var err error
	if multipart {
		err = r.ParseMultipartForm(1 << 20)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge
		}
		return err
	}

	fields := make(map[string]string, len(r.PostForm))
	for key := range r.PostForm {
		fields[key] = r.PostForm.Get(key)
	}

	// Re-encode through JSON so form and JSON bodies share the same tags.
	b, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
