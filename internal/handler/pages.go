package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/keydesk/keydesk/web"
)

// PageHandler serves the embedded HTML pages of the panel.
type PageHandler struct {
	logger *slog.Logger
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(logger *slog.Logger) *PageHandler {
	return &PageHandler{logger: logger}
}

// Serve returns a handler writing the named page.
func (h *PageHandler) Serve(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := web.Page(name)
		if err != nil {
			h.logger.Error("page missing from build", slog.String("page", name), slog.String("error", err.Error()))
			writeHTML(w, http.StatusInternalServerError, []byte("<h1>500 - Internal Server Error</h1>"))
			return
		}
		w.Header().Set("X-Robots-Tag", "noindex")
		writeHTML(w, http.StatusOK, body)
	}
}

// Static serves embedded assets under /static/. Directory listings are 404s.
func Static() http.Handler {
	files := http.StripPrefix("/static/", http.FileServer(web.StaticFS()))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, r)
	})
}
