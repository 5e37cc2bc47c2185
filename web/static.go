// Package web embeds the admin panel pages and their assets.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFiles embed.FS

//go:embed pages/*.html
var pageFiles embed.FS

// StaticFS returns an http.FileSystem for the embedded static files.
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// Page returns the embedded HTML page with the given file name.
func Page(name string) ([]byte, error) {
	return pageFiles.ReadFile("pages/" + name)
}
