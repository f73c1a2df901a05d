// Package web holds the browser page that draws the clock face.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"sync"
)

// IndexFile is the page served at the root of the HTTP surface.
const IndexFile = "index.html"

//go:embed all:static
var embeddedFS embed.FS

var (
	subOnce  sync.Once
	staticFS fs.FS
)

// GetFS returns the embedded assets rooted at the static directory, so callers
// can open "index.html" directly. Returns nil if the directory is missing.
func GetFS() fs.FS {
	subOnce.Do(func() {
		sub, err := fs.Sub(embeddedFS, "static")
		if err != nil {
			return
		}
		staticFS = sub
	})
	return staticFS
}

// GetHTTPFS returns an http.FileSystem for use with http.FileServer.
func GetHTTPFS() http.FileSystem {
	efs := GetFS()
	if efs == nil {
		return nil
	}
	return http.FS(efs)
}

// ReadIndex returns the contents of the page.
func ReadIndex() ([]byte, error) {
	return fs.ReadFile(embeddedFS, "static/"+IndexFile)
}

// ListEmbeddedFiles returns a list of all embedded files for debugging.
func ListEmbeddedFiles() []string {
	var files []string
	fs.WalkDir(embeddedFS, "static", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	return files
}
