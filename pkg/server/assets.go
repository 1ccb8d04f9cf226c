package server

import (
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/windowsadmins/appstore/pkg/web"
)

// assetHandler serves files directly inside dir by base name. Names that
// carry a path component never leave dir; they are reported as not found.
func assetHandler(dir string, attachment bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, ok := assetName(chi.URLParam(r, "filename"), r.URL.RawPath != "")
		if !ok || dir == "" {
			web.WriteJSON(w, http.StatusNotFound, errorBody{Error: "file not found"})
			return
		}

		path := filepath.Join(dir, name)
		f, err := os.Open(path)
		if err != nil {
			web.WriteJSON(w, http.StatusNotFound, errorBody{Error: "file not found"})
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			web.WriteJSON(w, http.StatusNotFound, errorBody{Error: "file not found"})
			return
		}

		if attachment {
			w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
		}
		http.ServeContent(w, r, name, info.ModTime(), f)
	}
}

// assetName validates the route parameter. chi matches against RawPath when
// the request carries one, so only then is the parameter still escaped.
func assetName(param string, escaped bool) (string, bool) {
	name := param
	if escaped {
		var err error
		if name, err = url.PathUnescape(param); err != nil {
			return "", false
		}
	}
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.Contains(name, "\x00") ||
		filepath.Base(name) != name || filepath.VolumeName(name) != "" {
		return "", false
	}
	return name, true
}
