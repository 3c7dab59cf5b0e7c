package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/workshop-grades/internal/roster"
	"github.com/mind-engage/workshop-grades/internal/storage"
)

// MountRosters lets clients upload participant exports into the data
// folder under their conventional names.
func MountRosters(r chi.Router, bs storage.BlobStore) {
	// PUT /rosters/{courseID}  multipart: file
	r.Put("/{courseID}", func(w http.ResponseWriter, r *http.Request) {
		courseID, err := strconv.Atoi(chi.URLParam(r, "courseID"))
		if err != nil || courseID <= 0 {
			http.Error(w, "bad course id", http.StatusBadRequest)
			return
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		key := roster.FileName(courseID)
		if _, err := bs.Put(key, f); err != nil {
			http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"key": key})
	})
}

// MountFiles serves stored run artifacts (uploaded reports and exports).
func MountFiles(r chi.Router, bs storage.BlobStore) {
	// GET /files/*   -> the blob at whatever follows /files/
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		var ct string
		switch {
		case strings.HasPrefix(key, storage.ExportsPrefix+"/"):
			ct = "text/csv; charset=utf-8"
		case strings.HasPrefix(key, storage.ReportsPrefix+"/"):
			// uploaded markup is never rendered in the gateway's origin
			ct = "application/octet-stream"
			w.Header().Set("Content-Disposition", "attachment")
		default:
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		rc, err := bs.Get(key)
		if err != nil {
			http.Error(w, "not found: "+err.Error(), http.StatusNotFound)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", ct)
		_, _ = io.Copy(w, rc)
	})
}
