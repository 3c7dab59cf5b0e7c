package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/workshop-grades/internal/report"
	"github.com/mind-engage/workshop-grades/internal/roster"
	"github.com/mind-engage/workshop-grades/internal/runs"
	"github.com/mind-engage/workshop-grades/internal/storage"
	"github.com/mind-engage/workshop-grades/internal/workshop"
)

// RunsDeps is what the run handlers need.
type RunsDeps struct {
	Store   runs.Store
	Blobs   storage.BlobStore
	Rosters workshop.RosterSource // used when the upload carries no roster
	Log     *slog.Logger

	MaxUploadBytes int64
}

func (d RunsDeps) logger() *slog.Logger {
	if d.Log == nil {
		return slog.Default()
	}
	return d.Log
}

// MountRuns registers the run routes on r. Permissions are the caller's
// concern.
func MountRuns(r chi.Router, d RunsDeps) {
	r.Post("/", CreateRunHandler(d))
	r.Get("/", ListRunsHandler(d.Store))
	r.Get("/{runID}", GetRunHandler(d.Store))
	r.Get("/{runID}/grades.csv", RunCSVHandler(d.Store))
	r.Delete("/{runID}", DeleteRunHandler(d.Store))
}

// POST /runs  multipart: report (required), roster (optional)
func CreateRunHandler(d RunsDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := d.logger()
		limit := d.MaxUploadBytes
		if limit <= 0 {
			limit = 32 << 20
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		if err := r.ParseMultipartForm(limit); err != nil {
			http.Error(w, "bad multipart: "+err.Error(), http.StatusBadRequest)
			return
		}

		raw, err := formBytes(r, "report")
		if err != nil {
			http.Error(w, "report file required", http.StatusBadRequest)
			return
		}
		doc, err := report.Parse(bytes.NewReader(raw), report.WithLogger(log))
		if err != nil {
			http.Error(w, "parse report: "+err.Error(), http.StatusBadRequest)
			return
		}

		src := d.Rosters
		if rb, err := formBytes(r, "roster"); err == nil {
			src = workshop.ReaderRoster(bytes.NewReader(rb))
		}
		if src == nil {
			http.Error(w, "roster file required", http.StatusBadRequest)
			return
		}

		res, err := workshop.Run(r.Context(), doc, src, workshop.WithLogger(log))
		if err != nil {
			http.Error(w, err.Error(), pipelineStatus(err))
			return
		}

		run, err := d.Store.Save(r.Context(), runs.FromResult(res))
		if err != nil {
			http.Error(w, "save run: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if d.Blobs != nil {
			keep(log, d.Blobs, storage.ReportKey(run.ID), bytes.NewReader(raw))
			var csv bytes.Buffer
			if err := res.Grades.WriteCSV(&csv); err == nil {
				keep(log, d.Blobs, storage.ExportKey(run.ID), &csv)
			}
		}
		respondJSON(w, http.StatusCreated, run)
	}
}

// GET /runs?course_id=&limit=&offset=
func ListRunsHandler(store runs.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		list, err := store.List(r.Context(), runs.ListOpts{
			CourseID: parseIntDefault(q.Get("course_id"), 0),
			Limit:    parseIntDefault(q.Get("limit"), 50),
			Offset:   parseIntDefault(q.Get("offset"), 0),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

// GET /runs/{runID}
func GetRunHandler(store runs.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := loadRun(w, r, store)
		if !ok {
			return
		}
		respondJSON(w, http.StatusOK, run)
	}
}

// GET /runs/{runID}/grades.csv
func RunCSVHandler(store runs.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := loadRun(w, r, store)
		if !ok {
			return
		}
		var buf bytes.Buffer
		if err := run.Table().WriteCSV(&buf); err != nil {
			http.Error(w, "write csv: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="course%d_%s.csv"`, run.CourseID, run.ID))
		_, _ = io.Copy(w, &buf)
	}
}

// DELETE /runs/{runID}
func DeleteRunHandler(store runs.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "runID"))
		if err := store.Delete(r.Context(), id); err != nil {
			if errors.Is(err, runs.ErrNotFound) {
				http.Error(w, "run not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// pipelineStatus maps a failed run to an HTTP status: unreconcilable input
// is 422, a roster missing from the data folder 404.
func pipelineStatus(err error) int {
	switch {
	case errors.Is(err, report.ErrNotFound),
		errors.Is(err, report.ErrConsistency),
		errors.Is(err, roster.ErrMembership),
		errors.Is(err, roster.ErrDuplicateName):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func loadRun(w http.ResponseWriter, r *http.Request, store runs.Store) (runs.Run, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "runID"))
	if id == "" {
		http.Error(w, "runID required", http.StatusBadRequest)
		return runs.Run{}, false
	}
	run, err := store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, runs.ErrNotFound) {
			http.Error(w, "run not found", http.StatusNotFound)
			return runs.Run{}, false
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return runs.Run{}, false
	}
	return run, true
}

func formBytes(r *http.Request, field string) ([]byte, error) {
	f, _, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// keep stores a copy of a run artifact; failures only cost the copy.
func keep(log *slog.Logger, bs storage.BlobStore, key string, r io.Reader) {
	if _, err := bs.Put(key, r); err != nil {
		log.Warn("store run artifact", slog.String("key", key), slog.String("err", err.Error()))
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
