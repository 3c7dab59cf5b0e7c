package storage

import (
	"errors"
	"io"
)

// ErrNotFound is returned when a key has no blob.
var ErrNotFound = errors.New("storage: not found")

// BlobStore holds the files a grading run reads and writes: uploaded
// reports, participant exports and the exported grade tables.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	SignedURL(key string) (string, error) // fs returns "file://..." for dev
}

// Keys used inside the data folder.
const (
	ReportsPrefix = "reports"
	ExportsPrefix = "exports"
)

// ReportKey is where an uploaded report of a run is kept.
func ReportKey(runID string) string { return ReportsPrefix + "/" + runID + ".html" }

// ExportKey is where the grade CSV of a run is kept.
func ExportKey(runID string) string { return ExportsPrefix + "/" + runID + ".csv" }
