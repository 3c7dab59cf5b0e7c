// Package runs persists computed grade tables.
package runs

import (
	"context"
	"errors"

	"github.com/mind-engage/workshop-grades/internal/grading"
	"github.com/mind-engage/workshop-grades/internal/workshop"
)

var ErrNotFound = errors.New("run not found")

// Run is one stored reconciliation.
type Run struct {
	ID            string               `json:"id"`
	WorkshopTitle string               `json:"workshop_title"`
	CourseTitle   string               `json:"course_title"`
	CourseID      int                  `json:"course_id"`
	GroupIDs      []string             `json:"group_ids"`
	Groups        []grading.GroupScore `json:"groups"`
	CreatedAt     int64                `json:"created_at"`
	Rows          []grading.Computed   `json:"rows,omitempty"`
}

// Summary is a run without its rows.
type Summary struct {
	ID            string `json:"id"`
	WorkshopTitle string `json:"workshop_title"`
	CourseTitle   string `json:"course_title"`
	CourseID      int    `json:"course_id"`
	Participants  int    `json:"participants"`
	CreatedAt     int64  `json:"created_at"`
}

type ListOpts struct {
	CourseID int // 0 means every course
	Limit    int
	Offset   int
}

// Table rebuilds the grade table of the run.
func (r Run) Table() *grading.Table {
	return &grading.Table{Rows: r.Rows, Groups: r.Groups}
}

// FromResult turns a pipeline result into an unsaved run.
func FromResult(res *workshop.Result) Run {
	r := Run{
		WorkshopTitle: res.WorkshopTitle,
		CourseTitle:   res.CourseTitle,
		CourseID:      res.CourseID,
		GroupIDs:      res.GroupIDs,
	}
	if res.Grades != nil {
		r.Rows = res.Grades.Rows
		r.Groups = res.Grades.Groups
	}
	return r
}

type Store interface {
	Save(ctx context.Context, r Run) (Run, error)
	Get(ctx context.Context, id string) (Run, error)
	List(ctx context.Context, opts ListOpts) ([]Summary, error)
	Delete(ctx context.Context, id string) error
}
