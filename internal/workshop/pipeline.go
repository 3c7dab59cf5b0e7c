// Package workshop runs the grade reconciliation for one workshop report.
package workshop

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mind-engage/workshop-grades/internal/grading"
	"github.com/mind-engage/workshop-grades/internal/report"
	"github.com/mind-engage/workshop-grades/internal/roster"
)

// RosterSource opens the participants export of a course.
type RosterSource interface {
	OpenRoster(ctx context.Context, courseID int) (io.ReadCloser, error)
}

// RosterFunc adapts a function to RosterSource.
type RosterFunc func(ctx context.Context, courseID int) (io.ReadCloser, error)

func (f RosterFunc) OpenRoster(ctx context.Context, courseID int) (io.ReadCloser, error) {
	return f(ctx, courseID)
}

// ReaderRoster serves an already opened roster regardless of course id.
func ReaderRoster(r io.Reader) RosterSource {
	return RosterFunc(func(context.Context, int) (io.ReadCloser, error) {
		return io.NopCloser(r), nil
	})
}

// Result is everything a run produces.
type Result struct {
	WorkshopTitle string         `json:"workshop_title"`
	CourseTitle   string         `json:"course_title"`
	CourseID      int            `json:"course_id"`
	GroupIDs      []string       `json:"group_ids"`
	Grades        *grading.Table `json:"grades"`
}

type Option func(*options)

type options struct {
	log *slog.Logger
}

func WithLogger(l *slog.Logger) Option { return func(o *options) { o.log = l } }

// Run reconciles a parsed report against its course roster. The steps are
// strictly ordered: the course id picks the roster, the group selector
// picks the active groups, and only then are peer grades aggregated. Any
// error aborts the run without a partial table.
func Run(ctx context.Context, doc *report.Document, src RosterSource, opts ...Option) (*Result, error) {
	o := options{}
	for _, fn := range opts {
		fn(&o)
	}
	if o.log == nil {
		o.log = slog.Default()
	}
	log := o.log

	res := &Result{}
	var err error
	if res.WorkshopTitle, err = doc.WorkshopTitle(); err != nil {
		log.Warn("workshop title unavailable", slog.String("err", err.Error()))
	}
	if res.CourseTitle, err = doc.CourseTitle(); err != nil {
		log.Warn("course title unavailable", slog.String("err", err.Error()))
	}
	if res.CourseID, err = doc.CourseID(); err != nil {
		return nil, fmt.Errorf("workshop: %w", err)
	}
	if res.GroupIDs, err = doc.GroupIDs(); err != nil {
		return nil, fmt.Errorf("workshop: %w", err)
	}

	rs, err := loadRoster(ctx, src, res.CourseID, log)
	if err != nil {
		return nil, err
	}

	table, err := doc.Grades()
	if err != nil {
		return nil, fmt.Errorf("workshop: %w", err)
	}

	res.Grades = grading.Compute(table, res.GroupIDs, rs, grading.WithLogger(log))
	log.Info("grades computed",
		slog.String("workshop", res.WorkshopTitle),
		slog.Int("course_id", res.CourseID),
		slog.Int("groups", len(res.GroupIDs)),
		slog.Int("report_participants", table.Len()),
		slog.Int("graded", len(res.Grades.Rows)))
	return res, nil
}

func loadRoster(ctx context.Context, src RosterSource, courseID int, log *slog.Logger) (*roster.Roster, error) {
	rc, err := src.OpenRoster(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("workshop: open roster for course %d: %w", courseID, err)
	}
	defer rc.Close()
	rs, err := roster.Load(rc, courseID, roster.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("workshop: roster for course %d: %w", courseID, err)
	}
	return rs, nil
}
