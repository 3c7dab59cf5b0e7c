package workshop_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/workshop-grades/internal/report"
	"github.com/mind-engage/workshop-grades/internal/roster"
	"github.com/mind-engage/workshop-grades/internal/workshop"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openDoc(t *testing.T) *report.Document {
	t.Helper()
	f, err := os.Open("testdata/grades_report.html")
	require.NoError(t, err)
	defer f.Close()
	doc, err := report.Parse(f, report.WithLogger(quietLogger()))
	require.NoError(t, err)
	return doc
}

// dirRoster finds the roster by its conventional file name in testdata.
func dirRoster(t *testing.T, gotID *int) workshop.RosterSource {
	return workshop.RosterFunc(func(_ context.Context, courseID int) (io.ReadCloser, error) {
		*gotID = courseID
		return os.Open(filepath.Join("testdata", roster.FileName(courseID)))
	})
}

func TestRun_Fixture(t *testing.T) {
	var courseID int
	res, err := workshop.Run(context.Background(), openDoc(t), dirRoster(t, &courseID), workshop.WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.Equal(t, 42, courseID)
	assert.Equal(t, "Workshop: Carbonate Content Analysis", res.WorkshopTitle)
	assert.Equal(t, "Geology for Dummies", res.CourseTitle)
	assert.Equal(t, []string{"Group A", "Group B"}, res.GroupIDs)

	type line struct {
		name                   string
		submission, assessment float64
		overall                float64
	}
	var got []line
	for _, r := range res.Grades.Rows {
		got = append(got, line{r.Name, r.Submission.OrZero(), r.Assessment.OrZero(), r.Overall})
	}
	assert.Equal(t, []line{
		{"Zoe Alba", 0, 0, 0},
		{"John Doe", 65, 20, 85},
		{"Ángel Peña", 85, 18.5, 103.5},
		{"Jane Roe", 0, 15, 15},
	}, got)
}

func TestRun_Idempotent(t *testing.T) {
	var id int
	doc := openDoc(t)
	a, err := workshop.Run(context.Background(), doc, dirRoster(t, &id), workshop.WithLogger(quietLogger()))
	require.NoError(t, err)
	b, err := workshop.Run(context.Background(), doc, dirRoster(t, &id), workshop.WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRun_RosterMissing(t *testing.T) {
	src := workshop.RosterFunc(func(context.Context, int) (io.ReadCloser, error) {
		return nil, os.ErrNotExist
	})
	_, err := workshop.Run(context.Background(), openDoc(t), src, workshop.WithLogger(quietLogger()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRun_NoCourseID(t *testing.T) {
	doc, err := report.Parse(strings.NewReader(`<html><body><table><tbody></tbody></table></body></html>`))
	require.NoError(t, err)
	_, err = workshop.Run(context.Background(), doc, workshop.ReaderRoster(strings.NewReader("")), workshop.WithLogger(quietLogger()))
	assert.ErrorIs(t, err, report.ErrNotFound)
}

func TestRun_PartialRoster(t *testing.T) {
	csv := "First name,Last name,ID number,Email address,Groups\n" +
		"Ángel,Peña,1001,a@x,Group A\n"
	res, err := workshop.Run(context.Background(), openDoc(t), workshop.ReaderRoster(strings.NewReader(csv)), workshop.WithLogger(quietLogger()))
	require.NoError(t, err)
	require.Len(t, res.Grades.Rows, 1)
	assert.Equal(t, "Ángel Peña", res.Grades.Rows[0].Name)
	assert.Equal(t, 85.0, res.Grades.Rows[0].Submission.OrZero())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestRun_RosterReadErrorIsFatal(t *testing.T) {
	_, err := workshop.Run(context.Background(), openDoc(t), workshop.ReaderRoster(failingReader{}), workshop.WithLogger(quietLogger()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "course 42")
}

func TestRun_AmbiguousRosterIsFatal(t *testing.T) {
	csv := "First name,Last name,ID number,Email address,Groups\n" +
		"Ángel,Peña,1001,a@x,Group A\n" +
		"Angel,Pena,1009,b@x,Group A\n"
	res, err := workshop.Run(context.Background(), openDoc(t), workshop.ReaderRoster(strings.NewReader(csv)), workshop.WithLogger(quietLogger()))
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, roster.ErrDuplicateName)
	assert.Contains(t, err.Error(), "1001")
	assert.Contains(t, err.Error(), "1009")
}
