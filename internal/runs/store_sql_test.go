package runs_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/workshop-grades/internal/db"
	"github.com/mind-engage/workshop-grades/internal/grading"
	"github.com/mind-engage/workshop-grades/internal/report"
	"github.com/mind-engage/workshop-grades/internal/roster"
	"github.com/mind-engage/workshop-grades/internal/runs"
	syncx "github.com/mind-engage/workshop-grades/internal/sync"
	"github.com/mind-engage/workshop-grades/internal/workshop"
)

func newStore(t *testing.T) (*runs.SQLStore, *syncx.EventRepo) {
	t.Helper()
	conn, err := db.Open(context.Background(), db.DriverSQLite,
		"file:"+filepath.Join(t.TempDir(), "runs.db")+"?mode=rwc")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return runs.NewSQLStore(conn), syncx.NewEventRepo(conn)
}

func sampleResult() *workshop.Result {
	return &workshop.Result{
		WorkshopTitle: "Workshop: Carbonate Content Analysis",
		CourseTitle:   "Geology for Dummies",
		CourseID:      42,
		GroupIDs:      []string{"Group A"},
		Grades: &grading.Table{
			Rows: []grading.Computed{
				{
					Name:       "Zoe Alba",
					Group:      "Group A",
					Submission: report.Graded(0),
					Assessment: report.NoGrade,
					Overall:    0,
				},
				{
					Name:       "Ángel Peña",
					IDNumber:   roster.IDNumber{Value: 1001, Valid: true},
					Group:      "Group A",
					Submission: report.Graded(85),
					Assessment: report.Graded(18.5),
					Overall:    103.5,
				},
			},
			Groups: []grading.GroupScore{
				{GroupID: "Group A", Members: []string{"Zoe Alba", "Ángel Peña"}, Score: report.Graded(85), PoolSize: 2},
			},
		},
	}
}

func TestSQLStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	s, events := newStore(t)

	saved, err := s.Save(ctx, runs.FromResult(sampleResult()))
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	assert.NotZero(t, saved.CreatedAt)

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, got)
	assert.False(t, got.Rows[0].IDNumber.Valid)
	assert.False(t, got.Rows[0].Assessment.Valid)

	// the stored table exports exactly like the computed one
	var a, b bytes.Buffer
	require.NoError(t, sampleResult().Grades.WriteCSV(&a))
	require.NoError(t, got.Table().WriteCSV(&b))
	assert.Equal(t, a.String(), b.String())

	evs, err := events.Since(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, syncx.EventGradesComputed, evs[0].Type)
	assert.Equal(t, saved.ID, evs[0].Ref)
}

func TestSQLStore_List(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	first, err := s.Save(ctx, runs.FromResult(sampleResult()))
	require.NoError(t, err)
	other := sampleResult()
	other.CourseID = 7
	_, err = s.Save(ctx, runs.FromResult(other))
	require.NoError(t, err)

	all, err := s.List(ctx, runs.ListOpts{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	only, err := s.List(ctx, runs.ListOpts{CourseID: 42})
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, first.ID, only[0].ID)
	assert.Equal(t, 2, only[0].Participants)
}

func TestSQLStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, runs.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "missing"), runs.ErrNotFound)
}

func TestSQLStore_Delete(t *testing.T) {
	ctx := context.Background()
	s, events := newStore(t)
	saved, err := s.Save(ctx, runs.FromResult(sampleResult()))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, saved.ID))
	_, err = s.Get(ctx, saved.ID)
	assert.ErrorIs(t, err, runs.ErrNotFound)

	evs, err := events.Since(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, syncx.EventRunDeleted, evs[1].Type)
}
