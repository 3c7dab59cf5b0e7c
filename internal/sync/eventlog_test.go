package syncx_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/workshop-grades/internal/db"
	syncx "github.com/mind-engage/workshop-grades/internal/sync"
)

func TestEventRepo_AppendSince(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(ctx, db.DriverSQLite, "file:"+filepath.Join(t.TempDir(), "ev.db")+"?mode=rwc")
	require.NoError(t, err)
	defer conn.Close()

	repo := syncx.NewEventRepo(conn)
	require.NoError(t, repo.AppendJSON(ctx, syncx.EventGradesComputed, "run-1", map[string]int{"rows": 4}))
	require.NoError(t, repo.WithSite("lab").Append(ctx, syncx.Event{Type: syncx.EventRunDeleted, Ref: "run-1", DataJSON: "{}"}))

	evs, err := repo.Since(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, syncx.EventGradesComputed, evs[0].Type)
	assert.Equal(t, `{"rows":4}`, evs[0].DataJSON)
	assert.Equal(t, "local", evs[0].SiteID)
	assert.Equal(t, "lab", evs[1].SiteID)

	later, err := repo.Since(ctx, evs[0].Seq, 10)
	require.NoError(t, err)
	require.Len(t, later, 1)
	assert.Equal(t, "run-1", later[0].Ref)
}
