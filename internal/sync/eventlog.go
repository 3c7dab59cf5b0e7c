// Package syncx keeps the append-only log of what happened to grade runs.
package syncx

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Event types.
const (
	EventGradesComputed = "GradesComputed"
	EventRunDeleted     = "RunDeleted"
)

type Event struct {
	Seq       int64
	SiteID    string
	Type      string
	Ref       string
	DataJSON  string
	CreatedAt int64
}

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type EventRepo struct {
	db     Execer
	siteID string
}

func NewEventRepo(db Execer) *EventRepo { return &EventRepo{db: db, siteID: "local"} }

// WithSite returns a repo that stamps events with siteID.
func (r *EventRepo) WithSite(siteID string) *EventRepo {
	return &EventRepo{db: r.db, siteID: siteID}
}

// Tx returns a repo writing through tx.
func (r *EventRepo) Tx(tx *sql.Tx) *EventRepo {
	return &EventRepo{db: tx, siteID: r.siteID}
}

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	if e.SiteID == "" {
		e.SiteID = r.siteID
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (site_id, typ, ref, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		e.SiteID, e.Type, e.Ref, e.DataJSON, time.Now().Unix())
	return err
}

// AppendJSON marshals payload into the event data.
func (r *EventRepo) AppendJSON(ctx context.Context, typ, ref string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("syncx: encode %s: %w", typ, err)
	}
	return r.Append(ctx, Event{Type: typ, Ref: ref, DataJSON: string(b)})
}

// Since lists events with a sequence number greater than after, oldest first.
func (r *EventRepo) Since(ctx context.Context, after int64, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, site_id, typ, ref, data, created_at FROM event_log
		 WHERE seq > $1 ORDER BY seq LIMIT $2`, after, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Seq, &e.SiteID, &e.Type, &e.Ref, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
