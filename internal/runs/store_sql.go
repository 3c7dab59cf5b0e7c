package runs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/workshop-grades/internal/grading"
	"github.com/mind-engage/workshop-grades/internal/report"
	"github.com/mind-engage/workshop-grades/internal/roster"
	syncx "github.com/mind-engage/workshop-grades/internal/sync"
)

type SQLStore struct {
	db     *sql.DB
	events *syncx.EventRepo
	now    func() time.Time
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, events: syncx.NewEventRepo(db), now: time.Now}
}

// Save stores r under a fresh id together with its rows and logs a
// GradesComputed event, all in one transaction.
func (s *SQLStore) Save(ctx context.Context, r Run) (Run, error) {
	r.ID = uuid.NewString()
	r.CreatedAt = s.now().Unix()

	gids, err := json.Marshal(r.GroupIDs)
	if err != nil {
		return Run{}, err
	}
	scores, err := json.Marshal(r.Groups)
	if err != nil {
		return Run{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO grade_runs
		(id,workshop_title,course_title,course_id,group_ids_json,group_scores_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		r.ID, r.WorkshopTitle, r.CourseTitle, r.CourseID, string(gids), string(scores), r.CreatedAt)
	if err != nil {
		return Run{}, fmt.Errorf("runs: insert run: %w", err)
	}
	for i, row := range r.Rows {
		_, err = tx.ExecContext(ctx, `INSERT INTO grade_rows
			(run_id,position,id_number,name,group_id,submission,assessment,overall)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			r.ID, i, nullID(row.IDNumber), row.Name, row.Group,
			nullGrade(row.Submission), nullGrade(row.Assessment), row.Overall)
		if err != nil {
			return Run{}, fmt.Errorf("runs: insert row %d: %w", i, err)
		}
	}

	payload := map[string]any{
		"course_id": r.CourseID,
		"workshop":  r.WorkshopTitle,
		"rows":      len(r.Rows),
	}
	if err := s.events.Tx(tx).AppendJSON(ctx, syncx.EventGradesComputed, r.ID, payload); err != nil {
		return Run{}, fmt.Errorf("runs: event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Run{}, err
	}
	return r, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (Run, error) {
	var (
		r            Run
		gids, scores string
	)
	err := s.db.QueryRowContext(ctx, `SELECT id,workshop_title,course_title,course_id,group_ids_json,group_scores_json,created_at
		FROM grade_runs WHERE id=$1`, id).
		Scan(&r.ID, &r.WorkshopTitle, &r.CourseTitle, &r.CourseID, &gids, &scores, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, ErrNotFound
		}
		return Run{}, err
	}
	if err := json.Unmarshal([]byte(gids), &r.GroupIDs); err != nil {
		return Run{}, err
	}
	if err := json.Unmarshal([]byte(scores), &r.Groups); err != nil {
		return Run{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id_number,name,group_id,submission,assessment,overall
		FROM grade_rows WHERE run_id=$1 ORDER BY position`, id)
	if err != nil {
		return Run{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			c        grading.Computed
			idn      sql.NullInt64
			sub, ass sql.NullFloat64
		)
		if err := rows.Scan(&idn, &c.Name, &c.Group, &sub, &ass, &c.Overall); err != nil {
			return Run{}, err
		}
		c.IDNumber = roster.IDNumber{Value: idn.Int64, Valid: idn.Valid}
		c.Submission = report.Grade{Value: sub.Float64, Valid: sub.Valid}
		c.Assessment = report.Grade{Value: ass.Float64, Valid: ass.Valid}
		r.Rows = append(r.Rows, c)
	}
	return r, rows.Err()
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Summary, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	q := `SELECT r.id, r.workshop_title, r.course_title, r.course_id, r.created_at,
		(SELECT COUNT(*) FROM grade_rows g WHERE g.run_id = r.id)
		FROM grade_runs r`
	args := []any{}
	if opts.CourseID != 0 {
		q += ` WHERE r.course_id = $1`
		args = append(args, opts.CourseID)
	}
	q += fmt.Sprintf(` ORDER BY r.created_at DESC, r.id LIMIT %d OFFSET %d`, limit, offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Summary{}
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.ID, &sm.WorkshopTitle, &sm.CourseTitle, &sm.CourseID, &sm.CreatedAt, &sm.Participants); err != nil {
			return nil, err
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	// rows first: the sqlite cascade needs foreign_keys on every connection
	if _, err := tx.ExecContext(ctx, `DELETE FROM grade_rows WHERE run_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM grade_runs WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if err := s.events.Tx(tx).AppendJSON(ctx, syncx.EventRunDeleted, id, struct{}{}); err != nil {
		return err
	}
	return tx.Commit()
}

func nullID(n roster.IDNumber) sql.NullInt64 {
	return sql.NullInt64{Int64: n.Value, Valid: n.Valid}
}

func nullGrade(g report.Grade) sql.NullFloat64 {
	return sql.NullFloat64{Float64: g.Value, Valid: g.Valid}
}
