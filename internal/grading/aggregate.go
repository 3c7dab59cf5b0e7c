package grading

import (
	"log/slog"
	"sort"

	"github.com/mind-engage/workshop-grades/internal/report"
	"github.com/mind-engage/workshop-grades/internal/roster"
)

type Option func(*config)

type config struct {
	log *slog.Logger
}

func WithLogger(l *slog.Logger) Option { return func(c *config) { c.log = l } }

// Computed is one participant's final grade.
type Computed struct {
	Name     string          `json:"name"`
	IDNumber roster.IDNumber `json:"id_number"`
	Group    string          `json:"group"`
	// Submission is the group score for submitters and 0 otherwise. It is
	// the sentinel when a submitter's group received no peer grades.
	Submission report.Grade `json:"submission"`
	Assessment report.Grade `json:"assessment"`
	Overall    float64      `json:"overall"`
}

// GroupScore is the pooled submission score of an active group.
type GroupScore struct {
	GroupID  string       `json:"group_id"`
	Members  []string     `json:"members"`
	Score    report.Grade `json:"score"`
	PoolSize int          `json:"pool_size"`
}

// Compute combines the report's peer grades with the roster. Only groups
// listed in activeGroups take part; roster participants missing from the
// report get no row.
func Compute(grades *report.Table, activeGroups []string, r *roster.Roster, opts ...Option) *Table {
	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.log == nil {
		cfg.log = slog.Default()
	}

	active := make(map[string]struct{}, len(activeGroups))
	for _, g := range activeGroups {
		active[g] = struct{}{}
	}

	out := &Table{}
	computed := map[string]Computed{}
	for _, g := range r.Groups() {
		if _, ok := active[g.ID]; !ok {
			continue
		}
		var (
			pool    []float64
			present []report.Record
		)
		for _, name := range g.MemberNames() {
			rec, ok := grades.Get(name)
			if !ok {
				continue
			}
			present = append(present, rec)
			pool = append(pool, receivedValues(rec)...)
		}
		score := mean(pool)
		out.Groups = append(out.Groups, GroupScore{
			GroupID:  g.ID,
			Members:  g.MemberNames(),
			Score:    score,
			PoolSize: len(pool),
		})

		for _, rec := range present {
			if prev, dup := computed[rec.Name]; dup {
				cfg.log.Warn("participant in more than one active group",
					slog.String("participant", rec.Name),
					slog.String("previous_group", prev.Group),
					slog.String("group", g.ID))
			}
			sub := report.Graded(0)
			if rec.Submitted {
				sub = score
			}
			computed[rec.Name] = Computed{
				Name:       rec.Name,
				Group:      g.ID,
				Submission: sub,
				Assessment: rec.Assessment,
				Overall:    sub.OrZero() + rec.Assessment.OrZero(),
			}
		}
	}

	// display names are unique within a roster, so each row maps to one
	// participant
	for _, p := range r.Participants() {
		c, ok := computed[p.FullName()]
		if !ok {
			continue
		}
		c.IDNumber = p.IDNumber
		out.Rows = append(out.Rows, c)
	}
	return out
}

// receivedValues lists every grade a participant received, ordered by grader
// so that pooled sums do not depend on map order.
func receivedValues(rec report.Record) []float64 {
	graders := make([]string, 0, len(rec.Received))
	for g := range rec.Received {
		graders = append(graders, g)
	}
	sort.Strings(graders)
	vals := make([]float64, len(graders))
	for i, g := range graders {
		vals[i] = rec.Received[g]
	}
	return vals
}

func mean(xs []float64) report.Grade {
	if len(xs) == 0 {
		return report.NoGrade
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return report.Graded(sum / float64(len(xs)))
}
