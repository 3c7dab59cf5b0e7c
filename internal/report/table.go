package report

import (
	"github.com/mind-engage/workshop-grades/internal/textnorm"
)

// Record is one participant's grade data as printed in the report. Peer maps
// are keyed by display name.
type Record struct {
	Name      string
	Submitted bool
	// Received maps grader -> grade given to this participant's submission.
	Received map[string]float64
	// Given maps gradee -> grade this participant gave.
	Given      map[string]float64
	Submission Grade
	Assessment Grade
}

// Table is the peer-grade table keyed by display name.
type Table struct {
	records map[string]Record
}

func (t *Table) Len() int { return len(t.records) }

// Get returns the record for a display name.
func (t *Table) Get(name string) (Record, bool) {
	r, ok := t.records[name]
	return r, ok
}

// Names lists the participants sorted by normalized name.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.records))
	for n := range t.records {
		names = append(names, n)
	}
	textnorm.SortStrings(names)
	return names
}

// NewTable assembles a table from records that already use display names,
// for callers that build grade data without a report.
func NewTable(records ...Record) (*Table, error) {
	ids := newIdentities()
	t := &Table{records: make(map[string]Record, len(records))}
	for i, r := range records {
		if _, dup := t.records[r.Name]; dup {
			return nil, &ConsistencyError{Reason: "duplicate participant name", A: r.Name, B: r.Name}
		}
		if err := ids.bind(i, r.Name); err != nil {
			return nil, err
		}
		if r.Received == nil {
			r.Received = map[string]float64{}
		}
		if r.Given == nil {
			r.Given = map[string]float64{}
		}
		t.records[r.Name] = r
	}
	if err := ids.checkUnique(); err != nil {
		return nil, err
	}
	return t, nil
}
