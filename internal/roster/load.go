package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Positional columns of the participants export. The header text is
// localized, so columns are read by position.
const (
	colFirstName = iota
	colLastName
	colIDNumber
	colEmail
	colGroups

	numColumns
)

// FileName is the conventional name of a course's participants export.
func FileName(courseID int) string {
	return fmt.Sprintf("courseid_%d_participants.csv", courseID)
}

type Option func(*loadOptions)

type loadOptions struct {
	log *slog.Logger
}

// WithLogger sets the logger that receives skipped-row diagnostics.
func WithLogger(l *slog.Logger) Option { return func(o *loadOptions) { o.log = l } }

// Load reads a participants CSV (header row first) and builds the roster.
// Rows with fewer than five columns are logged and skipped.
func Load(r io.Reader, courseID int, opts ...Option) (*Roster, error) {
	o := loadOptions{}
	for _, fn := range opts {
		fn(&o)
	}
	if o.log == nil {
		o.log = slog.Default()
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return New(courseID, nil)
		}
		return nil, fmt.Errorf("roster: read header: %w", err)
	}

	var (
		participants []Participant
		order        []string
		members      = map[string][]Participant{}
	)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("roster: line %d: %w", line, err)
		}
		if len(rec) < numColumns {
			o.log.Warn("incomplete participant row",
				slog.Int("line", line), slog.String("row", strings.Join(rec, ",")))
			continue
		}
		p := NewParticipant(
			strings.TrimSpace(rec[colFirstName]),
			strings.TrimSpace(rec[colLastName]),
			ParseIDNumber(rec[colIDNumber]),
			strings.TrimSpace(rec[colEmail]),
			ParseGroupIDs(rec[colGroups]),
		)
		participants = append(participants, p)
		for _, gid := range p.groups {
			if _, ok := members[gid]; !ok {
				order = append(order, gid)
			}
			members[gid] = append(members[gid], p)
		}
	}

	groups := make([]Group, 0, len(order))
	for _, gid := range order {
		groups = append(groups, NewGroup(gid, members[gid]...))
	}
	return NewWithGroups(courseID, participants, groups)
}
