package report

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// rawRecord is a participant keyed by report-local ids, before remapping.
type rawRecord struct {
	id         int
	submitted  bool
	received   map[int]float64
	given      map[int]float64
	submission Grade
	assessment Grade
}

// BuildTable walks the data rows returned by Document.Rows.
func BuildTable(rows []*goquery.Selection, opts ...Option) (*Table, error) {
	return buildTable(rows, newOptions(opts))
}

type tableBuilder struct {
	opts    options
	ids     *identities
	records map[int]*rawRecord
	current *rawRecord
}

func buildTable(rows []*goquery.Selection, o options) (*Table, error) {
	b := &tableBuilder{
		opts:    o,
		ids:     newIdentities(),
		records: map[int]*rawRecord{},
	}
	for i, row := range rows {
		if err := b.row(i, row); err != nil {
			return nil, err
		}
	}
	if err := b.checkSymmetry(); err != nil {
		return nil, err
	}
	if err := b.ids.checkUnique(); err != nil {
		return nil, err
	}
	return b.remap(), nil
}

// row handles the cells of one <tr>. The participant context set by an
// identity cell carries over to following rows, since the report spans
// a participant over several rows.
func (b *tableBuilder) row(idx int, row *goquery.Selection) error {
	log := b.opts.log
	var fatal error
	row.ChildrenFiltered("td").EachWithBreak(func(_ int, td *goquery.Selection) bool {
		class, _ := td.Attr("class")
		role := b.opts.vocab.Role(class)
		if role == CellUnknown {
			return true
		}
		if role == CellParticipant {
			rec, err := b.participant(td)
			if err != nil {
				var perr *ParseError
				if errors.As(err, &perr) {
					log.Warn("skipping participant cell", slog.Int("row", idx), slog.String("err", err.Error()))
					b.current = nil
					return true
				}
				fatal = err
				return false
			}
			b.current = rec
			return true
		}
		if b.current == nil {
			log.Debug("cell without participant", slog.Int("row", idx), slog.String("cell", role.String()))
			return true
		}
		switch role {
		case CellSubmission:
			if td.Find("a.title").Length() > 0 {
				b.current.submitted = true
			} else if b.opts.vocab.IsNoSubmission(td.Text()) {
				log.Debug("no submission", slog.Int("participant_id", b.current.id))
			}
		case CellReceivedGrade:
			peer, grade, err := peerCell(td)
			if err != nil {
				log.Warn("skipping received grade", slog.Int("row", idx), slog.Int("participant_id", b.current.id), slog.String("err", err.Error()))
				return true
			}
			b.current.received[peer] = grade
		case CellGivenGrade:
			peer, grade, err := peerCell(td)
			if err != nil {
				log.Warn("skipping given grade", slog.Int("row", idx), slog.Int("participant_id", b.current.id), slog.String("err", err.Error()))
				return true
			}
			b.current.given[peer] = grade
		case CellSubmissionGrade, CellAssessmentGrade:
			g, err := parseGradeCell(td.Text())
			if err != nil {
				log.Warn("skipping "+role.String(), slog.Int("row", idx), slog.Int("participant_id", b.current.id), slog.String("err", err.Error()))
				return true
			}
			if role == CellSubmissionGrade {
				b.current.submission = g
			} else {
				b.current.assessment = g
			}
		}
		return true
	})
	return fatal
}

func (b *tableBuilder) participant(td *goquery.Selection) (*rawRecord, error) {
	id, err := linkID(td)
	if err != nil {
		return nil, err
	}
	name := collapseSpace(td.Find("span").Last().Text())
	if name == "" {
		name = collapseSpace(td.Text())
	}
	if name == "" {
		return nil, &ParseError{What: "participant name", Text: td.Text()}
	}
	if err := b.ids.bind(id, name); err != nil {
		return nil, err
	}
	rec, ok := b.records[id]
	if !ok {
		rec = &rawRecord{
			id:       id,
			received: map[int]float64{},
			given:    map[int]float64{},
		}
		b.records[id] = rec
	}
	return rec, nil
}

// peerCell reads the counterpart id and the grade of a received/given cell.
func peerCell(td *goquery.Selection) (int, float64, error) {
	id, err := linkID(td)
	if err != nil {
		return 0, 0, err
	}
	gradeTag := td.Find(".grade").First()
	if gradeTag.Length() == 0 {
		return 0, 0, &ParseError{What: "grade", Text: td.Text()}
	}
	g, err := ParseGrade(gradeTag.Text())
	if err != nil {
		return 0, 0, err
	}
	return id, g, nil
}

// linkID returns the "id" query parameter of the first link in the cell
// that carries one.
func linkID(td *goquery.Selection) (int, error) {
	var (
		id  int
		err error = &ParseError{What: "participant link", Text: strings.TrimSpace(td.Text())}
	)
	td.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		u, perr := url.Parse(href)
		if perr != nil {
			return true
		}
		raw := u.Query().Get("id")
		if raw == "" {
			return true
		}
		n, cerr := strconv.Atoi(raw)
		if cerr != nil {
			err = &ParseError{What: "participant id", Text: raw, Err: cerr}
			return false
		}
		id, err = n, nil
		return false
	})
	return id, err
}

// checkSymmetry verifies received[A][B] == given[B][A] in both directions
// for every pair that has a row, in id order so the reported pair is
// deterministic. Given grades to ids without a row are left to remap.
func (b *tableBuilder) checkSymmetry() error {
	ids := make([]int, 0, len(b.records))
	for id := range b.records {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	if err := b.checkReceived(ids); err != nil {
		return err
	}
	return b.checkGiven(ids)
}

func (b *tableBuilder) checkReceived(gradees []int) error {
	for _, gradee := range gradees {
		rec := b.records[gradee]
		graders := make([]int, 0, len(rec.received))
		for g := range rec.received {
			graders = append(graders, g)
		}
		sort.Ints(graders)
		for _, grader := range graders {
			got := rec.received[grader]
			gr, ok := b.records[grader]
			if !ok {
				return &ConsistencyError{
					Reason: fmt.Sprintf("grader %d has no row in the report", grader),
					A:      b.label(gradee),
				}
			}
			given, ok := gr.given[gradee]
			if !ok || given != got {
				return &ConsistencyError{
					Reason: fmt.Sprintf("received grade %v does not match given grade", got),
					A:      b.label(gradee),
					B:      b.label(grader),
				}
			}
		}
	}
	return nil
}

func (b *tableBuilder) checkGiven(graders []int) error {
	for _, grader := range graders {
		rec := b.records[grader]
		peers := make([]int, 0, len(rec.given))
		for p := range rec.given {
			peers = append(peers, p)
		}
		sort.Ints(peers)
		for _, peer := range peers {
			gradee, ok := b.records[peer]
			if !ok {
				continue
			}
			if _, ok := gradee.received[grader]; !ok {
				return &ConsistencyError{
					Reason: fmt.Sprintf("given grade %v has no matching received grade", rec.given[peer]),
					A:      b.label(peer),
					B:      b.label(grader),
				}
			}
		}
	}
	return nil
}

func (b *tableBuilder) label(id int) string {
	if n, ok := b.ids.name(id); ok {
		return fmt.Sprintf("%s (%d)", n, id)
	}
	return strconv.Itoa(id)
}

func (b *tableBuilder) remap() *Table {
	t := &Table{records: make(map[string]Record, len(b.records))}
	for id, raw := range b.records {
		name, _ := b.ids.name(id)
		rec := Record{
			Name:       name,
			Submitted:  raw.submitted,
			Received:   make(map[string]float64, len(raw.received)),
			Given:      make(map[string]float64, len(raw.given)),
			Submission: raw.submission,
			Assessment: raw.assessment,
		}
		for peer, g := range raw.received {
			if n, ok := b.ids.name(peer); ok {
				rec.Received[n] = g
			}
		}
		for peer, g := range raw.given {
			n, ok := b.ids.name(peer)
			if !ok {
				b.opts.log.Warn("dropping given grade to participant without a row",
					slog.String("participant", name), slog.Int("peer_id", peer))
				continue
			}
			rec.Given[n] = g
		}
		t.records[name] = rec
	}
	return t
}
