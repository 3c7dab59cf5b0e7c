// Package report reads the workshop grades report: breadcrumb titles, the
// owning course, the group selector and the peer-grade table.
//
// Elements are located by their structural class names rather than their
// visible text, which is localized.
package report

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mind-engage/workshop-grades/internal/textnorm"
)

// allGroupsValue is the option value of the "All participants" entry.
const allGroupsValue = "0"

var courseIDRe = regexp.MustCompile(`"courseId"\s*:\s*(\d+)`)

// Document is a parsed grades report.
type Document struct {
	doc  *goquery.Document
	opts options
}

// Parse reads an HTML report.
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("report: parse html: %w", err)
	}
	return FromDocument(doc, opts...), nil
}

// FromDocument wraps an already parsed document.
func FromDocument(doc *goquery.Document, opts ...Option) *Document {
	return &Document{doc: doc, opts: newOptions(opts)}
}

func (d *Document) breadcrumb() (*goquery.Selection, error) {
	bc := d.doc.Find("ol.breadcrumb").First()
	if bc.Length() == 0 {
		return nil, notFound("breadcrumb")
	}
	return bc, nil
}

// WorkshopTitle is the text of the last breadcrumb entry.
func (d *Document) WorkshopTitle() (string, error) {
	bc, err := d.breadcrumb()
	if err != nil {
		return "", err
	}
	li := bc.Find("li").Last()
	if li.Length() == 0 {
		return "", notFound("breadcrumb entries")
	}
	return collapseSpace(li.Text()), nil
}

// CourseTitle is the title attribute of the first breadcrumb link carrying one.
func (d *Document) CourseTitle() (string, error) {
	bc, err := d.breadcrumb()
	if err != nil {
		return "", err
	}
	title, ok := bc.Find("a[title]").First().Attr("title")
	if !ok {
		return "", notFound("course link in breadcrumb")
	}
	return strings.TrimSpace(title), nil
}

// CourseID pulls "courseId" out of the first embedded script that has it.
func (d *Document) CourseID() (int, error) {
	id, found := 0, false
	var convErr error
	d.doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		content := s.Text()
		if !strings.Contains(content, "courseId") {
			return true
		}
		m := courseIDRe.FindStringSubmatch(content)
		if m == nil {
			return true
		}
		id, convErr = strconv.Atoi(m[1])
		found = true
		return false
	})
	if !found {
		return 0, notFound(`"courseId" in page scripts`)
	}
	if convErr != nil {
		return 0, fmt.Errorf("report: course id: %w", convErr)
	}
	return id, nil
}

// GroupIDs lists the groups offered by the group selector, without the
// "All participants" entry, deduplicated and sorted by normalized text.
func (d *Document) GroupIDs() ([]string, error) {
	sel := d.doc.Find(`select[name="group"]`)
	if pref := sel.Filter(".singleselect, .custom-select"); pref.Length() > 0 {
		sel = pref
	}
	sel = sel.First()
	if sel.Length() == 0 {
		return nil, notFound("group selector")
	}
	seen := map[string]struct{}{}
	ids := []string{}
	sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
		if v, _ := opt.Attr("value"); strings.TrimSpace(v) == allGroupsValue {
			return
		}
		name := collapseSpace(opt.Text())
		if name == "" {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		ids = append(ids, name)
	})
	textnorm.SortStrings(ids)
	return ids, nil
}

// Rows returns the data rows of the first table body: rows with an empty
// class attribute and rows marked "lastrow". Header, summary and bare rows
// are left out.
func (d *Document) Rows() ([]*goquery.Selection, error) {
	table := d.doc.Find("table").First()
	if table.Length() == 0 {
		return nil, notFound("<table>")
	}
	tbody := table.ChildrenFiltered("tbody").First()
	if tbody.Length() == 0 {
		return nil, notFound("<tbody> in first table")
	}
	var rows []*goquery.Selection
	tbody.ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) {
		if isDataRow(tr) {
			rows = append(rows, tr)
		}
	})
	return rows, nil
}

// isDataRow accepts rows whose class attribute is present and either empty
// or "lastrow". Rows without a class attribute are not data rows.
func isDataRow(tr *goquery.Selection) bool {
	class, ok := tr.Attr("class")
	if !ok {
		return false
	}
	switch normalizeClass(class) {
	case "", "lastrow":
		return true
	}
	return false
}

// Grades builds the peer-grade table from the report rows.
func (d *Document) Grades() (*Table, error) {
	rows, err := d.Rows()
	if err != nil {
		return nil, err
	}
	return buildTable(rows, d.opts)
}
