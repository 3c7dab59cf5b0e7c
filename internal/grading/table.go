package grading

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

// Table is the final grade table in roster order.
type Table struct {
	Rows   []Computed   `json:"rows"`
	Groups []GroupScore `json:"groups"`
}

// Row looks up a participant by display name.
func (t *Table) Row(name string) (Computed, bool) {
	for _, r := range t.Rows {
		if r.Name == name {
			return r, true
		}
	}
	return Computed{}, false
}

type csvRow struct {
	IDNumber   string `csv:"ID number"`
	Name       string `csv:"Name"`
	Submission string `csv:"Submission"`
	Assessment string `csv:"Assessment"`
	Overall    string `csv:"Overall"`
}

func twoDecimals(v float64) string { return fmt.Sprintf("%.2f", v) }

// WriteCSV writes the table with two-decimal scores.
func (t *Table) WriteCSV(w io.Writer) error {
	rows := make([]csvRow, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, csvRow{
			IDNumber:   r.IDNumber.String(),
			Name:       r.Name,
			Submission: twoDecimals(r.Submission.OrZero()),
			Assessment: twoDecimals(r.Assessment.OrZero()),
			Overall:    twoDecimals(r.Overall),
		})
	}
	return gocsv.Marshal(rows, w)
}

// Print writes a fixed-width listing for terminals.
func (t *Table) Print(w io.Writer) error {
	var b strings.Builder
	b.WriteString("ID number  Name                            Submission  Assessment  Overall\n")
	b.WriteString(strings.Repeat("-", 76) + "\n")
	for _, r := range t.Rows {
		fmt.Fprintf(&b, "%-9s  %-30s%12.2f%12.2f%9.2f\n",
			r.IDNumber.String(), r.Name, r.Submission.OrZero(), r.Assessment.OrZero(), r.Overall)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
