package report

import (
	"encoding/json"
	"strconv"
	"strings"
)

// NullGrade is the literal the report prints for an absent grade.
const NullGrade = "-"

// Grade is a numeric grade or the "no grade" sentinel (Valid == false).
type Grade struct {
	Value float64
	Valid bool
}

func Graded(v float64) Grade { return Grade{Value: v, Valid: true} }

// NoGrade is the sentinel value.
var NoGrade = Grade{}

// OrZero returns the value, counting the sentinel as zero.
func (g Grade) OrZero() float64 {
	if !g.Valid {
		return 0
	}
	return g.Value
}

func (g Grade) String() string {
	if !g.Valid {
		return NullGrade
	}
	return strconv.FormatFloat(g.Value, 'f', -1, 64)
}

func (g Grade) MarshalJSON() ([]byte, error) {
	if !g.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(g.Value)
}

func (g *Grade) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*g = NoGrade
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*g = Graded(v)
	return nil
}

// ParseGrade reads a number written with either '.' or ',' as decimal
// separator: "70,4" and "70.4" both give 70.4.
func ParseGrade(text string) (float64, error) {
	s := strings.TrimSpace(text)
	v, err := strconv.ParseFloat(s, 64)
	if err == nil {
		return v, nil
	}
	v, err = strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, &ParseError{What: "grade", Text: text, Err: err}
	}
	return v, nil
}

// parseGradeCell keeps the sentinel verbatim and parses anything else.
func parseGradeCell(text string) (Grade, error) {
	s := strings.TrimSpace(text)
	if s == NullGrade {
		return NoGrade, nil
	}
	v, err := ParseGrade(s)
	if err != nil {
		return NoGrade, err
	}
	return Graded(v), nil
}
