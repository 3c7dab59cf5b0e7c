package report_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/workshop-grades/internal/report"
)

func TestParseGrade_DecimalSeparators(t *testing.T) {
	comma, err := report.ParseGrade("70,4")
	require.NoError(t, err)
	dot, err := report.ParseGrade("70.4")
	require.NoError(t, err)
	assert.Equal(t, 70.4, comma)
	assert.Equal(t, 70.4, dot)

	padded, err := report.ParseGrade("  81.3 ")
	require.NoError(t, err)
	assert.Equal(t, 81.3, padded)
}

func TestParseGrade_Invalid(t *testing.T) {
	for _, in := range []string{"", "-", "abc", "1,2,3"} {
		_, err := report.ParseGrade(in)
		var perr *report.ParseError
		assert.True(t, errors.As(err, &perr), "ParseGrade(%q) = %v", in, err)
	}
}

func TestGrade_Sentinel(t *testing.T) {
	assert.Equal(t, "-", report.NoGrade.String())
	assert.Zero(t, report.NoGrade.OrZero())
	assert.Equal(t, 42.5, report.Graded(42.5).OrZero())

	b, err := json.Marshal(struct {
		A report.Grade `json:"a"`
		B report.Grade `json:"b"`
	}{report.NoGrade, report.Graded(7)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":null,"b":7}`, string(b))
}

func TestVocabulary_Role(t *testing.T) {
	v := report.DefaultVocabulary()
	assert.Equal(t, report.CellParticipant, v.Role("participant  cell c0"))
	assert.Equal(t, report.CellReceivedGrade, v.Role("receivedgrade notnull cell c0 lastcol"))
	assert.Equal(t, report.CellGivenGrade, v.Role(" givengrade notnull cell c4 "))
	assert.Equal(t, report.CellUnknown, v.Role("receivedgrade null cell c2"))
	assert.Equal(t, report.CellUnknown, v.Role(""))
	assert.True(t, v.IsNoSubmission("No se han encontrado envíos de este usuario"))
}
