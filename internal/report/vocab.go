package report

import "strings"

// CellRole is what a data cell holds, decided from its class attribute.
type CellRole int

const (
	CellUnknown CellRole = iota
	CellParticipant
	CellSubmission
	CellReceivedGrade
	CellGivenGrade
	CellSubmissionGrade
	CellAssessmentGrade
)

func (r CellRole) String() string {
	switch r {
	case CellParticipant:
		return "participant"
	case CellSubmission:
		return "submission"
	case CellReceivedGrade:
		return "received_grade"
	case CellGivenGrade:
		return "given_grade"
	case CellSubmissionGrade:
		return "submission_grade"
	case CellAssessmentGrade:
		return "assessment_grade"
	}
	return "unknown"
}

// Vocabulary maps each cell role to the class strings the report layout uses
// for it. A role has several variants because the column index is part of
// the class and shifts between layouts.
type Vocabulary struct {
	Cells map[CellRole][]string
	// NoSubmission holds the localized "no submission" messages. They only
	// feed diagnostics; presence detection relies on the submission link.
	NoSubmission []string
}

// DefaultVocabulary describes the workshop grades report layout.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Cells: map[CellRole][]string{
			CellParticipant: {
				"participant cell c0",
			},
			CellSubmission: {
				"submission cell c1",
			},
			CellReceivedGrade: {
				"receivedgrade notnull cell c0",
				"receivedgrade notnull cell c2",
				"receivedgrade notnull cell c0 lastcol",
			},
			CellGivenGrade: {
				"givengrade notnull cell c0 lastcol",
				"givengrade notnull cell c1 lastcol",
				"givengrade notnull cell c4",
			},
			CellSubmissionGrade: {
				"submissiongrade cell c3",
			},
			CellAssessmentGrade: {
				"gradinggrade cell c5 lastcol",
			},
		},
		NoSubmission: []string{
			"No submission found for this user",
			"No se han encontrado envíos de este usuario",
			"Non se atoparon entregas deste usuario",
		},
	}
}

// Role returns the role of a cell given its raw class attribute.
func (v Vocabulary) Role(class string) CellRole {
	c := normalizeClass(class)
	if c == "" {
		return CellUnknown
	}
	for role, variants := range v.Cells {
		for _, variant := range variants {
			if normalizeClass(variant) == c {
				return role
			}
		}
	}
	return CellUnknown
}

// IsNoSubmission reports whether text is one of the "no submission" messages.
func (v Vocabulary) IsNoSubmission(text string) bool {
	t := collapseSpace(text)
	for _, m := range v.NoSubmission {
		if strings.EqualFold(t, m) {
			return true
		}
	}
	return false
}

func normalizeClass(class string) string {
	return strings.Join(strings.Fields(class), " ")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
