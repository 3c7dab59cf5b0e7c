// Package roster models the enrolled participants of a course and their
// group memberships, as exported from the participants page.
package roster

import (
	"strconv"
	"strings"

	"github.com/mind-engage/workshop-grades/internal/textnorm"
)

// IDNumber is the participant's institutional number. Rosters may leave it
// blank, in which case Valid is false.
type IDNumber struct {
	Value int64
	Valid bool
}

// ParseIDNumber is lenient: blank or non-numeric input gives a null number.
func ParseIDNumber(s string) IDNumber {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return IDNumber{}
	}
	return IDNumber{Value: v, Valid: true}
}

func (n IDNumber) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatInt(n.Value, 10)
}

// compare orders null numbers first.
func (n IDNumber) compare(o IDNumber) int {
	switch {
	case !n.Valid && !o.Valid:
		return 0
	case !n.Valid:
		return -1
	case !o.Valid:
		return 1
	case n.Value < o.Value:
		return -1
	case n.Value > o.Value:
		return 1
	}
	return 0
}

// GroupIDs is a canonical group-identifier set: trimmed, non-empty,
// deduplicated, sorted by normalized text.
type GroupIDs []string

// ParseGroupIDs splits a comma-separated groups field into canonical form.
func ParseGroupIDs(field string) GroupIDs {
	return CanonicalGroupIDs(strings.Split(field, ",")...)
}

// CanonicalGroupIDs canonicalizes individual tokens.
func CanonicalGroupIDs(tokens ...string) GroupIDs {
	seen := make(map[string]struct{}, len(tokens))
	out := GroupIDs{}
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	textnorm.SortStrings(out)
	return out
}

// Contains is case-sensitive.
func (g GroupIDs) Contains(id string) bool {
	for _, x := range g {
		if x == id {
			return true
		}
	}
	return false
}

// Participant is an enrolled user. Values are immutable once built.
type Participant struct {
	FirstName string
	LastName  string
	IDNumber  IDNumber
	Email     string
	groups    GroupIDs
}

// NewParticipant builds a participant; groups must already be canonical
// (see ParseGroupIDs).
func NewParticipant(first, last string, id IDNumber, email string, groups GroupIDs) Participant {
	return Participant{
		FirstName: first,
		LastName:  last,
		IDNumber:  id,
		Email:     email,
		groups:    append(GroupIDs(nil), groups...),
	}
}

// FullName is "First Last", the name the grades report prints.
func (p Participant) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Groups returns a copy of the participant's group ids.
func (p Participant) Groups() GroupIDs {
	return append(GroupIDs(nil), p.groups...)
}

func (p Participant) InGroup(id string) bool { return p.groups.Contains(id) }

// Compare orders by normalized last name, normalized first name, then
// id number.
func (p Participant) Compare(o Participant) int {
	if c := compareKey(p.LastName, o.LastName); c != 0 {
		return c
	}
	if c := compareKey(p.FirstName, o.FirstName); c != 0 {
		return c
	}
	return p.IDNumber.compare(o.IDNumber)
}

func compareKey(a, b string) int {
	return strings.Compare(textnorm.Key(a), textnorm.Key(b))
}

func (n IDNumber) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(n.Value, 10)), nil
}

func (n *IDNumber) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*n = IDNumber{}
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*n = IDNumber{Value: v, Valid: true}
	return nil
}
