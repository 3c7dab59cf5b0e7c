package roster

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mind-engage/workshop-grades/internal/textnorm"
)

// ErrMembership marks a roster whose groups and participants disagree.
var ErrMembership = errors.New("roster: inconsistent group membership")

// MembershipError names the group and participant at fault.
type MembershipError struct {
	GroupID     string
	Participant string
	Reason      string
}

func (e *MembershipError) Error() string {
	return fmt.Sprintf("roster: group %q: %s: %s", e.GroupID, e.Participant, e.Reason)
}

func (e *MembershipError) Unwrap() error { return ErrMembership }

// ErrDuplicateName marks a roster in which two participants share a
// display name, which makes the join with the grades report ambiguous.
var ErrDuplicateName = errors.New("roster: ambiguous display name")

// DuplicateNameError names both participants whose display names collide
// after normalization.
type DuplicateNameError struct {
	A, B Participant
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("roster: %q (id number %q) and %q (id number %q) share a display name",
		e.A.FullName(), e.A.IDNumber.String(), e.B.FullName(), e.B.IDNumber.String())
}

func (e *DuplicateNameError) Unwrap() error { return ErrDuplicateName }

// Group is a named set of participants, ordered like the roster.
type Group struct {
	ID      string
	members []Participant
}

func (g Group) Members() []Participant {
	return append([]Participant(nil), g.members...)
}

// MemberNames lists the display names of the members in roster order.
func (g Group) MemberNames() []string {
	names := make([]string, len(g.members))
	for i, m := range g.members {
		names[i] = m.FullName()
	}
	return names
}

// Roster is the participant list of one course.
type Roster struct {
	CourseID     int
	participants []Participant
	groups       []Group
}

// New builds a roster whose groups are derived from each participant's
// group ids.
func New(courseID int, participants []Participant) (*Roster, error) {
	members := map[string][]Participant{}
	for _, p := range participants {
		for _, gid := range p.groups {
			members[gid] = append(members[gid], p)
		}
	}
	groups := make([]Group, 0, len(members))
	for gid, ms := range members {
		groups = append(groups, Group{ID: gid, members: ms})
	}
	return NewWithGroups(courseID, participants, groups)
}

// NewWithGroups builds a roster from explicit groups and verifies that a
// participant is in group G exactly when G is among its group ids.
func NewWithGroups(courseID int, participants []Participant, groups []Group) (*Roster, error) {
	ps := append([]Participant(nil), participants...)
	sortParticipants(ps)
	if err := checkUniqueNames(ps); err != nil {
		return nil, err
	}

	gs := make([]Group, 0, len(groups))
	seen := map[string]struct{}{}
	for _, g := range groups {
		if strings.Contains(g.ID, ",") {
			return nil, &MembershipError{GroupID: g.ID, Reason: "group id contains a comma"}
		}
		if _, dup := seen[g.ID]; dup {
			return nil, &MembershipError{GroupID: g.ID, Reason: "group listed twice"}
		}
		seen[g.ID] = struct{}{}
		ms := append([]Participant(nil), g.members...)
		sortParticipants(ms)
		gs = append(gs, Group{ID: g.ID, members: ms})
	}
	sort.SliceStable(gs, func(i, j int) bool { return textnorm.Less(gs[i].ID, gs[j].ID) })

	r := &Roster{CourseID: courseID, participants: ps, groups: gs}
	if err := r.verify(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewGroup is used with NewWithGroups.
func NewGroup(id string, members ...Participant) Group {
	return Group{ID: id, members: members}
}

func (r *Roster) verify() error {
	known := map[string]struct{}{}
	for _, g := range r.groups {
		known[g.ID] = struct{}{}
		inGroup := map[string]struct{}{}
		for _, m := range g.members {
			if !m.InGroup(g.ID) {
				return &MembershipError{GroupID: g.ID, Participant: m.FullName(), Reason: "member does not list the group"}
			}
			inGroup[memberKey(m)] = struct{}{}
		}
		for _, p := range r.participants {
			if !p.InGroup(g.ID) {
				continue
			}
			if _, ok := inGroup[memberKey(p)]; !ok {
				return &MembershipError{GroupID: g.ID, Participant: p.FullName(), Reason: "participant lists the group but is not a member"}
			}
		}
	}
	for _, p := range r.participants {
		for _, gid := range p.groups {
			if _, ok := known[gid]; !ok {
				return &MembershipError{GroupID: gid, Participant: p.FullName(), Reason: "group does not exist"}
			}
		}
	}
	return nil
}

// checkUniqueNames rejects participants whose normalized display names
// collide; ps must be in canonical order so the reported pair is stable.
func checkUniqueNames(ps []Participant) error {
	seen := make(map[string]Participant, len(ps))
	for _, p := range ps {
		key := textnorm.Key(p.FullName())
		if prev, dup := seen[key]; dup {
			return &DuplicateNameError{A: prev, B: p}
		}
		seen[key] = p
	}
	return nil
}

func memberKey(p Participant) string {
	return p.FullName() + "\x00" + p.IDNumber.String() + "\x00" + p.Email
}

func sortParticipants(ps []Participant) {
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].Compare(ps[j]) < 0 })
}

// Participants in canonical order.
func (r *Roster) Participants() []Participant {
	return append([]Participant(nil), r.participants...)
}

// Groups sorted by normalized id.
func (r *Roster) Groups() []Group {
	return append([]Group(nil), r.groups...)
}

// Group looks up a group by id.
func (r *Roster) Group(id string) (Group, bool) {
	for _, g := range r.groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}
