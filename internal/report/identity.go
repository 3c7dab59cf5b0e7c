package report

import (
	"sort"

	"github.com/mind-engage/workshop-grades/internal/textnorm"
)

// identities maps report-local participant ids to display names for one
// build. It is dropped once the table has been remapped to names.
type identities struct {
	names map[int]string
}

func newIdentities() *identities {
	return &identities{names: map[int]string{}}
}

// bind records id -> name. A second, different name for the same id is a
// consistency violation.
func (t *identities) bind(id int, name string) error {
	if prev, ok := t.names[id]; ok && prev != name {
		return &ConsistencyError{Reason: "participant id bound to two names", A: prev, B: name}
	}
	t.names[id] = name
	return nil
}

func (t *identities) name(id int) (string, bool) {
	n, ok := t.names[id]
	return n, ok
}

func (t *identities) sortedIDs() []int {
	ids := make([]int, 0, len(t.names))
	for id := range t.names {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// checkUnique fails when two ids normalize to the same display name, since
// the remapped table is keyed by name.
func (t *identities) checkUnique() error {
	byKey := make(map[string]string, len(t.names))
	for _, id := range t.sortedIDs() {
		name := t.names[id]
		k := textnorm.Key(name)
		if other, dup := byKey[k]; dup {
			return &ConsistencyError{Reason: "duplicate participant name", A: other, B: name}
		}
		byKey[k] = name
	}
	return nil
}
