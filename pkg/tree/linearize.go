package tree

import (
	errs "github.com/matzehuels/selecttree/pkg/errors"
)

// DefaultMaxDepth is the depth bound used when none is configured.
const DefaultMaxDepth = 32

// Entry is one linearized record: its display name and zero-based level.
// ParentID is the id the entry was placed under, nil at level 0.
type Entry struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Level    int    `json:"level"`
	ParentID *ID    `json:"parent_id,omitempty"`
}

// Linearization is the full outcome of [LinearizeResult].
type Linearization struct {
	// Entries are in depth-first pre-order.
	Entries []Entry
	// Truncated is set when at least one record was dropped because it sat
	// below the depth bound.
	Truncated bool
}

// Linearize orders records depth-first starting from the roots and assigns
// each emitted record its level. See [LinearizeResult].
func Linearize(records []Record, maxDepth int) ([]Entry, error) {
	res, err := LinearizeResult(records, maxDepth)
	if err != nil {
		return nil, err
	}
	return res.Entries, nil
}

// LinearizeResult walks records depth-first from every root (records with a
// nil parent), in input order, and returns the visited records in pre-order.
//
// The rules are:
//   - a record is a child of the node whose id strictly equals its ParentID
//   - the first record with a given id is emitted, later ones never are
//   - levels run from 0 to maxDepth inclusive; deeper records are dropped
//     silently and reported through [Linearization.Truncated]
//   - records never reached from a root are omitted
//
// maxDepth below 1 is treated as 1. A maxDepth above the allowed ceiling or a
// record with a zero id fails with INVALID_INPUT.
func LinearizeResult(records []Record, maxDepth int) (Linearization, error) {
	if err := errs.ValidateMaxDepth(maxDepth); err != nil {
		return Linearization{}, err
	}
	maxDepth = max(maxDepth, errs.MinMaxDepth)

	for i, r := range records {
		if r.ID.IsZero() {
			return Linearization{}, errs.New(errs.ErrCodeInvalidInput,
				"record %d must contain keys %q, %q and %q", i, KeyID, KeyParentID, KeyName)
		}
	}

	remaining := make([]int, len(records))
	for i := range records {
		remaining[i] = i
	}

	l := &linearizer{
		records:  records,
		maxDepth: maxDepth,
		placed:   make(map[ID]struct{}, len(records)),
		expanded: make(map[expansion]struct{}),
	}
	entries := l.visit(remaining, 0, nil, nil)
	return Linearization{Entries: entries, Truncated: l.truncated}, nil
}

// expansion identifies one visit call by the parent it matched and its level.
type expansion struct {
	parent ID
	root   bool
	level  int
}

// linearizer holds the traversal state of a single LinearizeResult call.
type linearizer struct {
	records  []Record
	maxDepth int

	// placed holds every id already emitted. It is never reset mid-traversal.
	placed map[ID]struct{}

	// expanded records visit calls already made. Records leave a remaining
	// set only once placed, so every child a repeated (parent, level) visit
	// could emit was seen and placed by the first one, which also made each
	// (child, level+1) call. Repeats are skipped, which keeps the walk at
	// O(maxDepth × N²) even when duplicate ids point back at themselves.
	expanded  map[expansion]struct{}
	truncated bool
}

// visit emits the records under parent at the given level, each followed by
// its own subtree. remaining holds indexes into l.records; every call works
// on its own copy, so removals made in a subtree do not leak back to callers.
func (l *linearizer) visit(remaining []int, level int, parent *ID, out []Entry) []Entry {
	if len(remaining) == 0 {
		return out
	}
	if level > l.maxDepth {
		if l.hasUnplacedChild(remaining, parent) {
			l.truncated = true
		}
		return out
	}

	key := expansion{root: parent == nil, level: level}
	if parent != nil {
		key.parent = *parent
	}
	if _, seen := l.expanded[key]; seen {
		return out
	}
	l.expanded[key] = struct{}{}

	working := append([]int(nil), remaining...)
	for _, idx := range remaining {
		r := l.records[idx]
		if !sameParent(r.ParentID, parent) {
			continue
		}
		if _, dup := l.placed[r.ID]; !dup {
			out = append(out, Entry{ID: r.ID, Name: r.Name, Level: level, ParentID: parent})
			l.placed[r.ID] = struct{}{}
			working = without(working, idx)
		}
		id := r.ID
		out = l.visit(working, level+1, &id, out)
	}
	return out
}

func (l *linearizer) hasUnplacedChild(remaining []int, parent *ID) bool {
	for _, idx := range remaining {
		r := l.records[idx]
		if !sameParent(r.ParentID, parent) {
			continue
		}
		if _, dup := l.placed[r.ID]; !dup {
			return true
		}
	}
	return false
}

// without returns s minus the first occurrence of idx, reusing s's storage.
func without(s []int, idx int) []int {
	for i, v := range s {
		if v == idx {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
