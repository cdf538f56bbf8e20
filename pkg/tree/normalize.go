package tree

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	errs "github.com/matzehuels/selecttree/pkg/errors"
)

// Keys looked up in raw map records.
const (
	KeyID       = "id"
	KeyName     = "name"
	KeyParentID = "parent_id"

	// KeyParentIDAlt is accepted when KeyParentID is absent.
	KeyParentIDAlt = "parentId"
)

// Record is the canonical form every input item is reduced to.
// A nil ParentID marks a root.
type Record struct {
	ID       ID
	Name     string
	ParentID *ID
}

// Item is a pre-built input item for callers that already hold typed values.
type Item struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	ParentID *ID    `json:"parent_id,omitempty"`
}

// NewItem creates an item. A nil parent makes it a root.
func NewItem(id ID, name string, parent *ID) Item {
	return Item{ID: id, Name: name, ParentID: parent}
}

// Inputs converts a typed slice into the []any accepted by [Normalize] and [Tree.Process].
func Inputs[T any](items []T) []any {
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

// NameTransform rewrites a display name.
// It is the single hook type used both for name normalization (for example a
// translation lookup) and for the final name formatter.
type NameTransform interface {
	Transform(name string) string
}

// TransformFunc adapts a plain function to [NameTransform].
type TransformFunc func(name string) string

// Transform calls f(name).
func (f TransformFunc) Transform(name string) string { return f(name) }

// Chain applies transforms left to right, skipping nil entries.
func Chain(ts ...NameTransform) NameTransform {
	return TransformFunc(func(name string) string {
		for _, t := range ts {
			if t != nil {
				name = t.Transform(name)
			}
		}
		return name
	})
}

// NormalizeOptions holds the optional name hooks applied by [Normalize].
type NormalizeOptions struct {
	// Normalizer runs first, e.g. a marker-triggered translation lookup.
	Normalizer NameTransform
	// Formatter runs last.
	Formatter NameTransform
}

// Normalize converts input items into canonical records, preserving order.
//
// Each item may be an [Item], [Record] (or pointers to them), or a raw
// map[string]any row with the keys "id", "name" and "parent_id" (or
// "parentId"). All three keys must be present in raw rows; the parent value
// may be nil. Non-string names in raw rows are converted to strings.
//
// A missing key or an unusable identifier fails the whole call with an
// INVALID_INPUT error naming the item's position.
func Normalize(items []any, opts NormalizeOptions) ([]Record, error) {
	records := make([]Record, 0, len(items))
	for i, item := range items {
		rec, err := toRecord(item)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "item %d", i)
		}
		if opts.Normalizer != nil {
			rec.Name = opts.Normalizer.Transform(rec.Name)
		}
		if opts.Formatter != nil {
			rec.Name = opts.Formatter.Transform(rec.Name)
		}
		records = append(records, rec)
	}
	return records, nil
}

func toRecord(item any) (Record, error) {
	switch v := item.(type) {
	case Item:
		return typedRecord(v.ID, v.Name, v.ParentID)
	case *Item:
		if v == nil {
			return Record{}, fmt.Errorf("nil item")
		}
		return typedRecord(v.ID, v.Name, v.ParentID)
	case Record:
		return typedRecord(v.ID, v.Name, v.ParentID)
	case *Record:
		if v == nil {
			return Record{}, fmt.Errorf("nil record")
		}
		return typedRecord(v.ID, v.Name, v.ParentID)
	case map[string]any:
		return rawRecord(v)
	case nil:
		return Record{}, fmt.Errorf("nil item")
	default:
		return Record{}, fmt.Errorf("unsupported item type %T", item)
	}
}

func typedRecord(id ID, name string, parent *ID) (Record, error) {
	if id.IsZero() {
		return Record{}, fmt.Errorf("missing %q", KeyID)
	}
	if parent != nil && parent.IsZero() {
		parent = nil
	}
	return Record{ID: id, Name: name, ParentID: parent}, nil
}

func rawRecord(row map[string]any) (Record, error) {
	rawID, ok := row[KeyID]
	if !ok || rawID == nil {
		return Record{}, fmt.Errorf("missing %q", KeyID)
	}
	rawName, ok := row[KeyName]
	if !ok || rawName == nil {
		return Record{}, fmt.Errorf("missing %q", KeyName)
	}
	rawParent, ok := row[KeyParentID]
	if !ok {
		if rawParent, ok = row[KeyParentIDAlt]; !ok {
			return Record{}, fmt.Errorf("missing %q", KeyParentID)
		}
	}

	id, err := ParseID(rawID)
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w", KeyID, err)
	}
	rec := Record{ID: id, Name: nameString(rawName)}
	if rawParent != nil {
		parent, err := ParseID(rawParent)
		if err != nil {
			return Record{}, fmt.Errorf("%s: %w", KeyParentID, err)
		}
		rec.ParentID = &parent
	}
	return rec, nil
}

// nameString converts a raw name value to its display string.
func nameString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case json.Number:
		return x.String()
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
