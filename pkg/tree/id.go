package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind distinguishes integer identifiers from string identifiers.
type Kind uint8

const (
	// KindNone marks the zero ID, which is never a valid record identifier.
	KindNone Kind = iota
	// KindInt marks an integer identifier.
	KindInt
	// KindString marks a string identifier.
	KindString
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindString:
		return "string"
	default:
		return "none"
	}
}

// ID is a record identifier holding either an integer or a string.
//
// IDs are comparable with == and usable as map keys. Equality requires the
// same kind and the same value, so IntID(5) != StringID("5").
type ID struct {
	kind Kind
	num  int64
	str  string
}

// IntID returns an integer identifier.
func IntID(v int64) ID { return ID{kind: KindInt, num: v} }

// StringID returns a string identifier.
func StringID(s string) ID { return ID{kind: KindString, str: s} }

// Kind returns the identifier kind.
func (id ID) Kind() Kind { return id.kind }

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool { return id.kind == KindNone }

// Int returns the integer value and whether id is an integer.
func (id ID) Int() (int64, bool) { return id.num, id.kind == KindInt }

// Str returns the string value and whether id is a string.
func (id ID) Str() (string, bool) { return id.str, id.kind == KindString }

// String formats the identifier value without kind information.
func (id ID) String() string {
	switch id.kind {
	case KindInt:
		return strconv.FormatInt(id.num, 10)
	case KindString:
		return id.str
	default:
		return ""
	}
}

// GoString formats the identifier so that kinds stay distinguishable.
func (id ID) GoString() string {
	switch id.kind {
	case KindInt:
		return "tree.IntID(" + strconv.FormatInt(id.num, 10) + ")"
	case KindString:
		return "tree.StringID(" + strconv.Quote(id.str) + ")"
	default:
		return "tree.ID{}"
	}
}

// Ptr returns a pointer to a copy of id, convenient for [Record.ParentID].
func (id ID) Ptr() *ID { return &id }

// MarshalJSON encodes integers as JSON numbers and strings as JSON strings.
func (id ID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case KindInt:
		return []byte(strconv.FormatInt(id.num, 10)), nil
	case KindString:
		return json.Marshal(id.str)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a JSON number or string. Numbers must be integral.
func (id *ID) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	if v == nil {
		*id = ID{}
		return nil
	}
	parsed, err := ParseID(v)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseID converts a dynamically typed value into an ID.
//
// Accepted inputs are Go integer types, integral floats (as produced by
// encoding/json), json.Number, strings, byte slices and ID itself. Strings
// are never parsed as numbers: "5" stays a string identifier.
func ParseID(v any) (ID, error) {
	switch x := v.(type) {
	case ID:
		if x.IsZero() {
			return ID{}, fmt.Errorf("zero identifier")
		}
		return x, nil
	case *ID:
		if x == nil || x.IsZero() {
			return ID{}, fmt.Errorf("zero identifier")
		}
		return *x, nil
	case string:
		return StringID(x), nil
	case []byte:
		return StringID(string(x)), nil
	case int:
		return IntID(int64(x)), nil
	case int8:
		return IntID(int64(x)), nil
	case int16:
		return IntID(int64(x)), nil
	case int32:
		return IntID(int64(x)), nil
	case int64:
		return IntID(x), nil
	case uint:
		return uintID(uint64(x))
	case uint8:
		return IntID(int64(x)), nil
	case uint16:
		return IntID(int64(x)), nil
	case uint32:
		return IntID(int64(x)), nil
	case uint64:
		return uintID(x)
	case float32:
		return floatID(float64(x))
	case float64:
		return floatID(x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return IntID(n), nil
		}
		f, err := x.Float64()
		if err != nil {
			return ID{}, fmt.Errorf("invalid number %q", x.String())
		}
		return floatID(f)
	case nil:
		return ID{}, fmt.Errorf("identifier is null")
	default:
		return ID{}, fmt.Errorf("unsupported identifier type %T", v)
	}
}

func uintID(v uint64) (ID, error) {
	if v > math.MaxInt64 {
		return ID{}, fmt.Errorf("identifier %d overflows int64", v)
	}
	return IntID(int64(v)), nil
}

func floatID(f float64) (ID, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return ID{}, fmt.Errorf("identifier %v is not an integer", f)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return ID{}, fmt.Errorf("identifier %v overflows int64", f)
	}
	return IntID(int64(f)), nil
}

// sameParent reports whether two optional parent references are strictly equal.
func sameParent(a, b *ID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
