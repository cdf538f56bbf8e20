package tree

import (
	"encoding/json"
	"strings"
	"testing"

	errs "github.com/matzehuels/selecttree/pkg/errors"
)

func TestNormalize_RawRows(t *testing.T) {
	items := []any{
		map[string]any{"id": 1, "name": "Phone", "parent_id": nil},
		map[string]any{"id": float64(2), "name": "iPhone", "parent_id": float64(1)},
		map[string]any{"id": "x", "name": 42, "parentId": "y"},
	}
	records, err := Normalize(items, NormalizeOptions{})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}

	if records[0].ID != IntID(1) || records[0].ParentID != nil {
		t.Errorf("records[0] = %+v, want id 1 root", records[0])
	}
	if records[1].ID != IntID(2) || records[1].ParentID == nil || *records[1].ParentID != IntID(1) {
		t.Errorf("records[1] = %+v, want id 2 under 1", records[1])
	}
	if records[2].ID != StringID("x") || records[2].Name != "42" {
		t.Errorf("records[2] = %+v, want id \"x\" named \"42\"", records[2])
	}
	if records[2].ParentID == nil || *records[2].ParentID != StringID("y") {
		t.Errorf("records[2].ParentID = %v, want \"y\"", records[2].ParentID)
	}
}

func TestNormalize_TypedItems(t *testing.T) {
	root := NewItem(IntID(1), "Root", nil)
	child := NewItem(StringID("c"), "Child", IntID(1).Ptr())
	items := []any{root, &child, Record{ID: IntID(3), Name: "Rec"}}

	records, err := Normalize(items, NormalizeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	got := []string{records[0].Name, records[1].Name, records[2].Name}
	if strings.Join(got, ",") != "Root,Child,Rec" {
		t.Errorf("names = %v, want [Root Child Rec]", got)
	}
}

func TestNormalize_HookOrder(t *testing.T) {
	var calls []string
	normalizer := TransformFunc(func(s string) string {
		calls = append(calls, "normalize")
		return strings.ToUpper(s)
	})
	formatter := TransformFunc(func(s string) string {
		calls = append(calls, "format")
		return "x-" + s
	})

	records, err := Normalize([]any{NewItem(IntID(1), "phone", nil)}, NormalizeOptions{
		Normalizer: normalizer,
		Formatter:  formatter,
	})
	if err != nil {
		t.Fatal(err)
	}
	if records[0].Name != "x-PHONE" {
		t.Errorf("Name = %q, want %q", records[0].Name, "x-PHONE")
	}
	if strings.Join(calls, ",") != "normalize,format" {
		t.Errorf("calls = %v, want [normalize format]", calls)
	}
}

func TestNormalize_MissingKeys(t *testing.T) {
	tests := []struct {
		name string
		row  map[string]any
		key  string
	}{
		{"missing id", map[string]any{"name": "a", "parent_id": nil}, "id"},
		{"null id", map[string]any{"id": nil, "name": "a", "parent_id": nil}, "id"},
		{"missing name", map[string]any{"id": 1, "parent_id": nil}, "name"},
		{"missing parent", map[string]any{"id": 1, "name": "a"}, "parent_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := []any{map[string]any{"id": 0, "name": "ok", "parent_id": nil}, tt.row}
			records, err := Normalize(items, NormalizeOptions{})
			if err == nil {
				t.Fatal("Normalize() error = nil, want INVALID_INPUT")
			}
			if records != nil {
				t.Errorf("records = %v, want nil on error", records)
			}
			if !errs.Is(err, errs.ErrCodeInvalidInput) {
				t.Errorf("code = %v, want %v", errs.GetCode(err), errs.ErrCodeInvalidInput)
			}
			if !strings.Contains(err.Error(), "item 1") || !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error = %q, want position and key %q", err.Error(), tt.key)
			}
		})
	}
}

func TestNormalize_BadValues(t *testing.T) {
	tests := []struct {
		name string
		item any
	}{
		{"bool id", map[string]any{"id": true, "name": "a", "parent_id": nil}},
		{"fractional id", map[string]any{"id": 1.5, "name": "a", "parent_id": nil}},
		{"bad parent", map[string]any{"id": 1, "name": "a", "parent_id": []int{1}}},
		{"zero typed id", Item{Name: "a"}},
		{"unsupported type", 17},
		{"nil", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize([]any{tt.item}, NormalizeOptions{})
			if !errs.Is(err, errs.ErrCodeInvalidInput) {
				t.Errorf("error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestNormalize_JSONDecodedRows(t *testing.T) {
	data := `[{"id": 1, "name": "A", "parent_id": null}, {"id": "b", "name": "B", "parent_id": 1}]`
	var rows []map[string]any
	if err := json.Unmarshal([]byte(data), &rows); err != nil {
		t.Fatal(err)
	}
	records, err := Normalize(Inputs(rows), NormalizeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if records[0].ID != IntID(1) {
		t.Errorf("records[0].ID = %#v, want IntID(1)", records[0].ID)
	}
	if records[1].ID != StringID("b") || *records[1].ParentID != IntID(1) {
		t.Errorf("records[1] = %+v", records[1])
	}
}

func TestChain(t *testing.T) {
	c := Chain(
		TransformFunc(strings.TrimSpace),
		nil,
		TransformFunc(strings.ToLower),
	)
	if got := c.Transform("  MiXeD "); got != "mixed" {
		t.Errorf("Chain() = %q, want %q", got, "mixed")
	}
}

func TestNameString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"text", "text"},
		{42, "42"},
		{float64(3), "3"},
		{2.5, "2.5"},
		{json.Number("7"), "7"},
		{[]byte("raw"), "raw"},
		{IntID(9), "9"},
	}

	for _, tt := range tests {
		if got := nameString(tt.in); got != tt.want {
			t.Errorf("nameString(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
