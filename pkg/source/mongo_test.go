package source

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	errs "github.com/matzehuels/selecttree/pkg/errors"
	"github.com/matzehuels/selecttree/pkg/tree"
)

func TestDocumentRows(t *testing.T) {
	root := primitive.NewObjectID()
	child := primitive.NewObjectID()
	docs := []bson.M{
		{"_id": root, "name": "Phone"},
		{"_id": child, "name": "iPhone", "parent_id": root},
		{"_id": primitive.NewObjectID(), "name": "Computer", "parent_id": primitive.Null{}},
	}

	rows := DocumentRows(docs, Fields{})
	lines, err := tree.New(tree.WithIndent("-")).Process(rows)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	if lines[0].ID != tree.StringID(root.Hex()) || lines[1].Text != "-iPhone" {
		t.Errorf("lines = %+v", lines)
	}
	if lines[2].Text != "Computer" {
		t.Errorf("null parent should be a root, got %q", lines[2].Text)
	}
}

func TestDocumentRows_CustomFields(t *testing.T) {
	docs := []bson.M{
		{"_id": primitive.NewObjectID(), "code": int32(10), "label": "Root"},
		{"_id": primitive.NewObjectID(), "code": int64(11), "label": "Leaf", "up": int32(10)},
	}
	rows := DocumentRows(docs, Fields{ID: "code", Name: "label", Parent: "up"})
	lines, err := tree.New(tree.WithIndent(">")).Process(rows)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 || lines[1].ID != tree.IntID(11) || lines[1].Text != ">Leaf" {
		t.Errorf("lines = %+v", lines)
	}
}

func TestDocumentRows_MissingNameFailsNormalize(t *testing.T) {
	rows := DocumentRows([]bson.M{{"_id": "x"}}, Fields{})
	_, err := tree.New().Process(rows)
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestMongo_NoCollection(t *testing.T) {
	_, err := (&Mongo{}).Load(context.Background())
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestConnectMongo_RejectsBadURI(t *testing.T) {
	_, err := ConnectMongo(context.Background(), "http://localhost:27017")
	if !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter(`{"active": true, "depth": {"$lt": 3}}`)
	if err != nil {
		t.Fatalf("ParseFilter() error = %v", err)
	}
	if f["active"] != true {
		t.Errorf("active = %#v, want true", f["active"])
	}
	if _, ok := f["depth"]; !ok {
		t.Error("depth condition missing")
	}

	if f, err := ParseFilter(""); err != nil || len(f) != 0 {
		t.Errorf("ParseFilter(\"\") = %v, %v; want empty filter", f, err)
	}
	if _, err := ParseFilter("{active"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("malformed filter error = %v, want INVALID_INPUT", err)
	}
}

func TestMongo_Version(t *testing.T) {
	ctx := context.Background()
	all, err := (&Mongo{}).Version(ctx)
	if err != nil {
		t.Fatal(err)
	}
	active, err := (&Mongo{Filter: bson.M{"active": true}}).Version(ctx)
	if err != nil {
		t.Fatal(err)
	}
	renamed, err := (&Mongo{Fields: Fields{Name: "title"}}).Version(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if all == active || all == renamed {
		t.Errorf("versions should differ: %q %q %q", all, active, renamed)
	}
}
