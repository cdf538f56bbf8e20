package source

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	errs "github.com/matzehuels/selecttree/pkg/errors"
)

const mongoConnectTimeout = 10 * time.Second

// ConnectMongo connects to MongoDB and pings the primary.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	if err := errs.ValidateURL(uri, "mongodb", "mongodb+srv"); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "connect mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "ping mongodb")
	}
	return client, nil
}

// Fields names the document fields holding id, name and parent.
type Fields struct {
	ID     string
	Name   string
	Parent string
}

// SetDefaults fills empty field names. ID defaults to "id" and falls back
// to "_id" per document when "id" is absent.
func (f *Fields) SetDefaults() {
	if f.ID == "" {
		f.ID = "id"
	}
	if f.Name == "" {
		f.Name = "name"
	}
	if f.Parent == "" {
		f.Parent = "parent_id"
	}
}

// Mongo loads rows from a MongoDB collection, sorted by name.
type Mongo struct {
	Collection *mongo.Collection
	Filter     bson.M
	Fields     Fields
}

// NewMongo creates a Mongo source over coll with default field names.
func NewMongo(coll *mongo.Collection) *Mongo {
	return &Mongo{Collection: coll}
}

// Name returns the collection name.
func (m *Mongo) Name() string {
	if m.Collection == nil {
		return "mongo:"
	}
	return "mongo:" + m.Collection.Database().Name() + "." + m.Collection.Name()
}

// Load fetches every matching document.
func (m *Mongo) Load(ctx context.Context) ([]any, error) {
	if m.Collection == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "mongo source has no collection")
	}
	fields := m.Fields
	fields.SetDefaults()

	filter := m.Filter
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find().SetSort(bson.D{{Key: fields.Name, Value: 1}})

	cur, err := m.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "find in %s", m.Collection.Name())
	}
	defer cur.Close(ctx)

	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", m.Collection.Name(), err)
	}
	return DocumentRows(docs, fields), nil
}

// Version identifies the filter and field mapping, so rows cached for one
// filter are never served for another.
func (m *Mongo) Version(ctx context.Context) (string, error) {
	filter := m.Filter
	if filter == nil {
		filter = bson.M{}
	}
	data, err := bson.MarshalExtJSON(filter, true, false)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidInput, err, "encode filter")
	}
	fields := m.Fields
	fields.SetDefaults()
	return fmt.Sprintf("%s|%s,%s,%s", data, fields.ID, fields.Name, fields.Parent), nil
}

// ParseFilter decodes a filter written in MongoDB extended JSON, for
// example {"active": true}. An empty string matches every document.
func ParseFilter(s string) (bson.M, error) {
	if s == "" {
		return bson.M{}, nil
	}
	var filter bson.M
	if err := bson.UnmarshalExtJSON([]byte(s), false, &filter); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid filter")
	}
	return filter, nil
}

// DocumentRows maps documents to tree rows. ObjectIDs become their hex
// string; a document without the parent field becomes a root.
func DocumentRows(docs []bson.M, fields Fields) []any {
	fields.SetDefaults()
	rows := make([]any, 0, len(docs))
	for _, doc := range docs {
		id, ok := doc[fields.ID]
		if !ok && fields.ID == "id" {
			id, ok = doc["_id"]
		}
		row := map[string]any{"parent_id": bsonValue(doc[fields.Parent])}
		if ok {
			row["id"] = bsonValue(id)
		}
		if name, ok := doc[fields.Name]; ok {
			row["name"] = bsonValue(name)
		}
		rows = append(rows, row)
	}
	return rows
}

func bsonValue(v any) any {
	switch x := v.(type) {
	case primitive.ObjectID:
		return x.Hex()
	case primitive.Null, primitive.Undefined:
		return nil
	default:
		return x
	}
}

var (
	_ Source    = (*Mongo)(nil)
	_ Versioned = (*Mongo)(nil)
)
