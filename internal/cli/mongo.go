package cli

import (
	"context"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/selecttree/pkg/errors"
	"github.com/matzehuels/selecttree/pkg/source"
)

const defaultMongoURI = "mongodb://localhost:27017"

// mongoOpts holds the collection flags of the mongo command. Empty values
// fall back to the [mongo] section of the config file.
type mongoOpts struct {
	uri         string
	database    string
	collection  string
	filter      string
	idField     string
	nameField   string
	parentField string
}

// mongoCommand creates the mongo command for building a selectbox from a
// MongoDB collection.
func (c *CLI) mongoCommand() *cobra.Command {
	var out outputOpts
	var opts mongoOpts

	cmd := &cobra.Command{
		Use:   "mongo",
		Short: "Build a selectbox from a MongoDB collection",
		Example: `  selecttree mongo --uri mongodb://localhost:27017 --database shop --collection categories
  selecttree mongo --collection categories --filter '{"active": true}' --name title`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMongo(cmd.Context(), &opts, &out)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.uri, "uri", "", "MongoDB connection URI (default "+defaultMongoURI+")")
	f.StringVar(&opts.database, "database", "", "database name")
	f.StringVar(&opts.collection, "collection", "", "collection holding the records")
	f.StringVar(&opts.filter, "filter", "", "filter document in extended JSON")
	f.StringVar(&opts.idField, "id", "", "id field (default id, falling back to _id)")
	f.StringVar(&opts.nameField, "name", "", "name field (default name)")
	f.StringVar(&opts.parentField, "parent", "", "parent field (default parent_id)")
	out.register(cmd)

	return cmd
}

func (c *CLI) runMongo(ctx context.Context, opts *mongoOpts, out *outputOpts) error {
	logger := loggerFromContext(ctx)
	cfg := c.cfg.Mongo
	if opts.uri == "" {
		opts.uri = cfg.URI
	}
	if opts.uri == "" {
		opts.uri = defaultMongoURI
	}
	if opts.database == "" {
		opts.database = cfg.Database
	}
	if opts.collection == "" {
		opts.collection = cfg.Collection
	}
	if opts.database == "" || opts.collection == "" {
		return errs.New(errs.ErrCodeInvalidInput, "--database and --collection are required (or [mongo] in the config file)")
	}

	filter, err := source.ParseFilter(opts.filter)
	if err != nil {
		return err
	}

	client, err := source.ConnectMongo(ctx, opts.uri)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Debug("mongo disconnect", "err", err)
		}
	}()

	src := source.NewMongo(client.Database(opts.database).Collection(opts.collection))
	src.Filter = filter
	src.Fields = source.Fields{ID: opts.idField, Name: opts.nameField, Parent: opts.parentField}
	return c.runSource(ctx, src, out)
}
