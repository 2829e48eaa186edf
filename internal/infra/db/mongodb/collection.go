package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	sharedDomain "github.com/davicafu/devcamper/shared/domain"
	sharedQuery "github.com/davicafu/devcamper/shared/platform/query"
)

// QueryCollection expone una colección de Mongo como sharedQuery.Collection.
// Los documentos se devuelven tal cual los guarda Mongo (claves bson).
type QueryCollection struct {
	db   *mongo.Database
	coll *mongo.Collection
}

var _ sharedQuery.Collection = (*QueryCollection)(nil)

func NewQueryCollection(db *mongo.Database, name string) *QueryCollection {
	return &QueryCollection{db: db, coll: db.Collection(name)}
}

func (q *QueryCollection) Find(ctx context.Context, spec sharedQuery.FindSpec) ([]sharedQuery.Document, error) {
	opts := options.Find().SetSort(sortSpec(spec.Sort))
	if spec.Skip > 0 {
		opts.SetSkip(int64(spec.Skip))
	}
	if spec.Limit > 0 {
		opts.SetLimit(int64(spec.Limit))
	}
	if proj := projection(spec.Select); proj != nil {
		opts.SetProjection(proj)
	}

	docs, err := decodeAll(ctx, q.coll, ToFilter(spec.Conditions), opts)
	if err != nil {
		return nil, err
	}

	for _, p := range spec.Populate {
		if err := q.populate(ctx, docs, p); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func (q *QueryCollection) Count(ctx context.Context, conds []sharedDomain.Criterion) (int64, error) {
	return q.coll.CountDocuments(ctx, ToFilter(conds))
}

// populate resuelve la relación con una única consulta $in sobre la colección relacionada.
func (q *QueryCollection) populate(ctx context.Context, docs []sharedQuery.Document, p sharedQuery.Populate) error {
	keys := sharedQuery.LocalKeys(docs, p)
	if len(keys) == 0 {
		sharedQuery.Attach(docs, p, nil)
		return nil
	}

	opts := options.Find()
	if len(p.Select) > 0 {
		opts.SetProjection(projection(append(append([]string{}, p.Select...), p.Foreign())))
	}
	filter := bson.M{p.Foreign(): bson.M{"$in": bson.A(keys)}}

	related, err := decodeAll(ctx, q.db.Collection(p.From), filter, opts)
	if err != nil {
		return err
	}
	sharedQuery.Attach(docs, p, related)
	return nil
}

func decodeAll(ctx context.Context, coll *mongo.Collection, filter interface{}, opts *options.FindOptions) ([]sharedQuery.Document, error) {
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := make([]sharedQuery.Document, 0)
	for cursor.Next(ctx) {
		var m bson.M
		if err := cursor.Decode(&m); err != nil {
			return nil, err
		}
		docs = append(docs, sharedQuery.Document(m))
	}
	return docs, cursor.Err()
}
