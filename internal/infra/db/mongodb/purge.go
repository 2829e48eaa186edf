package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionPurger borra todos los documentos de las colecciones indicadas.
type CollectionPurger struct {
	db          *mongo.Database
	collections []string
}

func NewCollectionPurger(client *mongo.Client, dbName string, collections ...string) *CollectionPurger {
	return &CollectionPurger{db: client.Database(dbName), collections: collections}
}

func (p *CollectionPurger) Purge(ctx context.Context) error {
	for _, name := range p.collections {
		if _, err := p.db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("purge %s: %w", name, err)
		}
	}
	return nil
}
