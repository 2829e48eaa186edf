package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	infraMongo "github.com/davicafu/devcamper/internal/infra/db/mongodb"
	reviewDomain "github.com/davicafu/devcamper/internal/review/domain"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

// ReviewRepoMongoDB implementa ReviewRepository y BootcampLookup.
type ReviewRepoMongoDB struct {
	client    *mongo.Client
	db        *mongo.Database
	reviews   *mongo.Collection
	bootcamps *mongo.Collection
}

var (
	_ reviewDomain.ReviewRepository = (*ReviewRepoMongoDB)(nil)
	_ reviewDomain.BootcampLookup   = (*ReviewRepoMongoDB)(nil)
)

func NewReviewRepoMongoDB(client *mongo.Client, dbName string) *ReviewRepoMongoDB {
	db := client.Database(dbName)
	return &ReviewRepoMongoDB{
		client:    client,
		db:        db,
		reviews:   db.Collection(infraMongo.ReviewsCollection),
		bootcamps: db.Collection(infraMongo.BootcampsCollection),
	}
}

// EnsureIndexes crea el índice único (bootcamp, user): una reseña por usuario y bootcamp.
func (r *ReviewRepoMongoDB) EnsureIndexes(ctx context.Context) error {
	_, err := r.reviews.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "bootcamp", Value: 1}, {Key: "user", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	return err
}

type mongoReview struct {
	ID        string    `bson:"_id"`
	Title     string    `bson:"title"`
	Text      string    `bson:"text"`
	Rating    int       `bson:"rating"`
	CreatedAt time.Time `bson:"createdAt"`
	Bootcamp  string    `bson:"bootcamp"`
	User      string    `bson:"user"`
}

func (r *ReviewRepoMongoDB) Create(ctx context.Context, rv *reviewDomain.Review, evt sharedDomain.OutboxEvent) error {
	err := infraMongo.WithTransaction(ctx, r.client, func(sessCtx mongo.SessionContext) error {
		if _, err := r.reviews.InsertOne(sessCtx, toMongoReview(rv)); err != nil {
			return err
		}
		return infraMongo.InsertOutbox(sessCtx, r.db, evt)
	})
	if infraMongo.IsDuplicateKey(err) {
		return reviewDomain.ErrReviewAlreadyExists
	}
	return err
}

func (r *ReviewRepoMongoDB) Update(ctx context.Context, rv *reviewDomain.Review, evt sharedDomain.OutboxEvent) error {
	return infraMongo.WithTransaction(ctx, r.client, func(sessCtx mongo.SessionContext) error {
		mr := toMongoReview(rv)
		res, err := r.reviews.ReplaceOne(sessCtx, bson.M{"_id": mr.ID}, mr)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return reviewDomain.ErrReviewNotFound
		}
		return infraMongo.InsertOutbox(sessCtx, r.db, evt)
	})
}

func (r *ReviewRepoMongoDB) Delete(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	return infraMongo.WithTransaction(ctx, r.client, func(sessCtx mongo.SessionContext) error {
		res, err := r.reviews.DeleteOne(sessCtx, bson.M{"_id": id.String()})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return reviewDomain.ErrReviewNotFound
		}
		return infraMongo.InsertOutbox(sessCtx, r.db, evt)
	})
}

func (r *ReviewRepoMongoDB) GetByID(ctx context.Context, id uuid.UUID) (*reviewDomain.Review, error) {
	var mr mongoReview
	if err := r.reviews.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&mr); err != nil {
		if infraMongo.IsNotFound(err) {
			return nil, reviewDomain.ErrReviewNotFound
		}
		return nil, err
	}
	return fromMongoReview(&mr)
}

func (r *ReviewRepoMongoDB) BootcampOwner(ctx context.Context, bootcampID uuid.UUID) (uuid.UUID, error) {
	var row struct {
		User string `bson:"user"`
	}
	opts := options.FindOne().SetProjection(bson.M{"user": 1})
	if err := r.bootcamps.FindOne(ctx, bson.M{"_id": bootcampID.String()}, opts).Decode(&row); err != nil {
		if infraMongo.IsNotFound(err) {
			return uuid.Nil, reviewDomain.ErrBootcampNotFound
		}
		return uuid.Nil, err
	}
	return uuid.Parse(row.User)
}

func toMongoReview(rv *reviewDomain.Review) *mongoReview {
	return &mongoReview{
		ID: rv.ID.String(), Title: rv.Title, Text: rv.Text, Rating: rv.Rating,
		CreatedAt: rv.CreatedAt, Bootcamp: rv.Bootcamp.String(), User: rv.User.String(),
	}
}

func fromMongoReview(mr *mongoReview) (*reviewDomain.Review, error) {
	id, err := uuid.Parse(mr.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid review id %q: %w", mr.ID, err)
	}
	bootcamp, err := uuid.Parse(mr.Bootcamp)
	if err != nil {
		return nil, fmt.Errorf("invalid bootcamp id %q: %w", mr.Bootcamp, err)
	}
	author, err := uuid.Parse(mr.User)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", mr.User, err)
	}
	return &reviewDomain.Review{
		ID: id, Title: mr.Title, Text: mr.Text, Rating: mr.Rating,
		CreatedAt: mr.CreatedAt, Bootcamp: bootcamp, User: author,
	}, nil
}
