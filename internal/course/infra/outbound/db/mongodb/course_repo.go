package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	courseDomain "github.com/davicafu/devcamper/internal/course/domain"
	infraMongo "github.com/davicafu/devcamper/internal/infra/db/mongodb"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

// CourseRepoMongoDB implementa CourseRepository y BootcampLookup.
type CourseRepoMongoDB struct {
	client    *mongo.Client
	db        *mongo.Database
	courses   *mongo.Collection
	bootcamps *mongo.Collection
}

var (
	_ courseDomain.CourseRepository = (*CourseRepoMongoDB)(nil)
	_ courseDomain.BootcampLookup   = (*CourseRepoMongoDB)(nil)
)

func NewCourseRepoMongoDB(client *mongo.Client, dbName string) *CourseRepoMongoDB {
	db := client.Database(dbName)
	return &CourseRepoMongoDB{
		client:    client,
		db:        db,
		courses:   db.Collection(infraMongo.CoursesCollection),
		bootcamps: db.Collection(infraMongo.BootcampsCollection),
	}
}

func (r *CourseRepoMongoDB) EnsureIndexes(ctx context.Context) error {
	_, err := r.courses.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "bootcamp", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	return err
}

type mongoCourse struct {
	ID                   string    `bson:"_id"`
	Title                string    `bson:"title"`
	Description          string    `bson:"description"`
	Weeks                int       `bson:"weeks"`
	Tuition              float64   `bson:"tuition"`
	MinimumSkill         string    `bson:"minimumSkill"`
	ScholarshipAvailable bool      `bson:"scholarshipAvailable"`
	CreatedAt            time.Time `bson:"createdAt"`
	Bootcamp             string    `bson:"bootcamp"`
	User                 string    `bson:"user"`
}

func (r *CourseRepoMongoDB) Create(ctx context.Context, c *courseDomain.Course, evt sharedDomain.OutboxEvent) error {
	return infraMongo.WithTransaction(ctx, r.client, func(sessCtx mongo.SessionContext) error {
		if _, err := r.courses.InsertOne(sessCtx, toMongoCourse(c)); err != nil {
			return err
		}
		return infraMongo.InsertOutbox(sessCtx, r.db, evt)
	})
}

func (r *CourseRepoMongoDB) Update(ctx context.Context, c *courseDomain.Course, evt sharedDomain.OutboxEvent) error {
	return infraMongo.WithTransaction(ctx, r.client, func(sessCtx mongo.SessionContext) error {
		mc := toMongoCourse(c)
		res, err := r.courses.ReplaceOne(sessCtx, bson.M{"_id": mc.ID}, mc)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return courseDomain.ErrCourseNotFound
		}
		return infraMongo.InsertOutbox(sessCtx, r.db, evt)
	})
}

func (r *CourseRepoMongoDB) Delete(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	return infraMongo.WithTransaction(ctx, r.client, func(sessCtx mongo.SessionContext) error {
		res, err := r.courses.DeleteOne(sessCtx, bson.M{"_id": id.String()})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return courseDomain.ErrCourseNotFound
		}
		return infraMongo.InsertOutbox(sessCtx, r.db, evt)
	})
}

func (r *CourseRepoMongoDB) GetByID(ctx context.Context, id uuid.UUID) (*courseDomain.Course, error) {
	var mc mongoCourse
	if err := r.courses.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&mc); err != nil {
		if infraMongo.IsNotFound(err) {
			return nil, courseDomain.ErrCourseNotFound
		}
		return nil, err
	}
	return fromMongoCourse(&mc)
}

// BootcampOwner lee solo el campo user del bootcamp.
func (r *CourseRepoMongoDB) BootcampOwner(ctx context.Context, bootcampID uuid.UUID) (uuid.UUID, error) {
	var row struct {
		User string `bson:"user"`
	}
	opts := options.FindOne().SetProjection(bson.M{"user": 1})
	if err := r.bootcamps.FindOne(ctx, bson.M{"_id": bootcampID.String()}, opts).Decode(&row); err != nil {
		if infraMongo.IsNotFound(err) {
			return uuid.Nil, courseDomain.ErrBootcampNotFound
		}
		return uuid.Nil, err
	}
	return uuid.Parse(row.User)
}

func toMongoCourse(c *courseDomain.Course) *mongoCourse {
	return &mongoCourse{
		ID: c.ID.String(), Title: c.Title, Description: c.Description, Weeks: c.Weeks,
		Tuition: c.Tuition, MinimumSkill: c.MinimumSkill, ScholarshipAvailable: c.ScholarshipAvailable,
		CreatedAt: c.CreatedAt, Bootcamp: c.Bootcamp.String(), User: c.User.String(),
	}
}

func fromMongoCourse(mc *mongoCourse) (*courseDomain.Course, error) {
	id, err := uuid.Parse(mc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid course id %q: %w", mc.ID, err)
	}
	bootcamp, err := uuid.Parse(mc.Bootcamp)
	if err != nil {
		return nil, fmt.Errorf("invalid bootcamp id %q: %w", mc.Bootcamp, err)
	}
	owner, err := uuid.Parse(mc.User)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id %q: %w", mc.User, err)
	}
	return &courseDomain.Course{
		ID: id, Title: mc.Title, Description: mc.Description, Weeks: mc.Weeks,
		Tuition: mc.Tuition, MinimumSkill: mc.MinimumSkill, ScholarshipAvailable: mc.ScholarshipAvailable,
		CreatedAt: mc.CreatedAt, Bootcamp: bootcamp, User: owner,
	}, nil
}
