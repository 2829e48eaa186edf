package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bootcampDomain "github.com/davicafu/devcamper/internal/bootcamp/domain"
	infraMongo "github.com/davicafu/devcamper/internal/infra/db/mongodb"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

// BootcampRepoMongoDB implementa BootcampRepository y AveragesReader.
type BootcampRepoMongoDB struct {
	client    *mongo.Client
	db        *mongo.Database
	bootcamps *mongo.Collection
}

var (
	_ bootcampDomain.BootcampRepository = (*BootcampRepoMongoDB)(nil)
	_ bootcampDomain.AveragesReader     = (*BootcampRepoMongoDB)(nil)
)

func NewBootcampRepoMongoDB(client *mongo.Client, dbName string) *BootcampRepoMongoDB {
	db := client.Database(dbName)
	return &BootcampRepoMongoDB{
		client:    client,
		db:        db,
		bootcamps: db.Collection(infraMongo.BootcampsCollection),
	}
}

// EnsureIndexes crea el índice único de nombre, el de slug y el 2dsphere de location.
func (r *BootcampRepoMongoDB) EnsureIndexes(ctx context.Context) error {
	_, err := r.bootcamps.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "slug", Value: 1}}},
		{Keys: bson.D{{Key: "user", Value: 1}}},
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
	})
	return err
}

// --- Structs de BSON para el mapeo ---
// Las claves coinciden con las JSON del dominio: los listados devuelven los documentos tal cual.

type mongoLocation struct {
	Type             string    `bson:"type"`
	Coordinates      []float64 `bson:"coordinates"`
	FormattedAddress string    `bson:"formattedAddress,omitempty"`
	Street           string    `bson:"street,omitempty"`
	City             string    `bson:"city,omitempty"`
	State            string    `bson:"state,omitempty"`
	Zipcode          string    `bson:"zipcode,omitempty"`
	Country          string    `bson:"country,omitempty"`
}

type mongoBootcamp struct {
	ID            string         `bson:"_id"`
	User          string         `bson:"user"`
	Name          string         `bson:"name"`
	Slug          string         `bson:"slug"`
	Description   string         `bson:"description"`
	Website       string         `bson:"website,omitempty"`
	Phone         string         `bson:"phone,omitempty"`
	Email         string         `bson:"email,omitempty"`
	Address       string         `bson:"address"`
	Location      *mongoLocation `bson:"location,omitempty"`
	Careers       []string       `bson:"careers"`
	AverageRating *float64       `bson:"averageRating,omitempty"`
	AverageCost   *float64       `bson:"averageCost,omitempty"`
	Photo         string         `bson:"photo"`
	Housing       bool           `bson:"housing"`
	JobAssistance bool           `bson:"jobAssistance"`
	JobGuarantee  bool           `bson:"jobGuarantee"`
	AcceptGi      bool           `bson:"acceptGi"`
	CreatedAt     time.Time      `bson:"createdAt"`
}

// --- CRUD Transaccional ---

func (r *BootcampRepoMongoDB) Create(ctx context.Context, b *bootcampDomain.Bootcamp, evt sharedDomain.OutboxEvent) error {
	err := infraMongo.WithTransaction(ctx, r.client, func(sessCtx mongo.SessionContext) error {
		if _, err := r.bootcamps.InsertOne(sessCtx, toMongoBootcamp(b)); err != nil {
			return err
		}
		return infraMongo.InsertOutbox(sessCtx, r.db, evt)
	})
	if infraMongo.IsDuplicateKey(err) {
		return bootcampDomain.ErrBootcampAlreadyExists
	}
	return err
}

func (r *BootcampRepoMongoDB) Update(ctx context.Context, b *bootcampDomain.Bootcamp, evt sharedDomain.OutboxEvent) error {
	err := infraMongo.WithTransaction(ctx, r.client, func(sessCtx mongo.SessionContext) error {
		mb := toMongoBootcamp(b)
		res, err := r.bootcamps.ReplaceOne(sessCtx, bson.M{"_id": mb.ID}, mb)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return bootcampDomain.ErrBootcampNotFound
		}
		return infraMongo.InsertOutbox(sessCtx, r.db, evt)
	})
	if infraMongo.IsDuplicateKey(err) {
		return bootcampDomain.ErrBootcampAlreadyExists
	}
	return err
}

// DeleteCascade borra cursos, reseñas y el propio bootcamp en la misma transacción.
func (r *BootcampRepoMongoDB) DeleteCascade(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	return infraMongo.WithTransaction(ctx, r.client, func(sessCtx mongo.SessionContext) error {
		res, err := r.bootcamps.DeleteOne(sessCtx, bson.M{"_id": id.String()})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return bootcampDomain.ErrBootcampNotFound
		}

		byBootcamp := bson.M{"bootcamp": id.String()}
		if _, err := r.db.Collection(infraMongo.CoursesCollection).DeleteMany(sessCtx, byBootcamp); err != nil {
			return fmt.Errorf("cascade courses: %w", err)
		}
		if _, err := r.db.Collection(infraMongo.ReviewsCollection).DeleteMany(sessCtx, byBootcamp); err != nil {
			return fmt.Errorf("cascade reviews: %w", err)
		}
		return infraMongo.InsertOutbox(sessCtx, r.db, evt)
	})
}

// --- Lectura ---

func (r *BootcampRepoMongoDB) GetByID(ctx context.Context, id uuid.UUID) (*bootcampDomain.Bootcamp, error) {
	var mb mongoBootcamp
	err := r.bootcamps.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&mb)
	if err != nil {
		if infraMongo.IsNotFound(err) {
			return nil, bootcampDomain.ErrBootcampNotFound
		}
		return nil, err
	}
	return fromMongoBootcamp(&mb)
}

func (r *BootcampRepoMongoDB) CountByOwner(ctx context.Context, owner uuid.UUID) (int64, error) {
	return r.bootcamps.CountDocuments(ctx, bson.M{"user": owner.String()})
}

func (r *BootcampRepoMongoDB) FindWithinRadius(ctx context.Context, lng, lat, radius float64) ([]*bootcampDomain.Bootcamp, error) {
	filter := bson.M{
		"location": bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{bson.A{lng, lat}, radius},
			},
		},
	}
	cursor, err := r.bootcamps.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*bootcampDomain.Bootcamp
	for cursor.Next(ctx) {
		var mb mongoBootcamp
		if err := cursor.Decode(&mb); err != nil {
			return nil, err
		}
		b, err := fromMongoBootcamp(&mb)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, cursor.Err()
}

func (r *BootcampRepoMongoDB) SetAverages(ctx context.Context, id uuid.UUID, averageCost, averageRating *float64) error {
	set, unset := bson.M{}, bson.M{}
	if averageCost != nil {
		set["averageCost"] = *averageCost
	} else {
		unset["averageCost"] = ""
	}
	if averageRating != nil {
		set["averageRating"] = *averageRating
	} else {
		unset["averageRating"] = ""
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := r.bootcamps.UpdateOne(ctx, bson.M{"_id": id.String()}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return bootcampDomain.ErrBootcampNotFound
	}
	return nil
}

// --- Agregaciones para las medias ---

func (r *BootcampRepoMongoDB) AverageTuition(ctx context.Context, bootcampID uuid.UUID) (float64, bool, error) {
	return r.average(ctx, infraMongo.CoursesCollection, "tuition", bootcampID)
}

func (r *BootcampRepoMongoDB) AverageRating(ctx context.Context, bootcampID uuid.UUID) (float64, bool, error) {
	return r.average(ctx, infraMongo.ReviewsCollection, "rating", bootcampID)
}

func (r *BootcampRepoMongoDB) average(ctx context.Context, coll, field string, bootcampID uuid.UUID) (float64, bool, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"bootcamp": bootcampID.String()}}},
		{{Key: "$group", Value: bson.M{"_id": "$bootcamp", "avg": bson.M{"$avg": "$" + field}}}},
	}
	cursor, err := r.db.Collection(coll).Aggregate(ctx, pipeline)
	if err != nil {
		return 0, false, err
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		return 0, false, cursor.Err()
	}
	var row struct {
		Avg float64 `bson:"avg"`
	}
	if err := cursor.Decode(&row); err != nil {
		return 0, false, err
	}
	return row.Avg, true, nil
}

// --- Helpers de Mapeo y Conversión ---

func toMongoBootcamp(b *bootcampDomain.Bootcamp) *mongoBootcamp {
	mb := &mongoBootcamp{
		ID: b.ID.String(), User: b.User.String(), Name: b.Name, Slug: b.Slug,
		Description: b.Description, Website: b.Website, Phone: b.Phone, Email: b.Email,
		Address: b.Address, Careers: b.Careers, AverageRating: b.AverageRating, AverageCost: b.AverageCost,
		Photo: b.Photo, Housing: b.Housing, JobAssistance: b.JobAssistance, JobGuarantee: b.JobGuarantee,
		AcceptGi: b.AcceptGi, CreatedAt: b.CreatedAt,
	}
	if l := b.Location; l != nil {
		mb.Location = &mongoLocation{
			Type: l.Type, Coordinates: l.Coordinates, FormattedAddress: l.FormattedAddress,
			Street: l.Street, City: l.City, State: l.State, Zipcode: l.Zipcode, Country: l.Country,
		}
	}
	return mb
}

func fromMongoBootcamp(mb *mongoBootcamp) (*bootcampDomain.Bootcamp, error) {
	id, err := uuid.Parse(mb.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid bootcamp id %q: %w", mb.ID, err)
	}
	owner, err := uuid.Parse(mb.User)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id %q: %w", mb.User, err)
	}
	b := &bootcampDomain.Bootcamp{
		ID: id, User: owner, Name: mb.Name, Slug: mb.Slug,
		Description: mb.Description, Website: mb.Website, Phone: mb.Phone, Email: mb.Email,
		Address: mb.Address, Careers: mb.Careers, AverageRating: mb.AverageRating, AverageCost: mb.AverageCost,
		Photo: mb.Photo, Housing: mb.Housing, JobAssistance: mb.JobAssistance, JobGuarantee: mb.JobGuarantee,
		AcceptGi: mb.AcceptGi, CreatedAt: mb.CreatedAt,
	}
	if l := mb.Location; l != nil {
		b.Location = &bootcampDomain.Location{
			Type: l.Type, Coordinates: l.Coordinates, FormattedAddress: l.FormattedAddress,
			Street: l.Street, City: l.City, State: l.State, Zipcode: l.Zipcode, Country: l.Country,
		}
	}
	return b, nil
}
