package main

import (
	"context"
	"database/sql"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	bootcampRepo "github.com/davicafu/devcamper/internal/bootcamp/infra/outbound/db/mongodb"
	courseRepo "github.com/davicafu/devcamper/internal/course/infra/outbound/db/mongodb"
	infraMongo "github.com/davicafu/devcamper/internal/infra/db/mongodb"
	"github.com/davicafu/devcamper/internal/infra/db/sqldb"
	reviewRepo "github.com/davicafu/devcamper/internal/review/infra/outbound/db/mongodb"
	userRepo "github.com/davicafu/devcamper/internal/user/infra/outbound/db/sqlstore"
)

// stores agrupa las conexiones y repositorios que comparten serve y seed.
type stores struct {
	mongo   *mongo.Client
	sqlDB   *sql.DB
	dialect sqldb.Dialect

	bootcamps *bootcampRepo.BootcampRepoMongoDB
	courses   *courseRepo.CourseRepoMongoDB
	reviews   *reviewRepo.ReviewRepoMongoDB
	users     *userRepo.UserRepoSQL
	outbox    *infraMongo.OutboxRepoMongoDB
}

func openStores(ctx context.Context, log *zap.Logger) (*stores, error) {
	client, err := infraMongo.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	log.Info("✅ MongoDB conectado", zap.String("db", cfg.MongoDB))

	dialect, err := sqldb.DialectFor(cfg.UserDBDriver)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	db, err := sqldb.Open(dialect, cfg.UserDBDSN)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = client.Disconnect(ctx)
		db.Close()
		return nil, err
	}
	log.Info("✅ Base de usuarios lista", zap.String("driver", dialect.Driver))

	s := &stores{
		mongo:     client,
		sqlDB:     db,
		dialect:   dialect,
		bootcamps: bootcampRepo.NewBootcampRepoMongoDB(client, cfg.MongoDB),
		courses:   courseRepo.NewCourseRepoMongoDB(client, cfg.MongoDB),
		reviews:   reviewRepo.NewReviewRepoMongoDB(client, cfg.MongoDB),
		users:     userRepo.NewUserRepoSQL(db, dialect),
		outbox:    infraMongo.NewOutboxRepoMongoDB(client, cfg.MongoDB),
	}

	for name, ensure := range map[string]func(context.Context) error{
		"bootcamps": s.bootcamps.EnsureIndexes,
		"courses":   s.courses.EnsureIndexes,
		"reviews":   s.reviews.EnsureIndexes,
		"outbox":    s.outbox.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			s.Close(ctx)
			return nil, err
		}
		log.Debug("Índices creados", zap.String("collection", name))
	}
	return s, nil
}

func (s *stores) Close(ctx context.Context) {
	_ = s.mongo.Disconnect(ctx)
	_ = s.sqlDB.Close()
}
