package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	infraMongo "github.com/davicafu/devcamper/internal/infra/db/mongodb"
	"github.com/davicafu/devcamper/internal/infra/db/sqldb"
	"github.com/davicafu/devcamper/internal/seed"
	"github.com/davicafu/devcamper/pkg/logger"
)

func seedCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import or destroy the sample data",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "./data", "directory with the JSON fixtures")

	cmd.AddCommand(&cobra.Command{
		Use:   "import",
		Short: "Load bootcamps, courses, reviews and users from --dir",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSeeder(cmd.Context(), func(ctx context.Context, s *seed.Seeder) error {
				_, err := s.Import(ctx, dir)
				return err
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "destroy",
		Short: "Delete every bootcamp, course, review and user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSeeder(cmd.Context(), func(ctx context.Context, s *seed.Seeder) error {
				return s.Destroy(ctx)
			})
		},
	})
	return cmd
}

func withSeeder(parent context.Context, fn func(ctx context.Context, s *seed.Seeder) error) error {
	log := logger.Logger()
	defer log.Sync()

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, 2*time.Minute)
	defer cancel()

	st, err := openStores(ctx, log)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	s := &seed.Seeder{
		Users:     st.users,
		Bootcamps: st.bootcamps,
		Courses:   st.courses,
		Reviews:   st.reviews,
		Purgers: []seed.Purger{
			infraMongo.NewCollectionPurger(st.mongo, cfg.MongoDB,
				infraMongo.BootcampsCollection,
				infraMongo.CoursesCollection,
				infraMongo.ReviewsCollection,
				infraMongo.OutboxCollection,
			),
			sqldb.NewTablePurger(st.sqlDB, st.dialect, "users", "outbox"),
		},
		Log: log,
	}
	if err := fn(ctx, s); err != nil {
		log.Error("Seed failed", zap.Error(err))
		return err
	}
	return nil
}
