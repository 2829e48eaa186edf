package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	activityApp "github.com/davicafu/devcamper/internal/activity/application"
	activityDomain "github.com/davicafu/devcamper/internal/activity/domain"
	activityEvents "github.com/davicafu/devcamper/internal/activity/infra/inbound/events"
	activityHttp "github.com/davicafu/devcamper/internal/activity/infra/inbound/http"
	activityRepo "github.com/davicafu/devcamper/internal/activity/infra/outbound/analytics/clickhouse"
	bootcampApp "github.com/davicafu/devcamper/internal/bootcamp/application"
	bootcampDomain "github.com/davicafu/devcamper/internal/bootcamp/domain"
	bootcampEvents "github.com/davicafu/devcamper/internal/bootcamp/infra/inbound/events"
	bootcampHttp "github.com/davicafu/devcamper/internal/bootcamp/infra/inbound/http"
	"github.com/davicafu/devcamper/internal/bootcamp/infra/outbound/geocoder"
	courseApp "github.com/davicafu/devcamper/internal/course/application"
	courseDomain "github.com/davicafu/devcamper/internal/course/domain"
	courseHttp "github.com/davicafu/devcamper/internal/course/infra/inbound/http"
	infraMongo "github.com/davicafu/devcamper/internal/infra/db/mongodb"
	"github.com/davicafu/devcamper/internal/infra/db/sqldb"
	infraEvents "github.com/davicafu/devcamper/internal/infra/events"
	"github.com/davicafu/devcamper/internal/infra/http/middleware"
	infraRelayer "github.com/davicafu/devcamper/internal/infra/relayer"
	"github.com/davicafu/devcamper/internal/infra/storage"
	reviewApp "github.com/davicafu/devcamper/internal/review/application"
	reviewDomain "github.com/davicafu/devcamper/internal/review/domain"
	reviewHttp "github.com/davicafu/devcamper/internal/review/infra/inbound/http"
	userApp "github.com/davicafu/devcamper/internal/user/application"
	userDomain "github.com/davicafu/devcamper/internal/user/domain"
	userHttp "github.com/davicafu/devcamper/internal/user/infra/inbound/http"
	userRepo "github.com/davicafu/devcamper/internal/user/infra/outbound/db/sqlstore"
	"github.com/davicafu/devcamper/internal/user/infra/outbound/mailer"
	"github.com/davicafu/devcamper/internal/user/infra/outbound/token"
	"github.com/davicafu/devcamper/pkg/logger"
	sharedEvents "github.com/davicafu/devcamper/shared/events"
	sharedBus "github.com/davicafu/devcamper/shared/platform/bus"
	sharedCache "github.com/davicafu/devcamper/shared/platform/cache"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the outbox relayers and the event consumers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

// subscribeFunc conecta un consumidor a sus topics, sea en Kafka o en memoria.
type subscribeFunc func(ctx context.Context, name string, handler sharedBus.MessageHandler, topics ...string)

func serve() error {
	log := logger.Logger()
	defer log.Sync() // flush buffers al salir

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---------------- DB ----------------
	st, err := openStores(ctx, log)
	if err != nil {
		log.Error("failed to open stores", zap.Error(err))
		return err
	}
	defer st.Close(context.Background())

	bootcampListing := infraMongo.NewQueryCollection(st.mongo.Database(cfg.MongoDB), infraMongo.BootcampsCollection)
	courseListing := infraMongo.NewQueryCollection(st.mongo.Database(cfg.MongoDB), infraMongo.CoursesCollection)
	reviewListing := infraMongo.NewQueryCollection(st.mongo.Database(cfg.MongoDB), infraMongo.ReviewsCollection)
	userListing := userRepo.NewUserListing(st.sqlDB, st.dialect)

	// ---------------- Cache ----------------
	var cacheInstance sharedCache.Cache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("⚠️ Redis no disponible, cache en memoria", zap.Error(err))
		cacheInstance = sharedCache.NewInMemoryCache(cfg.CacheTTL, 3*cfg.CacheTTL)
	} else {
		defer rdb.Close()
		cacheInstance = sharedCache.NewRedisCache(rdb, cfg.CacheTTL)
		log.Info("✅ Redis conectado, cache habilitado")
	}

	// ---------------- Storage / geocoder ----------------
	var photos bootcampDomain.PhotoStorage
	if cfg.MinioEndpoint != "" {
		minioStorage, err := storage.NewMinioStorage(storage.MinioConfig{
			Endpoint:        cfg.MinioEndpoint,
			AccessKeyID:     cfg.MinioAccessKey,
			SecretAccessKey: cfg.MinioSecretKey,
			Bucket:          cfg.MinioBucket,
			UseSSL:          cfg.MinioUseSSL,
		})
		if err == nil {
			err = minioStorage.EnsureBucket(ctx)
		}
		if err != nil {
			log.Error("failed to init minio", zap.Error(err))
			return err
		}
		photos = minioStorage
		log.Info("✅ Fotos en MinIO", zap.String("bucket", cfg.MinioBucket))
	} else {
		photos = storage.NewLocalStorage(cfg.FileUploadPath)
		log.Info("📁 Fotos en disco local", zap.String("dir", cfg.FileUploadPath))
	}

	var geo bootcampDomain.Geocoder
	if cfg.GeocoderAPIKey != "" {
		geo = geocoder.NewMapQuest(cfg.GeocoderURL, cfg.GeocoderAPIKey)
	} else {
		log.Warn("⚠️ GEOCODER_API_KEY vacío: sin geocodificación ni búsqueda por radio")
	}

	// --------------- Servicios --------------
	bootcampService := bootcampApp.NewBootcampService(bootcampApp.Deps{
		Repo:         st.bootcamps,
		Averages:     st.bootcamps,
		Listing:      bootcampListing,
		Geocoder:     geo,
		Photos:       photos,
		Cache:        cacheInstance,
		MaxPhotoSize: cfg.MaxFileUpload,
	}, log)
	courseService := courseApp.NewCourseService(st.courses, st.courses, courseListing, log)
	reviewService := reviewApp.NewReviewService(st.reviews, st.reviews, reviewListing, log)

	tokens := token.NewJWTIssuer(cfg.JWTSecret, cfg.JWTExpire)
	authService := userApp.NewAuthService(st.users, tokens, mailer.NewLogMailer(log), cacheInstance, cfg.ResetURLTemplate, log)
	userService := userApp.NewUserService(st.users, userListing, cacheInstance, log)

	// ---------------- Events ---------------
	var (
		publisher sharedBus.EventPublisher
		subscribe subscribeFunc
	)
	if cfg.UseKafka {
		log.Info("🚀 Usando Kafka como bus de eventos")
		writer := infraEvents.NewKafkaWriter(cfg.KafkaBrokers)
		defer writer.Close()
		publisher = infraEvents.NewKafkaPublisher(writer, log)

		subscribe = func(ctx context.Context, name string, handler sharedBus.MessageHandler, topics ...string) {
			reader := infraEvents.NewKafkaReader(cfg.KafkaBrokers, cfg.KafkaGroupID+"-"+name, topics...)
			go func() {
				<-ctx.Done()
				reader.Close()
			}()
			infraEvents.NewConsumerAdapter(reader, handler, log).Start(ctx)
		}
	} else {
		log.Info("⚡️ Usando bus de eventos en memoria (canales de Go)")
		bus := infraEvents.NewInMemoryEventBus(log)
		publisher = bus
		subscribe = func(ctx context.Context, name string, handler sharedBus.MessageHandler, topics ...string) {
			log.Info("🎧 Iniciando listener en memoria", zap.String("consumer", name), zap.Strings("topics", topics))
			bus.Subscribe(ctx, handler, 64, topics...)
		}
	}

	subscribe(ctx, "bootcamps", bootcampEvents.NewBootcampConsumer(bootcampService, log), bootcampEvents.Topics...)

	var analytics activityDomain.ActivityRepository
	if cfg.ClickHouseDSN != "" {
		chRepo, err := activityRepo.NewActivityRepo(ctx, cfg.ClickHouseDSN, cfg.ClickHouseDB)
		if err == nil {
			err = chRepo.EnsureSchema(ctx)
		}
		if err != nil {
			log.Warn("⚠️ ClickHouse no disponible, analítica deshabilitada", zap.Error(err))
		} else {
			defer chRepo.Close()
			analytics = chRepo
			consumer := activityEvents.NewActivityConsumer(chRepo, cfg.ActivityBatch, cfg.ActivityFlush, log)
			consumer.Start(ctx)
			subscribe(ctx, "activity", consumer, activityEvents.Topics...)
		}
	}
	activityService := activityApp.NewActivityService(analytics, log)

	// ------------ Outbox Workers ------------
	registry := sharedEvents.MergeRegistries(
		bootcampDomain.NewEventRegistry(),
		courseDomain.NewEventRegistry(),
		reviewDomain.NewEventRegistry(),
		userDomain.NewEventRegistry(),
	)
	go infraRelayer.NewOutboxWorker("mongo", st.outbox, publisher, registry, cfg.OutboxPeriod, cfg.OutboxLimit, log).Start(ctx)
	go infraRelayer.NewOutboxWorker("sql", sqldb.NewOutboxRepoSQL(st.sqlDB, st.dialect), publisher, registry, cfg.OutboxPeriod, cfg.OutboxLimit, log).Start(ctx)

	// ---------------- HTTP ----------------
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	limiter, rateLimit := middleware.RateLimitMiddleware(cfg.RateLimitPerMin, cfg.RateLimitBurst)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Cleanup()
			}
		}
	}()
	metrics := middleware.NewMetrics(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.AccessLog(log), metrics.Middleware())
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())
	if cfg.MinioEndpoint == "" {
		router.Static("/uploads", cfg.FileUploadPath)
	}

	protect := middleware.Protect(authService)
	api := router.Group("/api/v1", rateLimit)
	bootcampHttp.RegisterBootcampRoutes(api, bootcampHttp.NewBootcampHandler(bootcampService), protect)
	courseHttp.RegisterCourseRoutes(api, courseHttp.NewCourseHandler(courseService), protect)
	reviewHttp.RegisterReviewRoutes(api, reviewHttp.NewReviewHandler(reviewService), protect)
	userHttp.RegisterAuthRoutes(api, userHttp.NewAuthHandler(authService, userHttp.CookieConfig{
		MaxAge: cfg.JWTCookieExpire,
		Secure: cfg.AppEnv == "production",
	}), protect)
	userHttp.RegisterUserRoutes(api, userHttp.NewUserHandler(userService), protect)
	activityHttp.RegisterActivityRoutes(api, activityHttp.NewActivityHandler(activityService), protect)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("🚀 Server running",
			zap.String("url", "http://localhost:"+cfg.HTTPPort),
			zap.String("env", cfg.AppEnv),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("failed to start server", zap.Error(err))
			return err
		}
	case <-ctx.Done():
	}

	log.Info("🛑 Apagando servidor")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
