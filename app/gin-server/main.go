package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/talentpool/config"
	"github.com/yoockh/talentpool/internal/api/handlers"
	"github.com/yoockh/talentpool/internal/api/middleware"
	"github.com/yoockh/talentpool/internal/api/routes"
	"github.com/yoockh/talentpool/internal/cache"
	"github.com/yoockh/talentpool/internal/logger"
	"github.com/yoockh/talentpool/internal/parser"
	"github.com/yoockh/talentpool/internal/providers/llm"
	mongorepo "github.com/yoockh/talentpool/internal/repositories/mongo"
	pgrepo "github.com/yoockh/talentpool/internal/repositories/postgres"
	"github.com/yoockh/talentpool/internal/screening"
	"github.com/yoockh/talentpool/internal/services"
	"github.com/yoockh/talentpool/internal/storage"
	"github.com/yoockh/talentpool/internal/workers"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadApp(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logrus.Fatalf("config error: %v", err)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init PostgreSQL
	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	if err := pgrepo.Migrate(config.PostgresDB); err != nil {
		log.Fatalf("PostgreSQL migrate error: %v", err)
	}
	log.Info("PostgreSQL connected")

	// Init MongoDB
	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.WithError(err).Warn("MongoDB index creation failed")
	}
	log.Info("MongoDB connected")

	// Init Redis (optional: in-process cache and no background parsing without it)
	var (
		jobCache cache.Cache = cache.NewMemoryCache()
		queue    services.ParseQueue
	)
	switch err := config.InitRedis(); {
	case err == nil:
		jobCache = cache.NewRedisCache(config.RedisClient)
		queue = &workers.ParseQueue{Redis: config.RedisClient, Stream: cfg.ParseStream}
		log.Info("Redis connected")
	case errors.Is(err, config.ErrRedisNotConfigured):
		log.Warn("Redis not configured; using in-memory cache without background parsing")
	default:
		log.Fatalf("Redis init error: %v", err)
	}

	files, closeFiles, err := newStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}
	defer closeFiles()

	var provider llm.Provider
	if cfg.Vertex.Enabled() {
		v, err := llm.NewVertexGemini(ctx, cfg.Vertex.ProjectID, cfg.Vertex.Location, cfg.Vertex.Model)
		if err != nil {
			log.WithError(err).Warn("Vertex AI unavailable; using template feedback")
		} else {
			provider = v
			defer v.Close()
		}
	}

	// Repositories
	profileRepo := pgrepo.NewProfileRepo(config.PostgresDB)
	candidateRepo := pgrepo.NewCandidateRepo(config.PostgresDB)
	resumeRepo := pgrepo.NewResumeRepo(config.PostgresDB)
	jobRepo := pgrepo.NewJobRepo(config.PostgresDB)
	appRepo := pgrepo.NewApplicationRepo(config.PostgresDB)
	eventRepo := mongorepo.NewEventRepo(config.MongoDatabase())

	maxBytes := cfg.MaxUploadMB << 20
	rules := screening.DefaultRules()
	rules.SentinelSkill = cfg.Scoring.SentinelSkill
	rules.SentinelDegree = cfg.Scoring.SentinelDegree

	pipeline := screening.NewPipeline(screening.Pipeline{
		Resumes:      resumeRepo,
		Applications: appRepo,
		Jobs:         jobRepo,
		Files:        files,
		Parser:       parser.NewWithLimit(maxBytes),
		Rules:        rules,
		LLM:          provider,
		Events:       eventRepo,
		Logger:       log,
	})

	// Services
	profileSvc := services.NewProfileService(profileRepo, candidateRepo)
	jobSvc := services.NewJobService(jobRepo, jobCache, cfg.JobListTTL, log)
	appSvc := services.NewApplicationService(appRepo, jobRepo, resumeRepo, pipeline, eventRepo, log)
	candidateSvc := services.NewCandidateService(candidateRepo, resumeRepo, files, queue, maxBytes, log)

	// Background parsing
	var (
		pool       *workers.ParseWorkerPool
		statusFeed handlers.StatusFeed
	)
	if config.RedisClient != nil {
		statusFeed = &workers.RedisStatusFeed{Redis: config.RedisClient}
		pool = &workers.ParseWorkerPool{
			Redis:      config.RedisClient,
			Parser:     pipeline,
			NumWorkers: cfg.ParseWorkers,
			Logger:     log,
			Stream:     cfg.ParseStream,
		}
		if err := pool.Start(ctx); err != nil {
			log.Fatalf("parse workers init error: %v", err)
		}
	}

	// HTTP
	r := gin.New()
	r.MaxMultipartMemory = maxBytes
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	routes.RegisterRoutes(r, routes.Deps{
		Profiles:     profileSvc,
		Roles:        handlers.NewRoleHandler(profileSvc),
		Jobs:         handlers.NewJobHandler(jobSvc),
		Applications: handlers.NewApplicationHandler(appSvc),
		Candidates:   handlers.NewCandidateHandler(candidateSvc),
		ResumeStatus: handlers.NewResumeStatusHandler(candidateSvc, statusFeed),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("addr", srv.Addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	if pool != nil {
		pool.Wait()
	}
	if config.RedisClient != nil {
		_ = config.RedisClient.Close()
	}
	if config.MongoClient != nil {
		_ = config.MongoClient.Disconnect(shutdownCtx)
	}
}

// newStore picks the résumé storage backend.
func newStore(ctx context.Context, sc config.StorageConfig) (storage.Store, func(), error) {
	if sc.Backend == "gcs" {
		if sc.Bucket == "" {
			return nil, nil, errors.New("GCS_BUCKET is required for the gcs storage backend")
		}
		g, err := storage.NewGCSStore(ctx, sc.Bucket)
		if err != nil {
			return nil, nil, err
		}
		return g, func() { _ = g.Close() }, nil
	}
	l, err := storage.NewLocalStore(sc.LocalDir)
	if err != nil {
		return nil, nil, err
	}
	return l, func() {}, nil
}
