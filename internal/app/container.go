package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"jobhunter/internal/config"
	"jobhunter/internal/database"
	dbpostgres "jobhunter/internal/database/postgres"
	"jobhunter/internal/domain/ranking"
	"jobhunter/internal/domain/scoring"
	"jobhunter/internal/infrastructure/cache"
	"jobhunter/internal/infrastructure/mail"
	"jobhunter/internal/infrastructure/parser"
	"jobhunter/internal/pkg/managetoken"
	"jobhunter/internal/repository"
	"jobhunter/internal/scheduler"
	"jobhunter/internal/scraper"
	"jobhunter/internal/usecase"
	"jobhunter/internal/worker"
	"jobhunter/internal/ws"

	"github.com/google/uuid"
)

// Container wires every long-lived dependency of the server binary.
type Container struct {
	Config config.Config
	Logger *zap.Logger
	DB     database.DB
	Redis  *cache.Redis

	Submissions   usecase.SubmissionUsecase
	Subscriptions usecase.SubscriptionUsecase
	ManageTokens  managetoken.Service
	Hub           *ws.Hub
	Scheduler     *scheduler.Scheduler
}

// reporterAdapter closes the loop between the worker and the
// submission machine. It is late-bound because the usecase needs the
// worker as its trigger.
type reporterAdapter struct {
	uc usecase.SubmissionUsecase
}

func (a *reporterAdapter) Report(ctx context.Context, id uuid.UUID, status string, jobCount int, errMsg string) error {
	return a.uc.Report(ctx, id, status, jobCount, errMsg)
}

func NewContainer(cfg config.Config, logger *zap.Logger) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	rdb, err := cache.NewRedis(cfg.Redis, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	subRepo := repository.NewPostgresSubmissionRepository(db)
	resultRepo := repository.NewPostgresResultRepository(db)
	subscriptionRepo := repository.NewPostgresSubscriptionRepository(db)

	resumeParser := parser.NewOpenAIParser(cfg.OpenAI.APIKey, cfg.OpenAI.Model, nil)
	mailer := mail.NewSMTPMailer(cfg.SMTP)

	sites := []scraper.Site{
		scraper.NewIndeedSite(),
		scraper.NewSeekSite(),
	}
	if cfg.Scraper.Headless {
		sites = append(sites, scraper.NewLinkedInSite())
	}
	runner := scraper.NewRunner(logger, sites...)

	pipeline := ranking.NewPipeline(scoring.NewEngine(scoring.DefaultTables()))
	manageTokens := managetoken.NewHMACService(cfg.Worker.ManageTokenSecret, cfg.Worker.ManageTokenTTL)

	reporter := &reporterAdapter{}
	wk := worker.New(runner, pipeline, resultRepo, subRepo, reporter, mailer, logger, worker.Config{
		RecencyHours:     cfg.Scraper.RecencyHours,
		ResultsPerSearch: cfg.Scraper.ResultsPerSearch,
		PublicBaseURL:    cfg.Worker.PublicBaseURL,
	}).WithManageLinks(manageTokens)

	hub := ws.NewHub(logger)
	notifier := ws.NewNotifier(hub)

	submissionUC := usecase.NewSubmissionUsecase(
		subRepo, resultRepo, rdb, resumeParser, wk, notifier, logger, cfg.Worker.RateLimitPerDay)
	reporter.uc = submissionUC

	subscriptionUC := usecase.NewSubscriptionUsecase(subscriptionRepo, wk, logger)

	return &Container{
		Config:        cfg,
		Logger:        logger,
		DB:            db,
		Redis:         rdb,
		Submissions:   submissionUC,
		Subscriptions: subscriptionUC,
		ManageTokens:  manageTokens,
		Hub:           hub,
		Scheduler:     scheduler.New(subscriptionUC, logger, time.Hour),
	}, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
