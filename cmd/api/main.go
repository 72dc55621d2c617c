package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/phishsim/gateway/internal/audit"
	"github.com/phishsim/gateway/internal/config"
	"github.com/phishsim/gateway/internal/handlers"
	"github.com/phishsim/gateway/internal/mailer"
	"github.com/phishsim/gateway/internal/ratelimit"
	"github.com/phishsim/gateway/internal/repository"
	"github.com/phishsim/gateway/internal/services"
	xhttp "github.com/phishsim/gateway/pkg/http"
	"github.com/phishsim/gateway/pkg/logger"
	"github.com/phishsim/gateway/pkg/pg"
	"github.com/phishsim/gateway/pkg/prom"
	"github.com/phishsim/gateway/pkg/redis"
)

func main() {
	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}
	cfg := config.Get()

	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 5))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     cfg.PostgresReadUser,
		Host:     cfg.PostgresReadHost,
		Port:     cfg.PostgresReadPort,
		Password: cfg.PostgresReadPassword,
		Database: cfg.PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     cfg.PostgresWriteUser,
		Host:     cfg.PostgresWriteHost,
		Port:     cfg.PostgresWritePort,
		Password: cfg.PostgresWritePassword,
		Database: cfg.PostgresWriteDatabase,
	}

	pgDebug := cfg.AppEnv == "dev"
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	// redis is optional: without it the rate limiter falls back to the
	// in-process backend and the audit stream is disabled
	var redisAdap redis.RedisAdapter
	if cfg.RedisAddr != "" {
		redisAdap, err = redis.NewRedisAdapter("default", cfg.RedisUniversalKeyPrefix, &redis.Options{
			Addrs:      []string{cfg.RedisAddr},
			ClientName: "default",
			DB:         cfg.RedisDatabase,
			Username:   cfg.RedisUsername,
			Password:   cfg.RedisPassword,
		})
		if err != nil {
			logger.Error("failed connecting to redis", "error", err)
			return
		}
	}

	var limiter handlers.Limiter
	if cfg.RateLimitBackend == "redis" && redisAdap != nil {
		limiter = ratelimit.NewRedisLimiter(redisAdap, cfg.RateLimitPoints, cfg.RateLimitWindow)
	} else {
		memLimiter := ratelimit.NewMemoryLimiter(cfg.RateLimitPoints, cfg.RateLimitWindow)
		go func() {
			for range time.Tick(cfg.RateLimitWindow) {
				memLimiter.Sweep()
			}
		}()
		limiter = memLimiter
	}

	var auditor *audit.Publisher
	if redisAdap != nil {
		auditor = audit.NewPublisher(redisAdap, audit.Options{
			Stream: cfg.AuditStreamName,
			MaxLen: cfg.AuditStreamMaxLen,
		})
		defer auditor.Stop()
	}

	if cfg.AppDebugMetricsAddr != "" {
		hostname, _ := os.Hostname()
		if err := prom.Create(hostname, cfg.AppEnv, cfg.PromNamespace); err != nil {
			logger.Error("failed to register metrics", "error", err)
		}
		go prom.ListenAndServer(cfg.AppDebugMetricsAddr, cfg.AppDebugMetricsURI)
	}

	transport := mailer.NewSMTPTransport(mailer.Options{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})

	recipientRepo := repository.NewRecipientRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	clickRepo := repository.NewClickEventRepository(db)

	recipientService := services.NewRecipientService(recipientRepo)
	campaignService := services.NewCampaignService(
		campaignRepo, recipientRepo, clickRepo, transport,
		cfg.TrackingBaseURL, cfg.SendDelay,
	)
	reportService := services.NewReportService(campaignRepo, recipientRepo, clickRepo)

	var trackingService *services.TrackingService
	if auditor != nil {
		trackingService = services.NewTrackingService(clickRepo, auditor)
	} else {
		trackingService = services.NewTrackingService(clickRepo, nil)
	}

	recipientHandler := handlers.NewRecipientHandler(recipientService)
	campaignHandler := handlers.NewCampaignHandler(campaignService, reportService)
	reportHandler := handlers.NewReportHandler(reportService)
	trackingHandler := handlers.NewTrackingHandler(trackingService, limiter)
	healthHandler := handlers.NewHealthHandler(db)

	g := s.Router.Group("/api")
	handlers.RegisterRecipientRoutes(g, recipientHandler)
	handlers.RegisterCampaignRoutes(g, campaignHandler)
	handlers.RegisterReportRoutes(g, reportHandler)
	handlers.RegisterTrackingRoutes(s.Router, trackingHandler)
	handlers.RegisterHealthRoutes(s.Router, g, healthHandler)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.ListenAndServe(cfg.HttpListenAddr); err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	<-c
	s.Shutdown()
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
