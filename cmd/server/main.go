package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/absensi-dev/absensi-api/internal/repository"
	"github.com/absensi-dev/absensi-api/internal/router"
	"github.com/absensi-dev/absensi-api/internal/service"
	"github.com/absensi-dev/absensi-api/pkg/cache"
	"github.com/absensi-dev/absensi-api/pkg/config"
	"github.com/absensi-dev/absensi-api/pkg/database"
	"github.com/absensi-dev/absensi-api/pkg/logger"
	"github.com/absensi-dev/absensi-api/pkg/netid"
	"github.com/absensi-dev/absensi-api/pkg/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()

	students := repository.NewStudentRepository(db)
	devices := repository.NewDeviceRepository(db)
	meetings := repository.NewMeetingRepository(db)
	attendances := repository.NewAttendanceRepository(db)
	scores := repository.NewScoreRepository(db)

	sessions := session.NewRedisStore(redisClient, cfg.Session.TTL, cfg.Admin.LoginTries)

	authService, err := service.NewAuthService(cfg.Admin, validate, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init auth service", "error", err)
	}

	deps := router.Deps{
		Config:       cfg,
		Logger:       logr,
		Sessions:     sessions,
		Registration: service.NewRegistrationService(devices, students, netid.NewARPResolver(), logr),
		Auth:         authService,
		Meetings:     service.NewMeetingService(meetings, attendances, logr),
		Directory:    service.NewDirectoryService(students, devices, attendances, meetings, scores, logr),
		Scores:       service.NewScoreService(scores, students, meetings, validate, logr),
		Imports:      service.NewImportService(students, cfg.Import.MaxRows, logr),
		Exports:      service.NewExportService(attendances, logr),
		Metrics:      service.NewMetricsService(),
	}

	r := router.New(deps)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
