package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/absensi-dev/absensi-api/internal/handler"
	"github.com/absensi-dev/absensi-api/internal/middleware"
	"github.com/absensi-dev/absensi-api/internal/service"
	"github.com/absensi-dev/absensi-api/pkg/config"
	"github.com/absensi-dev/absensi-api/pkg/logger"
	reqidmiddleware "github.com/absensi-dev/absensi-api/pkg/middleware/requestid"
	"github.com/absensi-dev/absensi-api/pkg/session"
)

// Deps collects everything the router wires together.
type Deps struct {
	Config       *config.Config
	Logger       *zap.Logger
	Sessions     session.Store
	Registration *service.RegistrationService
	Auth         *service.AuthService
	Meetings     *service.MeetingService
	Directory    *service.DirectoryService
	Scores       *service.ScoreService
	Imports      *service.ImportService
	Exports      *service.ExportService
	Metrics      *service.MetricsService
}

// New builds the Gin engine with all routes registered.
func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.Logger))
	r.Use(middleware.Metrics(d.Metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	authHandler := handler.NewAuthHandler(d.Auth, d.Metrics)
	registrationHandler := handler.NewRegistrationHandler(d.Registration)
	meetingHandler := handler.NewMeetingHandler(d.Meetings, d.Metrics)
	directoryHandler := handler.NewDirectoryHandler(d.Directory)
	scoreHandler := handler.NewScoreHandler(d.Scores)
	importHandler := handler.NewImportHandler(d.Imports)
	exportHandler := handler.NewExportHandler(d.Exports)

	api := r.Group(d.Config.APIPrefix)
	api.Use(middleware.Session(d.Sessions, d.Registration, d.Config.Session, d.Logger))

	// Student-facing surface, scoped to the caller's own session.
	api.GET("/register", registrationHandler.Register)
	api.GET("/whoami", registrationHandler.WhoAmI)
	api.GET("/attendance", meetingHandler.Attend)

	// Get-by-id is self-or-admin; the ownership check lives in the service.
	api.GET("/students/:id", directoryHandler.GetStudent)
	api.GET("/devices/:id", directoryHandler.GetDevice)
	api.GET("/attendances/:id", directoryHandler.GetAttendance)
	api.GET("/scores/:id", directoryHandler.GetScore)

	// The login endpoints honor the localhost gate but not the admin gate.
	login := api.Group("", middleware.LocalOnly(d.Config.Admin.FromLocalhost))
	login.POST("/login", authHandler.Login)
	login.GET("/can_login", authHandler.CanLogin)

	admin := api.Group("", middleware.LocalOnly(d.Config.Admin.FromLocalhost), middleware.Admin())
	admin.GET("/students", directoryHandler.ListStudents)
	admin.GET("/devices", directoryHandler.ListDevices)
	admin.GET("/attendances", directoryHandler.ListAttendances)
	admin.GET("/meetings", directoryHandler.ListMeetings)
	admin.GET("/meetings/:id", directoryHandler.GetMeeting)
	admin.GET("/scores", directoryHandler.ListScores)
	admin.GET("/current_meeting", meetingHandler.Current)
	admin.POST("/current_meeting", meetingHandler.Start)
	admin.DELETE("/current_meeting", meetingHandler.End)
	admin.POST("/score", scoreHandler.Upsert)
	admin.POST("/import/students", importHandler.Students)
	if d.Config.Exports.Enabled {
		admin.GET("/export/attendance", exportHandler.Attendance)
	}

	return r
}
