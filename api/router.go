// Package api contains all endpoints available
package api

import (
	"fmt"
	"time"

	"postframe/queue-api/cdn"
	"postframe/queue-api/config"
	"postframe/queue-api/db"
	"postframe/queue-api/middleware"
	"postframe/queue-api/recordstore"
	"postframe/queue-api/security"
	"postframe/queue-api/service"
	"postframe/queue-api/storage"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var store = persist.NewMemoryStore(time.Minute)

type API struct {
	Cfg      *config.Config
	DB       *gorm.DB
	Router   *gin.Engine
	Argon    *security.ArgonHash
	Pipeline *service.UploadPipeline
	Queue    *service.QueueService
	Mailer   *service.Mailer
}

func NewRouter(cfg *config.Config) (*API, error) {
	a := &API{
		Cfg:    cfg,
		Argon:  security.New(),
		Mailer: service.NewMailer(cfg),
	}

	d, err := db.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	a.DB = d

	makeLogger(cfg.LogLevel)

	rs := recordstore.NewClient(cfg)
	a.Queue = service.NewQueueService(
		d,
		recordstore.NewQueueTable(rs, cfg.RecordStore.QueueTable),
		recordstore.NewNotificationTable(rs, cfg.RecordStore.NotificationsTable),
	)

	var uploader service.Uploader
	switch cfg.StorageType {
	case "s3":
		r2, err := storage.NewR2(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
		}
		uploader = r2
	default:
		uploader = cdn.New(cfg)
	}

	a.Pipeline = service.NewUploadPipeline(uploader, cfg.Upload.WarnSize)

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{cfg.Host.PublicURL, "http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	a.Router.MaxMultipartMemory = 5 << 20

	jwt := middleware.NewJWTMiddleware(cfg, d)
	authLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: 2,
		Burst:             5,
	})

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// HEAD /api/validate		-> Validates a JWT token
		main.HEAD("/validate", jwt, a.Validate)

		// POST /api/upload		-> Transcodes and pushes an image to the CDN
		main.POST("/upload", middleware.BodySizeLimiter(cfg.Upload.MaxSize+1<<20), a.Upload)
	}

	auth := main.Group("/auth", middleware.BodySizeLimiter(1<<20), authLimiter)
	{
		// POST /api/auth/login 	-> Logs in a user and returns a JWT cookie
		auth.POST("/login", a.UserLogin)

		// POST /api/auth/register 	-> Registers a new user
		auth.POST("/register", a.UserRegister)

		// POST /api/auth/reset/request	-> Mails a password reset link
		auth.POST("/reset/request", a.ResetRequest)

		// POST /api/auth/reset/confirm	-> Sets a new password from a reset token
		auth.POST("/reset/confirm", a.ResetConfirm)
	}

	invite := main.Group("/invite", middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/invite		-> Mails a workspace invite link
		invite.POST("", authLimiter, a.Invite)

		// GET /api/invite/accept	-> Redeems an invite token
		invite.GET("/accept", a.InviteAccept)
	}

	queue := main.Group("/airtable", middleware.BodySizeLimiter(1<<20))
	{
		// GET /api/airtable/queue	-> Returns a user's queue in priority order
		queue.GET("/queue", cacheFor(15), a.QueueFetch)

		// POST /api/airtable/queue/add	-> Registers an uploaded image in the queue
		queue.POST("/queue/add", a.QueueAdd)

		// POST /api/airtable/queue/reorder -> Rewrites the priorities of a user's queue
		queue.POST("/queue/reorder", a.QueueReorder)

		// POST /api/airtable/queue/delete -> Removes one queue record
		queue.POST("/queue/delete", a.QueueDelete)

		// POST /api/airtable/bank/move-to-queue -> Promotes a banked image into the queue
		queue.POST("/bank/move-to-queue", a.BankMoveToQueue)
	}

	return a, nil
}

func makeLogger(level string) {
	cfg := zap.NewDevelopmentConfig()

	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}
