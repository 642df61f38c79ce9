package app

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jingxin-guardian/core/internal/config"
	"github.com/jingxin-guardian/core/internal/middleware"
	"github.com/jingxin-guardian/core/internal/modules/ai"
	"github.com/jingxin-guardian/core/internal/modules/analysis"
	"github.com/jingxin-guardian/core/internal/modules/auth"
	"github.com/jingxin-guardian/core/internal/modules/configs"
	"github.com/jingxin-guardian/core/internal/modules/counsel"
	"github.com/jingxin-guardian/core/internal/modules/dashboard"
	"github.com/jingxin-guardian/core/internal/modules/exam"
	"github.com/jingxin-guardian/core/internal/modules/officer"
	"github.com/jingxin-guardian/core/internal/modules/psych"
	"github.com/jingxin-guardian/core/internal/modules/talk"
	"github.com/jingxin-guardian/core/internal/pkg/jwt"
	redispkg "github.com/jingxin-guardian/core/internal/pkg/redis"
	"github.com/jingxin-guardian/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App bundles the HTTP engine with the shared service dependencies.
type App struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Log    *zap.Logger
}

// New builds the fully wired application. redisClient may be nil; the
// rate-limit middleware is then skipped.
func New(cfg *config.AppConfig, db *gorm.DB, redisClient *redispkg.Client, log *zap.Logger) *App {
	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	jwt.SetSecret(cfg.JWTSecret)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.Logger(log))
	engine.Use(corsMiddleware(cfg))
	if redisClient != nil {
		engine.Use(middleware.RateLimit(redisClient.Raw()))
	}

	engine.NoRoute(func(c *gin.Context) { response.NotFoundMsg(c, "接口不存在") })
	engine.NoMethod(func(c *gin.Context) { response.MethodNotAllowed(c) })
	engine.HandleMethodNotAllowed = true

	registerRoutes(engine, db, log)

	return &App{Engine: engine, DB: db, Log: log}
}

func registerRoutes(engine *gin.Engine, db *gorm.DB, log *zap.Logger) {
	authMW := middleware.Auth(db)
	gateway := ai.NewGateway(log.Named("ai"))
	configsSvc := configs.NewService(db, log.Named("configs"))
	psychSvc := psych.NewService(db, gateway, configsSvc, log.Named("psych"))

	api := engine.Group("/api/v1")
	{
		auth.NewHandler(auth.NewService(db, log.Named("auth"))).RegisterRoutes(api, authMW)
		configs.NewHandler(configsSvc).RegisterRoutes(api, authMW)
		officer.NewHandler(officer.NewService(db)).RegisterRoutes(api, authMW)
		exam.NewHandler(exam.NewService(db, gateway, configsSvc, log.Named("exam"))).RegisterRoutes(api, authMW)
		psych.NewHandler(psychSvc).RegisterRoutes(api, authMW)
		counsel.NewHandler(counsel.NewService(db, gateway, configsSvc, psychSvc, log.Named("counsel"))).RegisterRoutes(api, authMW)
		talk.NewHandler(talk.NewService(db, log.Named("talk"))).RegisterRoutes(api, authMW)
		analysis.NewHandler(analysis.NewService(db, gateway, configsSvc, log.Named("analysis"))).RegisterRoutes(api, authMW)
		dashboard.NewHandler(dashboard.NewService(db)).RegisterRoutes(api, authMW)
	}
}

func corsMiddleware(cfg *config.AppConfig) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}

	if len(cfg.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
		return cors.New(corsCfg)
	}

	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[strings.TrimRight(strings.ToLower(o), "/")] = true
	}
	corsCfg.AllowOriginFunc = func(origin string) bool {
		return allowed[strings.TrimRight(strings.ToLower(origin), "/")]
	}
	return cors.New(corsCfg)
}
