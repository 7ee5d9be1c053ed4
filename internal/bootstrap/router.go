package bootstrap

import (
	"database/sql"

	httpapi "github.com/GoSim-25-26J-441/tagnet-backend/internal/api/http"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/api/http/middleware"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/logger"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/service"

	tagnethttp "github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/http"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	DB          *sql.DB
	Redis       *redis.Client
	Service     *service.GraphService
	Log         *logger.Logger
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(dep.Log))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, middleware.RequestIDHeader)
	corsCfg.ExposeHeaders = []string{middleware.RequestIDHeader}
	r.Use(cors.New(corsCfg))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")

	tagnethttp.New(dep.Service, dep.Log).Register(api)

	return r
}
