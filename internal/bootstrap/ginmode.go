package bootstrap

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// SetGinMode maps APP_ENV onto gin's modes; unknown values keep debug.
func SetGinMode(env string) {
	switch strings.ToLower(env) {
	case "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
}
