package stub

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/PavaniTiago/jurista-ai-frontend/pkg/logger"
)

// NewEngine wires the stub's routes. Every /api route requires a bearer
// token; any non-empty token passes, since the stub has no identity
// provider behind it.
func NewEngine(fixtures *Fixtures, log logger.Logger) *gin.Engine {
	h := NewHandlers(fixtures, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.Use(requireBearer())
	{
		api.POST("/documents", h.UploadDocument)
		api.GET("/documents", h.ListDocuments)
		api.GET("/documents/:id", h.GetDocument)
		api.DELETE("/documents/:id", h.DeleteDocument)
		api.POST("/query", h.QueryDocument)
	}

	return r
}

func corsMiddleware() gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}

	return cors.New(config)
}

func requireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if auth == "" || token == auth || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error: "Missing or invalid authorization token",
			})
			return
		}
		c.Next()
	}
}
