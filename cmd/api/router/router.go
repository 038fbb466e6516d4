package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"journal-summary/cmd/api/dto"
	"journal-summary/cmd/api/handlers"
	"journal-summary/cmd/api/middleware"
	"journal-summary/config"
	_ "journal-summary/docs"
)

func New(svc handlers.SummaryAPI, apiSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		config.Logger.Errorf("summary processing failed: %v", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: "Internal Server Error"})
	}))
	r.Use(middleware.RequestTrace())

	r.GET("/", handlers.RootHandler)
	r.GET("/health", handlers.HealthHandler(svc))

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api", middleware.APIKeyAuthMiddleware(apiSecret))
	{
		api.POST("/summary", handlers.SummaryHandler(svc))
	}

	return r
}
