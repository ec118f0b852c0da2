package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/yigit/unirecords/internal/app/models"
	"github.com/yigit/unirecords/internal/docs"
)

// SetupSwagger registers the generated API document and serves it with the
// Swagger UI under /swagger.
func SetupSwagger(router *gin.Engine) error {
	if err := docs.Register(models.All()); err != nil {
		return err
	}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.URL("/swagger/doc.json"),
		ginSwagger.DefaultModelsExpandDepth(1),
	))
	return nil
}
