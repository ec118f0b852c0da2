package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/unirecords/internal/app/controllers"
	"github.com/yigit/unirecords/internal/app/models/dto"
	"github.com/yigit/unirecords/internal/db"
	"github.com/yigit/unirecords/internal/middleware"
	"github.com/yigit/unirecords/internal/pkg/querylog"
)

// SetupRouter registers the root, health and resource routes.
func SetupRouter(
	router *gin.Engine,
	tracer *querylog.Tracer,
	ctrls *controllers.Controllers,
	database *db.Database,
) {
	router.GET("/", middleware.Untraced(func(*gin.Context) (int, any) {
		return http.StatusOK, dto.SuccessResponse{Message: "Backend server is running!"}
	}))

	api := router.Group("/api")
	api.GET("/health", middleware.Untraced(healthHandler(database)))

	for _, rc := range ctrls.All() {
		resource := api.Group("/" + rc.Schema().Plural)
		{
			resource.GET("/", middleware.Traced(tracer, rc.List))
			resource.POST("/", middleware.Traced(tracer, rc.Create))
			resource.GET("/:"+controllers.KeyParam, middleware.Traced(tracer, rc.Get))
			resource.PUT("/:"+controllers.KeyParam, middleware.Traced(tracer, rc.Update))
			resource.DELETE("/:"+controllers.KeyParam, middleware.Traced(tracer, rc.Delete))
		}
	}

	router.NoRoute(middleware.NotFound())
	router.NoMethod(middleware.MethodNotAllowed())
}

// MsgStoreUnavailable is reported by the health check when the store does not
// answer a ping.
const MsgStoreUnavailable = "Database unavailable"

func healthHandler(database *db.Database) func(*gin.Context) (int, any) {
	return func(c *gin.Context) (int, any) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := database.Ping(ctx); err != nil {
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("Health check failed")
			return http.StatusServiceUnavailable, dto.ErrorResponse{Error: MsgStoreUnavailable}
		}
		return http.StatusOK, dto.HealthResponse{Status: "ok"}
	}
}
