package api

import (
	"net/http"

	"course_sales/internal/config"
	"course_sales/internal/sales"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// InitRoutes registers the middleware chain and the sales endpoints on the
// given Gin engine.
func InitRoutes(e *gin.Engine, salesService *sales.Service, logger *zap.Logger, corsCfg config.CORSConfig) {
	e.Use(
		requestIDMiddleware(),
		loggingMiddleware(logger),
		recoveryMiddleware(logger),
		corsMiddleware(corsCfg),
	)

	salesHandler := NewSalesHandler(salesService, logger)

	e.GET("/sales", salesHandler.handleListSales)
	e.POST("/sales", salesHandler.handleCreateSale)

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
}

// NewRouter returns a bare engine with all routes registered.
func NewRouter(salesService *sales.Service, logger *zap.Logger, corsCfg config.CORSConfig) *gin.Engine {
	e := gin.New()
	InitRoutes(e, salesService, logger, corsCfg)
	return e
}
