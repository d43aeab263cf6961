package server

import (
	"github.com/OFFIS-RIT/synthetix/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/synthetix/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Extraction routes
	apiRoutes.POST("/graphs", routes.ExtractGraphHandler, middleware.RequirePermission("graph.extract"))
	apiRoutes.GET("/graphs/ws", routes.ExtractGraphWSHandler, middleware.RequirePermission("graph.extract"))
	apiRoutes.POST("/jobs", routes.CreateJobHandler, middleware.RequirePermission("job.create"))

	// Scene routes
	apiRoutes.POST("/layout", routes.LayoutHandler)
	apiRoutes.POST("/render", routes.RenderHandler)

	// Learning routes
	apiRoutes.POST("/grade", routes.GradeHandler, middleware.RequirePermission("graph.grade"))
	apiRoutes.POST("/mastery", routes.MasteryHandler)
}
