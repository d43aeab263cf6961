package routes

import (
	"bytes"
	"net/http"

	"github.com/OFFIS-RIT/synthetix/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/common"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/layout"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/logger"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/scene"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/scene/echarts"

	"github.com/labstack/echo/v4"
)

type layoutBody struct {
	Graph          *common.Graph    `json:"graph" validate:"required"`
	SelectedNodeID string           `json:"selected_node_id"`
	Viewport       *layout.Viewport `json:"viewport"`
}

// bindLayout reads a layout request and composes its scene. Graphs above
// the engine's size bounds are rejected before any layout work is done.
func bindLayout(c echo.Context) (scene.Scene, int, string) {
	app := c.(*middleware.AppContext).App

	data := new(layoutBody)
	if err := c.Bind(data); err != nil {
		return scene.Scene{}, http.StatusBadRequest, "Invalid request body"
	}
	if err := c.Validate(data); err != nil {
		return scene.Scene{}, http.StatusBadRequest, "Invalid request body"
	}
	if err := app.Engine.Accepts(data.Graph); err != nil {
		logger.Warn("[Server] Rejected layout request", "err", err)
		return scene.Scene{}, http.StatusRequestEntityTooLarge, err.Error()
	}

	vp := app.Viewport
	if data.Viewport != nil && data.Viewport.Width > 0 && data.Viewport.Height > 0 {
		vp = *data.Viewport
	}
	return scene.Compose(data.Graph, data.SelectedNodeID, app.Engine, vp), http.StatusOK, ""
}

// LayoutHandler lays out a graph and returns the renderable scene.
func LayoutHandler(c echo.Context) error {
	s, status, msg := bindLayout(c)
	if status != http.StatusOK {
		return c.JSON(status, map[string]string{"error": msg})
	}
	return c.JSON(http.StatusOK, s)
}

// RenderHandler lays out a graph and returns it as an HTML page.
func RenderHandler(c echo.Context) error {
	s, status, msg := bindLayout(c)
	if status != http.StatusOK {
		return c.JSON(status, map[string]string{"error": msg})
	}

	var buf bytes.Buffer
	if err := echarts.Render(&buf, s); err != nil {
		logger.Error("[Server] Failed to render scene", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}
