package routes

import (
	"context"
	"net/http"

	"github.com/OFFIS-RIT/synthetix/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/synthetix/backend/internal/server/util"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/extract"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// ExtractGraphHandler extracts a graph from an upload, a URL or inline text
// and streams the progress as server sent events. The last event carries
// the graph and its scene, or an error.
func ExtractGraphHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	data := new(sourceRequest)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	ex, err := app.Extractors.Get(data.Strategy)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	text, filename, err := loadSource(ctx, app, *data, formFile(c))
	if err != nil {
		return c.JSON(statusOf(err), map[string]string{"error": err.Error()})
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)

	broken := false
	for ev := range extract.Stream(ctx, ex, text, filename, app.Options) {
		if broken {
			continue
		}
		if err := util.WriteSSE(res, util.PayloadFor(ev, app.Engine, app.Viewport)); err != nil {
			logger.Debug("[Server] Client left extraction stream", "err", err)
			broken = true
		}
	}
	return nil
}

// ExtractGraphWSHandler is the WebSocket variant of ExtractGraphHandler.
// The client sends one JSON request naming a URL or inline text and
// receives the stream payloads as JSON text messages. The server closes
// the connection after the terminal payload.
func ExtractGraphWSHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	// Handshakes carry the bearer token in a header, so the origin check
	// follows the CORS allow-list instead of gorilla's same-host default.
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return app.OriginAllowed(r.Header.Get("Origin"))
		},
	}
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Debug("[Server] WebSocket upgrade failed", "err", err)
		return nil
	}
	defer conn.Close()

	var req sourceRequest
	if err := conn.ReadJSON(&req); err != nil {
		closeWithError(conn, "Invalid request body")
		return nil
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()
	go func() {
		// the client has nothing more to say; a failed read means it left
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	ex, err := app.Extractors.Get(req.Strategy)
	if err != nil {
		closeWithError(conn, err.Error())
		return nil
	}
	text, filename, err := loadSource(ctx, app, req, nil)
	if err != nil {
		closeWithError(conn, err.Error())
		return nil
	}

	broken := false
	for ev := range extract.Stream(ctx, ex, text, filename, app.Options) {
		if broken {
			continue
		}
		if err := conn.WriteJSON(util.PayloadFor(ev, app.Engine, app.Viewport)); err != nil {
			logger.Debug("[Server] Client left extraction stream", "err", err)
			broken = true
		}
	}

	if !broken {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
	return nil
}

func closeWithError(conn *websocket.Conn, msg string) {
	_ = conn.WriteJSON(util.StreamPayload{Error: msg})
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
