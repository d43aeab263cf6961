package middleware

import (
	"context"
	"io"
	"strings"

	"github.com/OFFIS-RIT/synthetix/backend/internal/queue"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/ai"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/extract"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/grade"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/layout"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/loader"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type AppUser struct {
	UserID      string
	Role        string
	Permissions []string
}

// Uploader stores uploaded documents for the worker.
type Uploader interface {
	PutFile(ctx context.Context, path, name, key string, file io.ReadSeeker) (string, error)
}

// App holds the process scoped clients shared by all requests. Store and
// Queue are optional; without them asynchronous jobs are unavailable.
// Authentication is disabled when neither Key nor MasterAPIKey is set.
type App struct {
	AiClient   ai.GraphAIClient
	Extractors *extract.Registry
	Scorers    grade.Scorers
	Engine     *layout.Engine
	Viewport   layout.Viewport
	Options    extract.Options
	Web        loader.FileLoader
	Store      Uploader
	Queue      queue.Publisher

	Key          jwt.Keyfunc
	MasterAPIKey string

	// AllowedOrigins is the CORS allow-list, also applied to WebSocket
	// handshakes. An empty list or "*" allows every origin.
	AllowedOrigins []string
}

// OriginAllowed reports whether a browser origin may call the API. Requests
// without an Origin header do not come from a browser page and pass.
func (a *App) OriginAllowed(origin string) bool {
	if origin == "" || len(a.AllowedOrigins) == 0 {
		return true
	}
	origin = strings.TrimSuffix(origin, "/")
	for _, allowed := range a.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(strings.TrimSuffix(allowed, "/"), origin) {
			return true
		}
	}
	return false
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
