package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/synthetix/backend/internal/config"
	"github.com/OFFIS-RIT/synthetix/backend/internal/queue"
	mid "github.com/OFFIS-RIT/synthetix/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/synthetix/backend/internal/storage"
	"github.com/OFFIS-RIT/synthetix/backend/internal/util"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/ai"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/extract"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/extract/lexical"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/grade"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/graph"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/loader/web"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/logger"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// New creates the echo instance with all middleware and routes.
func New(app *mid.App) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: app.AllowedOrigins,
	}))
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("64M"))

	RegisterRoutes(e)
	return e
}

// NewApp builds the process scoped clients from cfg. The AI strategies are
// registered only with an AI client.
func NewApp(cfg *config.Config, aiClient ai.GraphAIClient) (*mid.App, error) {
	app := &mid.App{
		AiClient:   aiClient,
		Extractors: extract.NewRegistry(lexical.NewExtractor()),
		Scorers:    grade.Scorers{grade.DefaultScorer: grade.NewLexicalScorer()},
		Engine:     cfg.Engine(),
		Viewport:   cfg.Viewport,
		Options:    cfg.ExtractOptions(nil),
		Web:        web.NewWebFileLoader(),

		AllowedOrigins: []string{"*"},
	}

	if aiClient != nil {
		params := cfg.GraphParams()
		params.AIClient = aiClient
		graphClient, err := graph.NewGraphClient(params)
		if err != nil {
			return nil, err
		}
		app.Extractors.Register(graphClient)
		app.Scorers["ai"] = grade.NewAIScorer(aiClient, cfg.Grade.MaxRetries)
	}

	return app, nil
}

func Init() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.Path())
	if err != nil {
		logger.Fatal("Failed to load config", "err", err)
	}

	aiClient, err := mid.NewAIClientFromEnv()
	if err != nil {
		logger.Fatal("Failed to create AI client", "err", err)
	}

	app, err := NewApp(cfg, aiClient)
	if err != nil {
		logger.Fatal("Failed to create app", "err", err)
	}

	if authURL := util.GetEnv("AUTH_URL"); authURL != "" {
		k, err := keyfunc.NewDefaultCtx(ctx, []string{authURL + "/jwks"})
		if err != nil {
			logger.Fatal("Failed to load jwks keys", "err", err)
		}
		app.Key = k.Keyfunc
	}
	app.MasterAPIKey = util.GetEnv("MASTER_API_KEY")
	app.AllowedOrigins = util.GetEnvList("CORS_ORIGINS", []string{"*"})

	if util.GetEnv("AWS_BUCKET") != "" {
		store, err := storage.NewStoreFromEnv(ctx)
		if err != nil {
			logger.Fatal("Failed to create S3 client", "err", err)
		}
		app.Store = store
	}

	if util.GetEnv("RABBITMQ_HOST") != "" {
		conn, err := queue.Connect(ctx)
		if err != nil {
			logger.Fatal("Failed to connect to RabbitMQ", "err", err)
		}
		defer conn.Close()

		ch, err := conn.Channel()
		if err != nil {
			logger.Fatal("Failed to open channel", "err", err)
		}
		defer ch.Close()

		if err := queue.SetupQueues(ch, queue.ExtractQueue); err != nil {
			logger.Fatal("Failed to set up queues", "err", err)
		}
		app.Queue = ch
	}

	e := New(app)

	go func() {
		port := util.GetEnvString("PORT", "8080")
		logger.Info("Starting server", "port", port, "strategies", app.Extractors.Names())
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
