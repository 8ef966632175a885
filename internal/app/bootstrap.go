package app

import (
	"context"
	"fmt"
	"strings"

	"i4e-backend/internal/config"
	"i4e-backend/internal/delivery/http/handler"
	"i4e-backend/internal/delivery/http/middleware"
	"i4e-backend/internal/delivery/http/routes"
	"i4e-backend/internal/pkg/logger"
	"i4e-backend/internal/ws"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
)

const bodyLimit = 25 << 20

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// New builds the HTTP server on top of an already wired container.
func New(c *Container) *App {
	f := fiber.New(fiber.Config{
		AppName:   c.Config.App.AppName,
		BodyLimit: bodyLimit,
	})

	registerGlobalMiddleware(f, c.Config, c.Log)

	reg := &routes.Registry{
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"postgres": c.DB,
			"redis":    c.Redis,
		}),
		Auth:          handler.NewAuthHandler(c.Auth),
		Users:         handler.NewUserHandler(c.Users),
		CareerLibrary: handler.NewCareerLibraryHandler(c.Careers, c.References, c.BulkUpload, c.Search),
		Transactions:  handler.NewTransactionHandler(c.Transactions),
		IngestWS:      ws.NewHandler(c.Hub, c.JWT, c.Log),
		AuthMW:        middleware.NewAuthMiddleware(c.JWT),
	}
	reg.Register(f)

	return &App{Fiber: f, Container: c}
}

// Bootstrap connects every dependency, starts the websocket hub and returns
// the app with its cleanup.
func Bootstrap(ctx context.Context, cfg config.Config, log *logger.Logger) (*App, func() error, error) {
	c, err := NewContainer(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	go c.Hub.Run(hubCtx)

	cleanup := func() error {
		stopHub()
		return c.Close()
	}
	return New(c), cleanup, nil
}

func registerGlobalMiddleware(app *fiber.App, cfg config.Config, log *logger.Logger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(log).Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins(cfg.App.CORSOrigins),
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
	}))
	app.Use(middleware.NewErrorMiddleware(log).Middleware())
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
