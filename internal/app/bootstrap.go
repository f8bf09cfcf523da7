package app

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"

	"jobhunter/internal/delivery/http/handler"
	"jobhunter/internal/delivery/http/middleware"
	"jobhunter/internal/delivery/http/routes"
	"jobhunter/internal/ws"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// Bootstrap builds the HTTP app around an already-wired container and
// starts the background hub and scheduler loops.
func Bootstrap(c *Container) *App {
	f := fiber.New(fiber.Config{
		AppName:   c.Config.App.AppName,
		BodyLimit: 10 * 1024 * 1024,
	})

	f.Use(middleware.NewAccessLogMiddleware(c.Logger).Middleware())
	f.Use(middleware.NewErrorMiddleware(c.Logger).Middleware())

	workerAuth := middleware.NewWorkerAuthMiddleware(c.Config.Worker.SharedSecret)
	registry := routes.NewRegistry(
		handler.NewHealthHandler(c.DB),
		handler.NewSubmissionHandler(c.Submissions, workerAuth),
		handler.NewSubscriptionHandler(c.Subscriptions, c.Submissions, c.ManageTokens),
		ws.NewHandler(c.Hub, c.Logger),
	)
	registry.Register(f)

	go c.Hub.Run()

	return &App{Fiber: f, Container: c}
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
