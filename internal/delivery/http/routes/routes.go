package routes

import (
	"github.com/gofiber/fiber/v3"

	"jobhunter/internal/delivery/http/handler"
	"jobhunter/internal/ws"
)

type Registry struct {
	health        *handler.HealthHandler
	submissions   *handler.SubmissionHandler
	subscriptions *handler.SubscriptionHandler
	wsHandler     *ws.Handler
}

func NewRegistry(
	health *handler.HealthHandler,
	submissions *handler.SubmissionHandler,
	subscriptions *handler.SubscriptionHandler,
	wsHandler *ws.Handler,
) *Registry {
	return &Registry{
		health:        health,
		submissions:   submissions,
		subscriptions: subscriptions,
		wsHandler:     wsHandler,
	}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.health.RegisterRoutes(app)

	api := app.Group("/api")
	v1 := api.Group("/v1")
	r.submissions.RegisterRoutes(v1.Group("/submissions"))
	r.subscriptions.RegisterRoutes(v1.Group("/subscriptions"))

	if r.wsHandler != nil {
		app.Get("/ws/submissions", r.wsHandler.HandleStatusWS)
	}
}
