package components

import (
	"facility-booking/internal/handler"
	"facility-booking/internal/handler/api"
	"facility-booking/internal/handler/middleware"
	"facility-booking/internal/pkg/config"
	"facility-booking/internal/pkg/jwt"
	"facility-booking/internal/usecase/commands"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewReservationHandler,
		api.NewReviewHandler,
		func(cmds commands.PaymentCommands, cfg config.Config) *api.PaymentWebhookHandler {
			return api.NewPaymentWebhookHandler(cmds, cfg.Webhook)
		},
		api.NewAdminHandler,
		func(svc *jwt.Service) *middleware.AuthMiddleware {
			return middleware.NewAuthMiddleware(svc)
		},
		func(cfg config.Config) *middleware.RateLimiter {
			return middleware.NewRateLimiter(cfg.RateLimit)
		},
		func(
			reservation *api.ReservationHandler,
			review *api.ReviewHandler,
			webhook *api.PaymentWebhookHandler,
			admin *api.AdminHandler,
		) handler.Handlers {
			return handler.Handlers{Reservation: reservation, Review: review, Webhook: webhook, Admin: admin}
		},
	),
	fx.Invoke(handler.NewRouter),
)
