package components

import (
	"library-lending/internal/handler"
	"library-lending/internal/handler/api"
	"library-lending/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewRentalHandler,
		api.NewExtensionHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
