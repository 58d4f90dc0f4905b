package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"library-lending/internal/domain/user"
	"library-lending/internal/handler/api"
	"library-lending/internal/handler/middleware"
	"library-lending/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	authHandler *api.AuthHandler,
	rentalHandler *api.RentalHandler,
	extensionHandler *api.ExtensionHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, authHandler, rentalHandler, extensionHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	authHandler *api.AuthHandler,
	rentalHandler *api.RentalHandler,
	extensionHandler *api.ExtensionHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	librarianOnly := authMiddleware.RequireRoleAtLeast(user.RoleLibrarian)

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/login", Handler: authHandler.Login},
				{Method: http.MethodPost, Path: "/refresh", Handler: authHandler.Refresh},
				{Method: http.MethodPost, Path: "/register", Handler: authHandler.Register},
			})

			authRequired := auth.Group("")
			authRequired.Use(authMiddleware.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodPost, Path: "/logout", Handler: authHandler.Logout},
				{Method: http.MethodGet, Path: "/me", Handler: authHandler.Me},
			})
		}

		rentals := apiGroup.Group("/rentals")
		rentals.Use(authMiddleware.RequireAuth())
		{
			addRoutes(rentals, []route{
				{Method: http.MethodPost, Path: "", Handler: rentalHandler.Checkout},
				{Method: http.MethodGet, Path: "", Handler: rentalHandler.ListMine},
				{Method: http.MethodGet, Path: "/active", Handler: rentalHandler.ListAllActive, Mw: []gin.HandlerFunc{librarianOnly}},
				{Method: http.MethodGet, Path: "/overdue", Handler: rentalHandler.ListOverdue, Mw: []gin.HandlerFunc{librarianOnly}},
				{Method: http.MethodGet, Path: "/:id", Handler: rentalHandler.GetRental},
				{Method: http.MethodPost, Path: "/:id/return", Handler: rentalHandler.Return},
				{Method: http.MethodPost, Path: "/:id/extend", Handler: rentalHandler.Extend},
			})
		}

		extensions := apiGroup.Group("/extensions")
		extensions.Use(authMiddleware.RequireAuth())
		{
			addRoutes(extensions, []route{
				{Method: http.MethodGet, Path: "", Handler: extensionHandler.ListMine},
				{Method: http.MethodGet, Path: "/pending", Handler: extensionHandler.ListPending, Mw: []gin.HandlerFunc{librarianOnly}},
				{Method: http.MethodGet, Path: "/pending/count", Handler: extensionHandler.PendingCount, Mw: []gin.HandlerFunc{librarianOnly}},
				{Method: http.MethodGet, Path: "/:id", Handler: extensionHandler.GetRequest},
				{Method: http.MethodPost, Path: "/:id/approve", Handler: extensionHandler.Approve, Mw: []gin.HandlerFunc{librarianOnly}},
				{Method: http.MethodPost, Path: "/:id/reject", Handler: extensionHandler.Reject, Mw: []gin.HandlerFunc{librarianOnly}},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
