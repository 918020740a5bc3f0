package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"

	"sitesync-media/internal/handlers"
	"sitesync-media/internal/middleware"
	"sitesync-media/internal/utils"
)

type Deps struct {
	Admin         *handlers.AdminHandler
	Media         *handlers.MediaHandler
	Session       fiber.Handler
	GlobalLimiter *middleware.RateLimiter
	LoginLimiter  *middleware.RateLimiter
	CORSOrigins   string
	JSONLimit     int
}

func Setup(app *fiber.App, d Deps) {
	app.Use(fiberrecover.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     d.CORSOrigins,
		AllowCredentials: true,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Content-Type, Authorization",
	}))
	app.Use(d.GlobalLimiter.Handler())

	app.Get("/", d.Media.Health)

	app.Post("/login", d.LoginLimiter.Handler(), middleware.JSONBodyLimit(d.JSONLimit), d.Admin.Login)
	app.Get("/is-auth", d.Session, d.Admin.IsAuth)
	app.Post("/logout", d.Session, d.Admin.Logout)

	app.Post("/upload", d.Session, d.Media.Upload)
	app.Get("/verticals", d.Media.Verticals)
	app.Get("/media", d.Media.AllMedia)
	app.Get("/media/:vertical", d.Media.ByVertical)

	app.Use(func(c *fiber.Ctx) error {
		return utils.JSONError(c, fiber.StatusNotFound, "Route not found")
	})
}
