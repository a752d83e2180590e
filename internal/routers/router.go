package routers

import (
	"Casework/cmd"
	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(app *fiber.App, server *cmd.Server) {
	SetupTreeRouter(app, server)
	SetupAnnotationRouter(app, server)
	SetupJanitorRouter(app, server)
	SetupMetricsRouter(app)
}
