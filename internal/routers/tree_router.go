package routers

import (
	"Casework/cmd"
	"github.com/gofiber/fiber/v2"
)

func SetupTreeRouter(app *fiber.App, server *cmd.Server) {
	treeHandler := server.TreeHandler
	app.Post("/projects", treeHandler.CreateProject)
	app.Get("/projects/:id/tree", treeHandler.GetTree)
	app.Put("/projects/:id/tree", treeHandler.SubmitTree)
	app.Delete("/nodes/:kind/:id", treeHandler.DeleteNode)
}
