package routers

import (
	"Casework/cmd"
	"github.com/gofiber/fiber/v2"
)

func SetupAnnotationRouter(app *fiber.App, server *cmd.Server) {
	annotationHandler := server.AnnotationHandler
	app.Get("/pages/:id/annotations", annotationHandler.ListPageAnnotations)
	app.Post("/pages/:id/annotations", annotationHandler.SavePageAnnotations)
	app.Get("/pages/:id/annotations/history", annotationHandler.PageHistory)
	app.Delete("/annotations/:id", annotationHandler.DeleteAnnotation)
}
