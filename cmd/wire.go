package cmd

import (
	"Casework/internal/config"
	"Casework/internal/handlers"
	"Casework/internal/services"
	"gorm.io/gorm"
)

type Server struct {
	Configuration     *config.Configuration
	DB                *gorm.DB
	TreeHandler       *handlers.TreeHandler
	AnnotationHandler *handlers.AnnotationHandler
	LogService        services.LogService
	JanitorService    *services.Janitor
}

func NewServer(
	configuration *config.Configuration,
	db *gorm.DB,
	treeHandler *handlers.TreeHandler,
	annotationHandler *handlers.AnnotationHandler,
	logService services.LogService,
	janitorService *services.Janitor,
) *Server {
	return &Server{
		Configuration:     configuration,
		DB:                db,
		TreeHandler:       treeHandler,
		AnnotationHandler: annotationHandler,
		LogService:        logService,
		JanitorService:    janitorService,
	}
}
