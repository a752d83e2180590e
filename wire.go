//go:build wireinject
// +build wireinject

package main

import (
	"Casework/cmd"
	"Casework/database"
	"Casework/internal/config"
	"Casework/internal/handlers"
	"Casework/internal/repository"
	"Casework/internal/services"
	"github.com/google/wire"
)

const configurationFile = "casework.yaml"

func Provider() (*config.Configuration, error) {
	return config.LoadConfiguration(configurationFile)
}

func InitializeServer() (*cmd.Server, error) {
	wire.Build(
		cmd.NewServer,
		Provider,
		database.SetupDatabase,
		repository.NewProjectRepository,
		repository.NewPageRepository,
		repository.NewCatalogRepository,
		repository.NewHierarchyRepository,
		repository.NewAnnotationRepository,
		services.NewLogService,
		services.NewCatalogLookup,
		services.NewAnnotationCounter,
		services.NewReconcileService,
		services.NewTreeService,
		services.NewProjectService,
		services.NewAnnotationService,
		services.NewJanitorService,
		handlers.NewTreeHandler,
		handlers.NewAnnotationHandler,
	)
	return nil, nil
}
