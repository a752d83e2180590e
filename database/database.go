package database

import (
	"Casework/internal/config"
	"Casework/internal/models"
	"errors"
	"fmt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"log"
	"os"
)

// Models lists every table in dependency order for AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&models.Project{},
		&models.PdfPage{},
		&models.CatalogItem{},
		&models.Room{},
		&models.Location{},
		&models.CabinetRun{},
		&models.Cabinet{},
		&models.Section{},
		&models.Door{},
		&models.Drawer{},
		&models.Shelf{},
		&models.Pullout{},
		&models.HardwareRequirement{},
		&models.Annotation{},
		&models.AnnotationHistory{},
	}
}

func SetupDatabase(cfg *config.Configuration) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		path := cfg.Database.SqlitePath
		if path == "" {
			path = "casework.db"
		}
		dialector = sqlite.Open(fmt.Sprintf("file:%s?_foreign_keys=1", path))
	case "postgres":
		dsn, err := postgresDSN()
		if err != nil {
			return nil, err
		}
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err = Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

func postgresDSN() (string, error) {
	var envVariables = [...]string{"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE", "DB_TZ"}
	for _, envVariable := range envVariables {
		if envVariable == "DB_SSLMODE" {
			if os.Getenv(envVariable) == "" {
				if err := os.Setenv("DB_SSLMODE", "disable"); err != nil {
					return "", err
				}
			}
			continue
		}
		if os.Getenv(envVariable) == "" {
			return "", errors.New(fmt.Sprintf("%s environment variable not set", envVariable))
		}
	}
	return os.ExpandEnv("host=${DB_HOST} user=${DB_USER} password=${DB_PASSWORD} dbname=${DB_NAME} port=${DB_PORT} sslmode=${DB_SSLMODE} TimeZone=${DB_TZ}"), nil
}

func CloseDatabase(db *gorm.DB) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Could not get DB instance: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}
