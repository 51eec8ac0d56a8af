package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"notsolong/internal/config"
	"notsolong/internal/models"
)

// Init opens the Postgres connection and runs migrations.
// TranslateError gives uniform gorm.ErrDuplicatedKey /
// gorm.ErrForeignKeyViolated errors, which the vote service relies on.
func Init(cfg *config.Config) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	if err := Migrate(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// Migrate creates or updates the schema. Shared with the test helpers,
// which run it against SQLite.
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.User{},
		&models.Title{},
		&models.Recap{},
		&models.Vote{},
	)
}
