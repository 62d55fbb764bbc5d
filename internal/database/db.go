package database

import (
	"backoffice-backend/internal/config"
	"backoffice-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	log := config.GetLogger()

	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	if err := DB.AutoMigrate(Models()...); err != nil {
		log.Fatalf("auto migrate failed: %v", err)
	}

	log.Info("database ready")
}

// Models lists every table the service owns, in migration order.
func Models() []any {
	return []any{
		&models.User{},
		&models.AuditLog{},
		&models.StaffForm{},
		&models.PosReceipt{},
		&models.ShiftSummaryRecord{},
		&models.ProcessingRun{},
	}
}
