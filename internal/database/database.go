package database

import (
	"errors"

	"servicehub/config"
	"servicehub/internal/domain"
	"servicehub/internal/models"
	"servicehub/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := Open(mysql.Open(cfg.DSN))
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// Open wraps gorm.Open with the settings every environment shares. Duplicate-key violations
// come back as gorm.ErrDuplicatedKey.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
		TranslateError: true,
	})
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Provider{},
		&models.Category{},
		&models.ServiceRequest{},
		&models.Bid{},
		&models.Booking{},
		&models.BookingMessage{},
		&models.Wallet{},
		&models.WalletTransaction{},
		&models.Notification{},
	)
}

// Seed creates the default categories and, when an admin password is configured, the admin
// account. Existing rows are left alone.
func Seed(db *gorm.DB, cfg *config.MarketplaceConfig) error {
	if err := repository.NewCategoryRepository(db).SeedDefaults(cfg.Categories); err != nil {
		return err
	}
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	users := repository.NewUserRepository(db)
	_, err := users.GetByEmail(cfg.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return users.Create(&models.User{
		Name:         "Administrator",
		Email:        cfg.AdminEmail,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	})
}
