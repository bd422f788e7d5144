package dao

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"media-engine-backend/config"
	"media-engine-backend/model"
)

var DB *gorm.DB

func Init() error {
	db, err := gorm.Open(mysql.Open(config.Cfg.DB.DSN), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect database: %v", err)
	}
	DB = db

	if err := DB.AutoMigrate(
		&model.User{},
		&model.MediaRecord{},
		&model.BatchUpload{},
		&model.FaceGroup{},
		&model.FaceAppearance{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %v", err)
	}
	return nil
}
